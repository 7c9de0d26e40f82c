// Package ir provides the language-agnostic intermediate representation
// consumed by every Ferrule pass.
//
// This package contains type definitions, JSON decoding, and content
// hashing only. All other internal packages import ir; ir imports nothing
// internal. This ensures IR remains the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Statements, expressions, literals, and source types are sealed
//     interfaces - the variant sets are closed
//   - Float literals carry their exact source lexeme so canonical hashing
//     never depends on float formatting
//   - IR nodes are constructed once from the external parse and never
//     mutated afterward; passes attach overlays (usage profiles, ownership
//     strategies, lifetimes, string plans) keyed by binding name
//   - All JSON tags use snake_case
package ir
