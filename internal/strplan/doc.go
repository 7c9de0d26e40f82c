// Package strplan plans the allocation strategy for string literals and
// string bindings. Literals used more than three times in one function
// body are promoted to a single named constant (interning); pass-through
// literals stay &'static str; literals that feed concatenation allocate.
// Bindings resolved as CopyOnWrite take FlexibleOwnership regardless of
// literal count.
package strplan
