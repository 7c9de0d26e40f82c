package codegen

import (
	"fmt"
	"sort"
	"strings"
)

// crateVersions pins the external crates the generator can emit.
var crateVersions = map[string]string{
	"once_cell":   "1",
	"lazy_static": "1.4",
}

// Manifest renders a Cargo manifest stub for the generated module: crate
// metadata plus the external crates referenced by the emitted use lines.
// Crates the version table does not know default to "1".
func (g *Generator) Manifest(results []FunctionResult) (string, error) {
	imports := map[string]struct{}{}
	for _, r := range results {
		for _, p := range r.Imports {
			imports[p] = struct{}{}
		}
	}
	if _, err := genTypeDecls(g.module, g.mapper, imports); err != nil {
		return "", err
	}
	if _, err := genGlobals(g.module, g.mod, g.mapper, imports); err != nil {
		return "", err
	}

	crates := map[string]struct{}{}
	for p := range imports {
		crate, _, ok := strings.Cut(p, "::")
		if !ok || crate == "std" || crate == "core" || crate == "alloc" {
			continue
		}
		crates[crate] = struct{}{}
	}
	names := make([]string, 0, len(crates))
	for c := range crates {
		names = append(names, c)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "[package]\nname = %q\nversion = \"0.1.0\"\nedition = \"2021\"\n", crateName(g.module.Name))
	b.WriteString("\n[dependencies]\n")
	for _, c := range names {
		version := crateVersions[c]
		if version == "" {
			version = "1"
		}
		fmt.Fprintf(&b, "%s = %q\n", c, version)
	}
	return b.String(), nil
}

// crateName lowers a module name to a valid crate name.
func crateName(module string) string {
	return strings.ToLower(strings.ReplaceAll(module, "-", "_"))
}
