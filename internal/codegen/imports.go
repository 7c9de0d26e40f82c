package codegen

import (
	"sort"
	"strings"
)

// renderImports renders accumulated use-paths as sorted use lines.
func renderImports(imports map[string]struct{}) string {
	if len(imports) == 0 {
		return ""
	}
	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		b.WriteString("use " + p + ";\n")
	}
	return b.String()
}
