package codegen

import (
	"fmt"
	"strings"

	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/typemap"
)

// genTypeDecls renders user record types as derive-annotated structs,
// preserving source field order.
func genTypeDecls(m *ir.Module, mapper *typemap.Mapper, imports map[string]struct{}) (string, error) {
	var b strings.Builder
	for i, td := range m.Types {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("#[derive(Debug, Clone)]\n")
		fmt.Fprintf(&b, "pub struct %s {\n", td.Name)
		for _, f := range td.Fields {
			mapped, err := mapper.Map(f.Type)
			if err != nil {
				return "", fmt.Errorf("type %s field %s: %w", td.Name, f.Name, err)
			}
			typemap.CollectImports(mapped, imports)
			fmt.Fprintf(&b, "    pub %s: %s,\n", f.Name, mapped.Render())
		}
		b.WriteString("}\n")
	}
	return b.String(), nil
}

// genUnionEnums renders the enums the mapper synthesized for union
// types, in sorted name order.
func genUnionEnums(mapper *typemap.Mapper) string {
	var b strings.Builder
	for i, e := range mapper.GeneratedEnums() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("#[derive(Debug, Clone)]\n")
		fmt.Fprintf(&b, "pub enum %s {\n", e.Name)
		for _, v := range e.Variants {
			if v.Type == nil || v.Type.Render() == "()" {
				fmt.Fprintf(&b, "    %s,\n", v.Name)
			} else {
				fmt.Fprintf(&b, "    %s(%s),\n", v.Name, v.Type.Render())
			}
		}
		b.WriteString("}\n")
	}
	return b.String()
}
