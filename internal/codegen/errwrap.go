package codegen

import "strings"

// genErrorEnum renders the module error type used under
// panic_behavior=return_error. Emitted once per module, only when at
// least one function wraps its fallible operations.
func genErrorEnum() string {
	var b strings.Builder
	b.WriteString("#[derive(Debug, Clone, PartialEq)]\n")
	b.WriteString("pub enum " + errTypeName + " {\n")
	b.WriteString("    DivisionByZero,\n")
	b.WriteString("    IndexOutOfBounds,\n")
	b.WriteString("    MissingKey,\n")
	b.WriteString("    Runtime(String),\n")
	b.WriteString("}\n")
	b.WriteString("\n")
	b.WriteString("impl std::fmt::Display for " + errTypeName + " {\n")
	b.WriteString("    fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {\n")
	b.WriteString("        match self {\n")
	b.WriteString("            Self::DivisionByZero => write!(f, \"division by zero\"),\n")
	b.WriteString("            Self::IndexOutOfBounds => write!(f, \"index out of bounds\"),\n")
	b.WriteString("            Self::MissingKey => write!(f, \"missing key\"),\n")
	b.WriteString("            Self::Runtime(msg) => write!(f, \"{}\", msg),\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	b.WriteString("\n")
	b.WriteString("impl std::error::Error for " + errTypeName + " {}\n")
	return b.String()
}
