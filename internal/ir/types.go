package ir

// Module is an ordered sequence of top-level functions, type declarations,
// and module-level globals. The module owns all child nodes.
type Module struct {
	Name      string
	Functions []*Function
	Types     []TypeDecl
	Globals   []GlobalVar
}

// Function is one top-level function: signature, body, and derived
// properties. Properties are derived by analysis, never hand-set; the JSON
// decoder rejects documents that try to supply them.
type Function struct {
	Name       string
	Params     []Param
	Ret        SourceType // nil when the source omitted a return annotation
	Body       []Stmt
	Docstring  string
	Properties FunctionProperties
}

// Param is a named parameter with an optional declared type.
type Param struct {
	Name string
	Type SourceType // nil when undeclared
}

// TypeDecl is a record-like user type: named fields with source types.
// Field order is declaration order and is preserved through codegen.
type TypeDecl struct {
	Name   string
	Fields []Param
}

// GlobalVar is a module-level mutable binding with a declared
// initialization point. Globals translate to a lazily-initialized singleton
// whose locking discipline is chosen by the global_strategy annotation.
type GlobalVar struct {
	Name string
	Type SourceType
	Init Expr
}

// Confidence grades how strongly a derived property is believed to hold.
type Confidence int

const (
	// ConfidenceUnknown means analysis could not establish the property.
	ConfidenceUnknown Confidence = iota
	// ConfidenceLikely means the property holds for every analyzed path
	// but analysis is not exhaustive (calls to unknown functions remain).
	ConfidenceLikely
	// ConfidenceProven means the property holds by construction.
	ConfidenceProven
)

// String implements fmt.Stringer.
func (c Confidence) String() string {
	switch c {
	case ConfidenceLikely:
		return "likely"
	case ConfidenceProven:
		return "proven"
	default:
		return "unknown"
	}
}

// FunctionProperties records derived facts about a function body.
// Invariant: derived, never hand-set. The annotation layer may consult
// these (expr conditions) but never writes them.
type FunctionProperties struct {
	// Pure is true when the body has no observable side effects:
	// no global writes, no raise, no calls outside the known-pure set.
	Pure bool
	// Termination grades whether every loop provably terminates.
	Termination Confidence
	// PanicFree grades whether the generated code can panic
	// (indexing, division) on any path.
	PanicFree Confidence
}

// FindFunction returns the function with the given name, or nil.
func (m *Module) FindFunction(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// FindType returns the type declaration with the given name, or nil.
func (m *Module) FindType(name string) *TypeDecl {
	for _, td := range m.Types {
		if td.Name == name {
			return &td
		}
	}
	return nil
}
