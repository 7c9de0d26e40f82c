package ir

// Stmt is a sealed interface over the closed set of statement forms.
// Only the statement types in this file implement it.
type Stmt interface {
	stmtNode() // Sealed - only these types implement it
}

// Expr is a sealed interface over the closed set of expression forms.
type Expr interface {
	exprNode() // Sealed - only these types implement it
}

// Literal is a sealed interface over the closed set of literal values.
type Literal interface {
	literalNode() // Sealed - only these types implement it
}

// BinOp identifies a binary operator by its source spelling.
type BinOp string

// Binary operators recognized by the expression generator.
const (
	OpAdd      BinOp = "+"
	OpSub      BinOp = "-"
	OpMul      BinOp = "*"
	OpDiv      BinOp = "/"
	OpFloorDiv BinOp = "//"
	OpMod      BinOp = "%"
	OpEq       BinOp = "=="
	OpNotEq    BinOp = "!="
	OpLt       BinOp = "<"
	OpLtEq     BinOp = "<="
	OpGt       BinOp = ">"
	OpGtEq     BinOp = ">="
	OpAnd      BinOp = "and"
	OpOr       BinOp = "or"
	OpIn       BinOp = "in"
)

// UnaryOp identifies a unary operator by its source spelling.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "not"
)

// AssignStmt binds a value to a name, an index slot, or an attribute slot.
// Exactly one of the three target forms is active: plain name (Index and
// Attr both zero), target[index], or target.attr.
type AssignStmt struct {
	Target string
	Index  Expr   // non-nil for target[index] = value
	Attr   string // non-empty for target.attr = value
	Value  Expr
	Decl   SourceType // declared type, nil when the source omitted it
}

func (*AssignStmt) stmtNode() {}

// AugAssignStmt is an in-place update: target op= value.
type AugAssignStmt struct {
	Target string
	Op     BinOp
	Value  Expr
}

func (*AugAssignStmt) stmtNode() {}

// ReturnStmt returns Value from the enclosing function. Value is nil for a
// bare return.
type ReturnStmt struct {
	Value Expr
}

func (*ReturnStmt) stmtNode() {}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	X Expr
}

func (*ExprStmt) stmtNode() {}

// IfStmt branches on Cond. Else may be empty.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (*IfStmt) stmtNode() {}

// WhileStmt loops while Cond holds.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

func (*WhileStmt) stmtNode() {}

// ForStmt iterates Target over Iter.
type ForStmt struct {
	Target string
	Iter   Expr
	Body   []Stmt
}

func (*ForStmt) stmtNode() {}

// BreakStmt exits the innermost loop.
type BreakStmt struct{}

func (*BreakStmt) stmtNode() {}

// ContinueStmt skips to the next loop iteration.
type ContinueStmt struct{}

func (*ContinueStmt) stmtNode() {}

// PassStmt is a no-op placeholder.
type PassStmt struct{}

func (*PassStmt) stmtNode() {}

// RaiseStmt raises an error value.
type RaiseStmt struct {
	Exc Expr
}

func (*RaiseStmt) stmtNode() {}

// NameExpr references a binding by name.
type NameExpr struct {
	Ident string
}

func (*NameExpr) exprNode() {}

// LiteralExpr wraps a literal value.
type LiteralExpr struct {
	Value Literal
}

func (*LiteralExpr) exprNode() {}

// BinaryExpr applies Op to Left and Right.
type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr applies Op to Operand.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// CallExpr calls a free function. Func may be a dotted library path
// ("json.dumps"); the stdlib mapping table resolves those.
type CallExpr struct {
	Func string
	Args []Expr
}

func (*CallExpr) exprNode() {}

// MethodCallExpr calls Method on Recv.
type MethodCallExpr struct {
	Recv   Expr
	Method string
	Args   []Expr
}

func (*MethodCallExpr) exprNode() {}

// AttrExpr reads Base.Name.
type AttrExpr struct {
	Base Expr
	Name string
}

func (*AttrExpr) exprNode() {}

// IndexExpr reads Base[Index].
type IndexExpr struct {
	Base  Expr
	Index Expr
}

func (*IndexExpr) exprNode() {}

// ListExpr constructs a list.
type ListExpr struct {
	Elems []Expr
}

func (*ListExpr) exprNode() {}

// TupleExpr constructs a tuple.
type TupleExpr struct {
	Elems []Expr
}

func (*TupleExpr) exprNode() {}

// DictItem is one key/value pair in a DictExpr.
type DictItem struct {
	Key   Expr
	Value Expr
}

// DictExpr constructs a dictionary. Item order is source order and is
// preserved through codegen for determinism.
type DictExpr struct {
	Items []DictItem
}

func (*DictExpr) exprNode() {}

// LambdaExpr is an anonymous single-expression function. Names used in Body
// that are not in Params are captures of enclosing bindings.
type LambdaExpr struct {
	Params []string
	Body   Expr
}

func (*LambdaExpr) exprNode() {}

// IntLit is an integer literal. Always int64, never float.
type IntLit int64

func (IntLit) literalNode() {}

// FloatLit carries the exact source lexeme of a float literal.
// Storing the lexeme (not a float64) keeps canonical hashing and emitted
// output independent of host float formatting.
type FloatLit string

func (FloatLit) literalNode() {}

// StrLit is a string literal.
type StrLit string

func (StrLit) literalNode() {}

// BoolLit is a boolean literal.
type BoolLit bool

func (BoolLit) literalNode() {}

// NoneLit is the source language's null value.
type NoneLit struct{}

func (NoneLit) literalNode() {}
