package codegen

import (
	"fmt"
	"strings"

	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/stdmap"
)

// errTypeName is the generated error enum every return_error function
// uses.
const errTypeName = "FerruleError"

// genExpr renders one expression.
func (ctx *genContext) genExpr(e ir.Expr) (string, error) {
	switch v := e.(type) {
	case *ir.NameExpr:
		return ctx.genName(v.Ident), nil

	case *ir.LiteralExpr:
		return ctx.genLiteral(v.Value), nil

	case *ir.BinaryExpr:
		return ctx.genBinary(v)

	case *ir.UnaryExpr:
		operand, err := ctx.genExpr(v.Operand)
		if err != nil {
			return "", err
		}
		switch v.Op {
		case ir.OpNot:
			return fmt.Sprintf("!%s", maybeParen(v.Operand, operand)), nil
		default:
			return fmt.Sprintf("-%s", maybeParen(v.Operand, operand)), nil
		}

	case *ir.CallExpr:
		return ctx.genCall(v)

	case *ir.MethodCallExpr:
		return ctx.genMethodCall(v)

	case *ir.AttrExpr:
		base, err := ctx.genExpr(v.Base)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s", base, v.Name), nil

	case *ir.IndexExpr:
		return ctx.genIndex(v)

	case *ir.ListExpr:
		parts, err := ctx.genExprList(v.Elems)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("vec![%s]", strings.Join(parts, ", ")), nil

	case *ir.TupleExpr:
		parts, err := ctx.genExprList(v.Elems)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", ")), nil

	case *ir.DictExpr:
		return ctx.genDict(v)

	case *ir.LambdaExpr:
		body, err := ctx.genExpr(v.Body)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("|%s| %s", strings.Join(v.Params, ", "), body), nil

	default:
		return "", fmt.Errorf("unknown expression %T", e)
	}
}

// genName renders a binding reference. Shared bindings read through their
// cell; globals read through their singleton.
func (ctx *genContext) genName(name string) string {
	if ctx.isGlobal(name) {
		return ctx.globalAccess(name)
	}
	if ctx.isShared(name) {
		if ctx.threadSafe() {
			return fmt.Sprintf("%s.lock().unwrap()", name)
		}
		return fmt.Sprintf("%s.borrow()", name)
	}
	return name
}

// globalAccess renders a read of a module global.
func (ctx *genContext) globalAccess(name string) string {
	return fmt.Sprintf("*%s.lock().unwrap()", globalConstName(name))
}

func (ctx *genContext) genLiteral(lit ir.Literal) string {
	switch v := lit.(type) {
	case ir.IntLit:
		return fmt.Sprintf("%d", int64(v))
	case ir.FloatLit:
		return string(v)
	case ir.StrLit:
		return ctx.genStrLiteral(string(v))
	case ir.BoolLit:
		if v {
			return "true"
		}
		return "false"
	case ir.NoneLit:
		return "None"
	default:
		return ""
	}
}

// genStrLiteral applies the function's string plan for this literal.
func (ctx *genContext) genStrLiteral(s string) string {
	quoted := quoteRust(s)
	if ctx.Plans == nil {
		return quoted
	}
	plan := ctx.Plans.Literal(s)
	switch plan.Kind {
	case ir.InternedConstant:
		return plan.ConstName
	case ir.OwnedAllocation:
		return quoted + ".to_string()"
	case ir.FlexibleOwnership:
		ctx.addImport("std::borrow::Cow")
		return fmt.Sprintf("Cow::Borrowed(%s)", quoted)
	default:
		return quoted
	}
}

func (ctx *genContext) genBinary(e *ir.BinaryExpr) (string, error) {
	left, err := ctx.genExpr(e.Left)
	if err != nil {
		return "", err
	}
	right, err := ctx.genExpr(e.Right)
	if err != nil {
		return "", err
	}

	switch e.Op {
	case ir.OpAnd:
		return fmt.Sprintf("%s && %s", maybeParen(e.Left, left), maybeParen(e.Right, right)), nil
	case ir.OpOr:
		return fmt.Sprintf("%s || %s", maybeParen(e.Left, left), maybeParen(e.Right, right)), nil
	case ir.OpIn:
		return fmt.Sprintf("%s.contains(&%s)", maybeParen(e.Right, right), left), nil
	case ir.OpDiv, ir.OpFloorDiv:
		return ctx.genDivision(e, left, right, "checked_div", "/")
	case ir.OpMod:
		return ctx.genDivision(e, left, right, "checked_rem", "%")
	default:
		return fmt.Sprintf("%s %s %s", maybeParen(e.Left, left), e.Op, maybeParen(e.Right, right)), nil
	}
}

// genDivision wraps integer division in its checked form under
// return_error; float division and propagate mode stay plain.
func (ctx *genContext) genDivision(e *ir.BinaryExpr, left, right, checked, plain string) (string, error) {
	if !ctx.wrapErrors || ctx.isFloat(e.Left) || ctx.isFloat(e.Right) {
		return fmt.Sprintf("%s %s %s", maybeParen(e.Left, left), plain, maybeParen(e.Right, right)), nil
	}
	return fmt.Sprintf("%s.%s(%s).ok_or(%s::DivisionByZero)?",
		maybeParen(e.Left, left), checked, right, errTypeName), nil
}

// genIndex renders subscripting under the bounds-checking policy.
func (ctx *genContext) genIndex(e *ir.IndexExpr) (string, error) {
	base, err := ctx.genExpr(e.Base)
	if err != nil {
		return "", err
	}
	index, err := ctx.genExpr(e.Index)
	if err != nil {
		return "", err
	}

	if ctx.isMapBinding(e.Base) {
		if ctx.wrapErrors {
			return fmt.Sprintf("%s.get(&%s).cloned().ok_or(%s::MissingKey)?", base, index, errTypeName), nil
		}
		return fmt.Sprintf("%s[&%s]", base, index), nil
	}

	if ctx.boundsExplicit() {
		if ctx.wrapErrors {
			return fmt.Sprintf("%s.get(%s as usize).cloned().ok_or(%s::IndexOutOfBounds)?", base, index, errTypeName), nil
		}
		return fmt.Sprintf("%s.get(%s as usize).cloned().expect(\"index out of bounds\")", base, index), nil
	}
	return fmt.Sprintf("%s[%s as usize]", base, index), nil
}

func (ctx *genContext) genDict(e *ir.DictExpr) (string, error) {
	ctx.addImport("std::collections::HashMap")
	if len(e.Items) == 0 {
		return "HashMap::new()", nil
	}
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		k, err := ctx.genExpr(item.Key)
		if err != nil {
			return "", err
		}
		v, err := ctx.genExpr(item.Value)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("(%s, %s)", k, v)
	}
	return fmt.Sprintf("HashMap::from([%s])", strings.Join(parts, ", ")), nil
}

// genCall renders free-function calls: builtins inline, dotted library
// names through the mapping table, and module-local functions directly.
func (ctx *genContext) genCall(e *ir.CallExpr) (string, error) {
	args, err := ctx.genExprList(e.Args)
	if err != nil {
		return "", err
	}

	switch e.Func {
	case "len":
		if len(args) == 1 {
			return fmt.Sprintf("%s.len() as %s", args[0], ctx.intSpelling()), nil
		}
	case "print":
		placeholders := strings.TrimSuffix(strings.Repeat("{} ", len(args)), " ")
		if len(args) == 0 {
			return "println!()", nil
		}
		return fmt.Sprintf("println!(\"%s\", %s)", placeholders, strings.Join(args, ", ")), nil
	case "str":
		if len(args) == 1 {
			return fmt.Sprintf("%s.to_string()", args[0]), nil
		}
	case "abs":
		if len(args) == 1 {
			return fmt.Sprintf("%s.abs()", args[0]), nil
		}
	case "min":
		if len(args) == 2 {
			return fmt.Sprintf("%s.min(%s)", args[0], args[1]), nil
		}
	case "max":
		if len(args) == 2 {
			return fmt.Sprintf("%s.max(%s)", args[0], args[1]), nil
		}
	}

	if strings.Contains(e.Func, ".") {
		entry, ok := ctx.table.Lookup(e.Func)
		if !ok {
			return "", &stdmap.UnmappedCallError{Function: ctx.Fn.Name, Call: e.Func}
		}
		ctx.addImport(entry.Import)
		return fmt.Sprintf("%s(%s)", entry.Target, strings.Join(args, ", ")), nil
	}

	if ctx.module != nil && ctx.module.FindFunction(e.Func) != nil {
		return fmt.Sprintf("%s(%s)", e.Func, strings.Join(args, ", ")), nil
	}

	return "", &stdmap.UnmappedCallError{Function: ctx.Fn.Name, Call: e.Func}
}

// methodRule maps one source method onto its target spelling.
type methodRule struct {
	// render takes the receiver and rendered args.
	render func(ctx *genContext, recv string, args []string) string
	// mutates selects borrow_mut over borrow for shared receivers.
	mutates bool
}

var methodRules = map[string]methodRule{
	"append": {mutates: true, render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.push(%s)", recv, strings.Join(args, ", "))
	}},
	"extend": {mutates: true, render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.extend(%s)", recv, strings.Join(args, ", "))
	}},
	"insert": {mutates: true, render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.insert(%s)", recv, strings.Join(args, ", "))
	}},
	"pop": {mutates: true, render: func(ctx *genContext, recv string, args []string) string {
		if ctx.wrapErrors {
			return fmt.Sprintf("%s.pop().ok_or(%s::IndexOutOfBounds)?", recv, errTypeName)
		}
		return fmt.Sprintf("%s.pop().expect(\"pop from empty\")", recv)
	}},
	"clear": {mutates: true, render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.clear()", recv)
	}},
	"sort": {mutates: true, render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.sort()", recv)
	}},
	"add": {mutates: true, render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.insert(%s)", recv, strings.Join(args, ", "))
	}},
	"get": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.get(&%s).cloned()", recv, strings.Join(args, ", "))
	}},
	"keys": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.keys()", recv)
	}},
	"values": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.values()", recv)
	}},
	"upper": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.to_uppercase()", recv)
	}},
	"lower": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.to_lowercase()", recv)
	}},
	"strip": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.trim().to_string()", recv)
	}},
	"startswith": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.starts_with(%s)", recv, strings.Join(args, ", "))
	}},
	"endswith": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.ends_with(%s)", recv, strings.Join(args, ", "))
	}},
	"split": {render: func(ctx *genContext, recv string, args []string) string {
		return fmt.Sprintf("%s.split(%s).map(|p| p.to_string()).collect::<Vec<String>>()", recv, strings.Join(args, ", "))
	}},
	"join": {render: func(ctx *genContext, recv string, args []string) string {
		// Receiver and argument swap places: sep.join(xs) -> xs.join(sep).
		return fmt.Sprintf("%s.join(%s)", args[0], recv)
	}},
}

func (ctx *genContext) genMethodCall(e *ir.MethodCallExpr) (string, error) {
	rule, ok := methodRules[e.Method]
	if !ok {
		return "", &stdmap.UnmappedCallError{
			Function: ctx.Fn.Name,
			Call:     fmt.Sprintf(".%s()", e.Method),
		}
	}

	recv, err := ctx.genReceiver(e.Recv, rule.mutates)
	if err != nil {
		return "", err
	}
	args, err := ctx.genExprList(e.Args)
	if err != nil {
		return "", err
	}
	return rule.render(ctx, recv, args), nil
}

// genReceiver renders a method receiver, going through the interior
// mutability cell for shared bindings.
func (ctx *genContext) genReceiver(e ir.Expr, mutates bool) (string, error) {
	if name, ok := e.(*ir.NameExpr); ok && ctx.isShared(name.Ident) {
		if ctx.threadSafe() {
			return fmt.Sprintf("%s.lock().unwrap()", name.Ident), nil
		}
		if mutates {
			return fmt.Sprintf("%s.borrow_mut()", name.Ident), nil
		}
		return fmt.Sprintf("%s.borrow()", name.Ident), nil
	}
	if name, ok := e.(*ir.NameExpr); ok {
		return name.Ident, nil
	}
	return ctx.genExpr(e)
}

func (ctx *genContext) genExprList(exprs []ir.Expr) ([]string, error) {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		s, err := ctx.genExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// maybeParen wraps nested binary expressions so emitted precedence always
// matches IR structure.
func maybeParen(e ir.Expr, rendered string) string {
	if _, ok := e.(*ir.BinaryExpr); ok {
		return "(" + rendered + ")"
	}
	return rendered
}

// quoteRust renders a string literal with Rust escapes.
func quoteRust(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
