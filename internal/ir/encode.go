package ir

import "fmt"

// Encoding to plain maps mirrors the kind-discriminated JSON shape the
// decoder accepts. The maps feed MarshalCanonical, which is how module,
// function, and config identities are computed.

// EncodeModule renders a module as a plain map.
func EncodeModule(m *Module) map[string]any {
	out := map[string]any{"name": m.Name}
	fns := make([]any, len(m.Functions))
	for i, fn := range m.Functions {
		fns[i] = EncodeFunction(fn)
	}
	out["functions"] = fns
	if len(m.Types) > 0 {
		tds := make([]any, len(m.Types))
		for i, td := range m.Types {
			tds[i] = encodeTypeDecl(td)
		}
		out["types"] = tds
	}
	if len(m.Globals) > 0 {
		gvs := make([]any, len(m.Globals))
		for i, gv := range m.Globals {
			gvs[i] = encodeGlobal(gv)
		}
		out["globals"] = gvs
	}
	return out
}

// EncodeFunction renders a function as a plain map. Derived properties are
// intentionally excluded: identity covers what the parser produced, not
// what analysis derived.
func EncodeFunction(fn *Function) map[string]any {
	out := map[string]any{"name": fn.Name}
	params := make([]any, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = encodeParam(p)
	}
	out["params"] = params
	if fn.Ret != nil {
		out["ret"] = EncodeSourceType(fn.Ret)
	}
	body := make([]any, len(fn.Body))
	for i, s := range fn.Body {
		body[i] = EncodeStmt(s)
	}
	out["body"] = body
	if fn.Docstring != "" {
		out["docstring"] = fn.Docstring
	}
	return out
}

func encodeParam(p Param) map[string]any {
	out := map[string]any{"name": p.Name}
	if p.Type != nil {
		out["type"] = EncodeSourceType(p.Type)
	}
	return out
}

func encodeTypeDecl(td TypeDecl) map[string]any {
	fields := make([]any, len(td.Fields))
	for i, f := range td.Fields {
		fields[i] = encodeParam(f)
	}
	return map[string]any{"name": td.Name, "fields": fields}
}

func encodeGlobal(gv GlobalVar) map[string]any {
	out := map[string]any{"name": gv.Name, "init": EncodeExpr(gv.Init)}
	if gv.Type != nil {
		out["type"] = EncodeSourceType(gv.Type)
	}
	return out
}

func encodeStmts(stmts []Stmt) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = EncodeStmt(s)
	}
	return out
}

// EncodeStmt renders one statement as a plain map.
func EncodeStmt(s Stmt) map[string]any {
	switch st := s.(type) {
	case *AssignStmt:
		out := map[string]any{"kind": "assign", "target": st.Target, "value": EncodeExpr(st.Value)}
		if st.Index != nil {
			out["index"] = EncodeExpr(st.Index)
		}
		if st.Attr != "" {
			out["attr"] = st.Attr
		}
		if st.Decl != nil {
			out["decl"] = EncodeSourceType(st.Decl)
		}
		return out
	case *AugAssignStmt:
		return map[string]any{"kind": "aug_assign", "target": st.Target, "op": string(st.Op), "value": EncodeExpr(st.Value)}
	case *ReturnStmt:
		out := map[string]any{"kind": "return"}
		if st.Value != nil {
			out["value"] = EncodeExpr(st.Value)
		}
		return out
	case *ExprStmt:
		return map[string]any{"kind": "expr", "x": EncodeExpr(st.X)}
	case *IfStmt:
		out := map[string]any{"kind": "if", "cond": EncodeExpr(st.Cond), "then": encodeStmts(st.Then)}
		if len(st.Else) > 0 {
			out["else"] = encodeStmts(st.Else)
		}
		return out
	case *WhileStmt:
		return map[string]any{"kind": "while", "cond": EncodeExpr(st.Cond), "body": encodeStmts(st.Body)}
	case *ForStmt:
		return map[string]any{"kind": "for", "target": st.Target, "iter": EncodeExpr(st.Iter), "body": encodeStmts(st.Body)}
	case *BreakStmt:
		return map[string]any{"kind": "break"}
	case *ContinueStmt:
		return map[string]any{"kind": "continue"}
	case *PassStmt:
		return map[string]any{"kind": "pass"}
	case *RaiseStmt:
		return map[string]any{"kind": "raise", "exc": EncodeExpr(st.Exc)}
	default:
		panic(fmt.Sprintf("unknown statement type %T", s))
	}
}

func encodeExprs(exprs []Expr) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = EncodeExpr(e)
	}
	return out
}

// EncodeExpr renders one expression as a plain map.
func EncodeExpr(e Expr) map[string]any {
	switch ex := e.(type) {
	case *NameExpr:
		return map[string]any{"kind": "name", "ident": ex.Ident}
	case *LiteralExpr:
		return encodeLiteral(ex.Value)
	case *BinaryExpr:
		return map[string]any{"kind": "binary", "op": string(ex.Op), "left": EncodeExpr(ex.Left), "right": EncodeExpr(ex.Right)}
	case *UnaryExpr:
		return map[string]any{"kind": "unary", "op": string(ex.Op), "operand": EncodeExpr(ex.Operand)}
	case *CallExpr:
		return map[string]any{"kind": "call", "func": ex.Func, "args": encodeExprs(ex.Args)}
	case *MethodCallExpr:
		return map[string]any{"kind": "method_call", "recv": EncodeExpr(ex.Recv), "method": ex.Method, "args": encodeExprs(ex.Args)}
	case *AttrExpr:
		return map[string]any{"kind": "attr", "base": EncodeExpr(ex.Base), "name": ex.Name}
	case *IndexExpr:
		return map[string]any{"kind": "index", "base": EncodeExpr(ex.Base), "index": EncodeExpr(ex.Index)}
	case *ListExpr:
		return map[string]any{"kind": "list", "elems": encodeExprs(ex.Elems)}
	case *TupleExpr:
		return map[string]any{"kind": "tuple", "elems": encodeExprs(ex.Elems)}
	case *DictExpr:
		items := make([]any, len(ex.Items))
		for i, item := range ex.Items {
			items[i] = map[string]any{"key": EncodeExpr(item.Key), "value": EncodeExpr(item.Value)}
		}
		return map[string]any{"kind": "dict", "items": items}
	case *LambdaExpr:
		params := make([]any, len(ex.Params))
		for i, p := range ex.Params {
			params[i] = p
		}
		return map[string]any{"kind": "lambda", "params": params, "body": EncodeExpr(ex.Body)}
	default:
		panic(fmt.Sprintf("unknown expression type %T", e))
	}
}

func encodeLiteral(l Literal) map[string]any {
	switch lit := l.(type) {
	case IntLit:
		return map[string]any{"kind": "int", "value": int64(lit)}
	case FloatLit:
		return map[string]any{"kind": "float", "lexeme": string(lit)}
	case StrLit:
		return map[string]any{"kind": "str", "value": string(lit)}
	case BoolLit:
		return map[string]any{"kind": "bool", "value": bool(lit)}
	case NoneLit:
		return map[string]any{"kind": "none"}
	default:
		panic(fmt.Sprintf("unknown literal type %T", l))
	}
}

// EncodeSourceType renders one source type as a plain map.
func EncodeSourceType(t SourceType) map[string]any {
	switch ty := t.(type) {
	case IntType:
		return map[string]any{"kind": "int"}
	case FloatType:
		return map[string]any{"kind": "float"}
	case StrType:
		return map[string]any{"kind": "str"}
	case BoolType:
		return map[string]any{"kind": "bool"}
	case NoneType:
		return map[string]any{"kind": "none"}
	case DynamicType:
		return map[string]any{"kind": "dynamic"}
	case ListType:
		return map[string]any{"kind": "list", "elem": EncodeSourceType(ty.Elem)}
	case SetType:
		return map[string]any{"kind": "set", "elem": EncodeSourceType(ty.Elem)}
	case DictType:
		return map[string]any{"kind": "dict", "key": EncodeSourceType(ty.Key), "value": EncodeSourceType(ty.Value)}
	case TupleType:
		elems := make([]any, len(ty.Elems))
		for i, e := range ty.Elems {
			elems[i] = EncodeSourceType(e)
		}
		return map[string]any{"kind": "tuple", "elems": elems}
	case OptionalType:
		return map[string]any{"kind": "optional", "inner": EncodeSourceType(ty.Inner)}
	case UnionType:
		alts := make([]any, len(ty.Alts))
		for i, a := range ty.Alts {
			alts[i] = EncodeSourceType(a)
		}
		return map[string]any{"kind": "union", "alts": alts}
	case CustomType:
		return map[string]any{"kind": "custom", "name": ty.Name}
	default:
		panic(fmt.Sprintf("unknown source type %T", t))
	}
}
