package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The external parser hands modules to Ferrule as kind-discriminated JSON.
// Decoding is strict: unknown kinds are errors, numeric literals must be
// integers (float literals arrive as {"kind": "float", "lexeme": ...}),
// and derived fields (function properties) are rejected if supplied.

// DecodeModule parses a module document produced by the source parser.
func DecodeModule(data []byte) (*Module, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw struct {
		Name       string            `json:"name"`
		Functions  []json.RawMessage `json:"functions"`
		Types      []json.RawMessage `json:"types,omitempty"`
		Globals    []json.RawMessage `json:"globals,omitempty"`
		Properties json.RawMessage   `json:"properties,omitempty"`
	}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("decode module: name is required")
	}

	m := &Module{Name: raw.Name}
	for i, fdata := range raw.Functions {
		fn, err := decodeFunction(fdata)
		if err != nil {
			return nil, fmt.Errorf("function[%d]: %w", i, err)
		}
		m.Functions = append(m.Functions, fn)
	}
	for i, tdata := range raw.Types {
		td, err := decodeTypeDecl(tdata)
		if err != nil {
			return nil, fmt.Errorf("type[%d]: %w", i, err)
		}
		m.Types = append(m.Types, td)
	}
	for i, gdata := range raw.Globals {
		gv, err := decodeGlobal(gdata)
		if err != nil {
			return nil, fmt.Errorf("global[%d]: %w", i, err)
		}
		m.Globals = append(m.Globals, gv)
	}
	return m, nil
}

func decodeFunction(data []byte) (*Function, error) {
	var raw struct {
		Name       string            `json:"name"`
		Params     []json.RawMessage `json:"params"`
		Ret        json.RawMessage   `json:"ret,omitempty"`
		Body       []json.RawMessage `json:"body"`
		Docstring  string            `json:"docstring,omitempty"`
		Properties json.RawMessage   `json:"properties,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("function name is required")
	}
	// Properties are derived, never hand-set.
	if len(raw.Properties) > 0 {
		return nil, fmt.Errorf("function %q: properties are derived and may not be supplied", raw.Name)
	}

	fn := &Function{Name: raw.Name, Docstring: raw.Docstring}
	for i, pdata := range raw.Params {
		p, err := decodeParam(pdata)
		if err != nil {
			return nil, fmt.Errorf("param[%d]: %w", i, err)
		}
		fn.Params = append(fn.Params, p)
	}
	if len(raw.Ret) > 0 {
		ret, err := DecodeSourceType(raw.Ret)
		if err != nil {
			return nil, fmt.Errorf("ret: %w", err)
		}
		fn.Ret = ret
	}
	body, err := decodeStmts(raw.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func decodeParam(data []byte) (Param, error) {
	var raw struct {
		Name string          `json:"name"`
		Type json.RawMessage `json:"type,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Param{}, err
	}
	if raw.Name == "" {
		return Param{}, fmt.Errorf("param name is required")
	}
	p := Param{Name: raw.Name}
	if len(raw.Type) > 0 {
		t, err := DecodeSourceType(raw.Type)
		if err != nil {
			return Param{}, err
		}
		p.Type = t
	}
	return p, nil
}

func decodeTypeDecl(data []byte) (TypeDecl, error) {
	var raw struct {
		Name   string            `json:"name"`
		Fields []json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return TypeDecl{}, err
	}
	if raw.Name == "" {
		return TypeDecl{}, fmt.Errorf("type name is required")
	}
	td := TypeDecl{Name: raw.Name}
	for i, fdata := range raw.Fields {
		f, err := decodeParam(fdata)
		if err != nil {
			return TypeDecl{}, fmt.Errorf("field[%d]: %w", i, err)
		}
		td.Fields = append(td.Fields, f)
	}
	return td, nil
}

func decodeGlobal(data []byte) (GlobalVar, error) {
	var raw struct {
		Name string          `json:"name"`
		Type json.RawMessage `json:"type,omitempty"`
		Init json.RawMessage `json:"init"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return GlobalVar{}, err
	}
	if raw.Name == "" {
		return GlobalVar{}, fmt.Errorf("global name is required")
	}
	gv := GlobalVar{Name: raw.Name}
	if len(raw.Type) > 0 {
		t, err := DecodeSourceType(raw.Type)
		if err != nil {
			return GlobalVar{}, err
		}
		gv.Type = t
	}
	if len(raw.Init) == 0 {
		return GlobalVar{}, fmt.Errorf("global %q: init is required", raw.Name)
	}
	init, err := DecodeExpr(raw.Init)
	if err != nil {
		return GlobalVar{}, fmt.Errorf("global %q init: %w", raw.Name, err)
	}
	gv.Init = init
	return gv, nil
}

func decodeStmts(raws []json.RawMessage) ([]Stmt, error) {
	stmts := make([]Stmt, 0, len(raws))
	for i, sdata := range raws {
		s, err := DecodeStmt(sdata)
		if err != nil {
			return nil, fmt.Errorf("stmt[%d]: %w", i, err)
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// kindOf peeks at the kind discriminator without committing to a shape.
func kindOf(data []byte) (string, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", err
	}
	if probe.Kind == "" {
		return "", fmt.Errorf("missing kind discriminator")
	}
	return probe.Kind, nil
}

// DecodeStmt parses one kind-discriminated statement.
func DecodeStmt(data []byte) (Stmt, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "assign":
		var raw struct {
			Target string          `json:"target"`
			Index  json.RawMessage `json:"index,omitempty"`
			Attr   string          `json:"attr,omitempty"`
			Value  json.RawMessage `json:"value"`
			Decl   json.RawMessage `json:"decl,omitempty"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		value, err := DecodeExpr(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("assign value: %w", err)
		}
		st := &AssignStmt{Target: raw.Target, Attr: raw.Attr, Value: value}
		if len(raw.Index) > 0 {
			idx, err := DecodeExpr(raw.Index)
			if err != nil {
				return nil, fmt.Errorf("assign index: %w", err)
			}
			st.Index = idx
		}
		if len(raw.Decl) > 0 {
			decl, err := DecodeSourceType(raw.Decl)
			if err != nil {
				return nil, fmt.Errorf("assign decl: %w", err)
			}
			st.Decl = decl
		}
		return st, nil

	case "aug_assign":
		var raw struct {
			Target string          `json:"target"`
			Op     string          `json:"op"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		value, err := DecodeExpr(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("aug_assign value: %w", err)
		}
		return &AugAssignStmt{Target: raw.Target, Op: BinOp(raw.Op), Value: value}, nil

	case "return":
		var raw struct {
			Value json.RawMessage `json:"value,omitempty"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		st := &ReturnStmt{}
		if len(raw.Value) > 0 {
			v, err := DecodeExpr(raw.Value)
			if err != nil {
				return nil, fmt.Errorf("return value: %w", err)
			}
			st.Value = v
		}
		return st, nil

	case "expr":
		var raw struct {
			X json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		x, err := DecodeExpr(raw.X)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x}, nil

	case "if":
		var raw struct {
			Cond json.RawMessage   `json:"cond"`
			Then []json.RawMessage `json:"then"`
			Else []json.RawMessage `json:"else,omitempty"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		cond, err := DecodeExpr(raw.Cond)
		if err != nil {
			return nil, fmt.Errorf("if cond: %w", err)
		}
		then, err := decodeStmts(raw.Then)
		if err != nil {
			return nil, fmt.Errorf("if then: %w", err)
		}
		els, err := decodeStmts(raw.Else)
		if err != nil {
			return nil, fmt.Errorf("if else: %w", err)
		}
		return &IfStmt{Cond: cond, Then: then, Else: els}, nil

	case "while":
		var raw struct {
			Cond json.RawMessage   `json:"cond"`
			Body []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		cond, err := DecodeExpr(raw.Cond)
		if err != nil {
			return nil, fmt.Errorf("while cond: %w", err)
		}
		body, err := decodeStmts(raw.Body)
		if err != nil {
			return nil, fmt.Errorf("while body: %w", err)
		}
		return &WhileStmt{Cond: cond, Body: body}, nil

	case "for":
		var raw struct {
			Target string            `json:"target"`
			Iter   json.RawMessage   `json:"iter"`
			Body   []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		iter, err := DecodeExpr(raw.Iter)
		if err != nil {
			return nil, fmt.Errorf("for iter: %w", err)
		}
		body, err := decodeStmts(raw.Body)
		if err != nil {
			return nil, fmt.Errorf("for body: %w", err)
		}
		return &ForStmt{Target: raw.Target, Iter: iter, Body: body}, nil

	case "break":
		return &BreakStmt{}, nil
	case "continue":
		return &ContinueStmt{}, nil
	case "pass":
		return &PassStmt{}, nil

	case "raise":
		var raw struct {
			Exc json.RawMessage `json:"exc"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		exc, err := DecodeExpr(raw.Exc)
		if err != nil {
			return nil, fmt.Errorf("raise exc: %w", err)
		}
		return &RaiseStmt{Exc: exc}, nil

	default:
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
}

// DecodeExpr parses one kind-discriminated expression.
func DecodeExpr(data []byte) (Expr, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "name":
		var raw struct {
			Ident string `json:"ident"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Ident == "" {
			return nil, fmt.Errorf("name expr requires ident")
		}
		return &NameExpr{Ident: raw.Ident}, nil

	case "int", "float", "str", "bool", "none":
		lit, err := decodeLiteral(kind, data)
		if err != nil {
			return nil, err
		}
		return &LiteralExpr{Value: lit}, nil

	case "binary":
		var raw struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		left, err := DecodeExpr(raw.Left)
		if err != nil {
			return nil, fmt.Errorf("binary left: %w", err)
		}
		right, err := DecodeExpr(raw.Right)
		if err != nil {
			return nil, fmt.Errorf("binary right: %w", err)
		}
		return &BinaryExpr{Op: BinOp(raw.Op), Left: left, Right: right}, nil

	case "unary":
		var raw struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		operand, err := DecodeExpr(raw.Operand)
		if err != nil {
			return nil, fmt.Errorf("unary operand: %w", err)
		}
		return &UnaryExpr{Op: UnaryOp(raw.Op), Operand: operand}, nil

	case "call":
		var raw struct {
			Func string            `json:"func"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		args, err := decodeExprs(raw.Args)
		if err != nil {
			return nil, fmt.Errorf("call args: %w", err)
		}
		return &CallExpr{Func: raw.Func, Args: args}, nil

	case "method_call":
		var raw struct {
			Recv   json.RawMessage   `json:"recv"`
			Method string            `json:"method"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		recv, err := DecodeExpr(raw.Recv)
		if err != nil {
			return nil, fmt.Errorf("method recv: %w", err)
		}
		args, err := decodeExprs(raw.Args)
		if err != nil {
			return nil, fmt.Errorf("method args: %w", err)
		}
		return &MethodCallExpr{Recv: recv, Method: raw.Method, Args: args}, nil

	case "attr":
		var raw struct {
			Base json.RawMessage `json:"base"`
			Name string          `json:"name"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		base, err := DecodeExpr(raw.Base)
		if err != nil {
			return nil, fmt.Errorf("attr base: %w", err)
		}
		return &AttrExpr{Base: base, Name: raw.Name}, nil

	case "index":
		var raw struct {
			Base  json.RawMessage `json:"base"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		base, err := DecodeExpr(raw.Base)
		if err != nil {
			return nil, fmt.Errorf("index base: %w", err)
		}
		index, err := DecodeExpr(raw.Index)
		if err != nil {
			return nil, fmt.Errorf("index index: %w", err)
		}
		return &IndexExpr{Base: base, Index: index}, nil

	case "list", "tuple":
		var raw struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		elems, err := decodeExprs(raw.Elems)
		if err != nil {
			return nil, fmt.Errorf("%s elems: %w", kind, err)
		}
		if kind == "list" {
			return &ListExpr{Elems: elems}, nil
		}
		return &TupleExpr{Elems: elems}, nil

	case "dict":
		var raw struct {
			Items []struct {
				Key   json.RawMessage `json:"key"`
				Value json.RawMessage `json:"value"`
			} `json:"items"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		d := &DictExpr{}
		for i, item := range raw.Items {
			key, err := DecodeExpr(item.Key)
			if err != nil {
				return nil, fmt.Errorf("dict item[%d] key: %w", i, err)
			}
			value, err := DecodeExpr(item.Value)
			if err != nil {
				return nil, fmt.Errorf("dict item[%d] value: %w", i, err)
			}
			d.Items = append(d.Items, DictItem{Key: key, Value: value})
		}
		return d, nil

	case "lambda":
		var raw struct {
			Params []string        `json:"params"`
			Body   json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		body, err := DecodeExpr(raw.Body)
		if err != nil {
			return nil, fmt.Errorf("lambda body: %w", err)
		}
		return &LambdaExpr{Params: raw.Params, Body: body}, nil

	default:
		return nil, fmt.Errorf("unknown expression kind %q", kind)
	}
}

func decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	exprs := make([]Expr, 0, len(raws))
	for i, edata := range raws {
		e, err := DecodeExpr(edata)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func decodeLiteral(kind string, data []byte) (Literal, error) {
	switch kind {
	case "int":
		var raw struct {
			Value json.Number `json:"value"`
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		n, err := raw.Value.Int64()
		if err != nil {
			return nil, fmt.Errorf("int literal out of int64 range: %s", raw.Value)
		}
		return IntLit(n), nil

	case "float":
		// Floats arrive as their source lexeme, never as JSON numbers,
		// so canonical hashing stays exact.
		var raw struct {
			Lexeme string `json:"lexeme"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Lexeme == "" {
			return nil, fmt.Errorf("float literal requires lexeme")
		}
		return FloatLit(raw.Lexeme), nil

	case "str":
		var raw struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return StrLit(raw.Value), nil

	case "bool":
		var raw struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return BoolLit(raw.Value), nil

	case "none":
		return NoneLit{}, nil

	default:
		return nil, fmt.Errorf("unknown literal kind %q", kind)
	}
}

// DecodeSourceType parses one kind-discriminated source type.
func DecodeSourceType(data []byte) (SourceType, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "int":
		return IntType{}, nil
	case "float":
		return FloatType{}, nil
	case "str":
		return StrType{}, nil
	case "bool":
		return BoolType{}, nil
	case "none":
		return NoneType{}, nil
	case "dynamic":
		return DynamicType{}, nil

	case "list", "set":
		var raw struct {
			Elem json.RawMessage `json:"elem"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		elem, err := DecodeSourceType(raw.Elem)
		if err != nil {
			return nil, fmt.Errorf("%s elem: %w", kind, err)
		}
		if kind == "list" {
			return ListType{Elem: elem}, nil
		}
		return SetType{Elem: elem}, nil

	case "dict":
		var raw struct {
			Key   json.RawMessage `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		key, err := DecodeSourceType(raw.Key)
		if err != nil {
			return nil, fmt.Errorf("dict key: %w", err)
		}
		value, err := DecodeSourceType(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("dict value: %w", err)
		}
		return DictType{Key: key, Value: value}, nil

	case "tuple":
		var raw struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		t := TupleType{}
		for i, edata := range raw.Elems {
			e, err := DecodeSourceType(edata)
			if err != nil {
				return nil, fmt.Errorf("tuple elem[%d]: %w", i, err)
			}
			t.Elems = append(t.Elems, e)
		}
		return t, nil

	case "optional":
		var raw struct {
			Inner json.RawMessage `json:"inner"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		inner, err := DecodeSourceType(raw.Inner)
		if err != nil {
			return nil, fmt.Errorf("optional inner: %w", err)
		}
		return OptionalType{Inner: inner}, nil

	case "union":
		var raw struct {
			Alts []json.RawMessage `json:"alts"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if len(raw.Alts) < 2 {
			return nil, fmt.Errorf("union requires at least two alternatives")
		}
		u := UnionType{}
		for i, adata := range raw.Alts {
			a, err := DecodeSourceType(adata)
			if err != nil {
				return nil, fmt.Errorf("union alt[%d]: %w", i, err)
			}
			u.Alts = append(u.Alts, a)
		}
		return u, nil

	case "custom":
		var raw struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Name == "" {
			return nil, fmt.Errorf("custom type requires name")
		}
		return CustomType{Name: raw.Name}, nil

	default:
		return nil, fmt.Errorf("unknown type kind %q", kind)
	}
}
