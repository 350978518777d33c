// Completion: 100% - Statement driver complete, all statement forms compile
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
)

// The driver compiles one statement at a time. Each source line is a
// statement; the temporary pool is reset between statements so expression
// scratch space is recycled while locked resource temporaries survive.
//
// Statement forms:
//
//	DIM name AS TYPE
//	DIM name(e1, e2, ...) AS TYPE
//	GLOBAL pattern[, pattern...]
//	CONST name = value
//	IMPORT name AS TYPE
//	PROCEDURE name[(param AS TYPE, ...)]
//	END PROCEDURE
//	DELETE name
//	name = expression
//	name(i1, i2, ...) = expression
//	MID$(name, pos[, length]) = expression
//
// An expression is a single operand, or two operands joined by one of
// + - * / MOD AND OR XOR or a comparison (== <> < <= > >=). Operands are
// numeric literals (decimal, $hex, 0x, %binary), string literals, variables,
// array elements, CAST(x AS TYPE) and the string functions.

var driverLog = commonlog.GetLogger("bas8.driver")

// Driver feeds statements to a compilation context, decorating every error
// with the source position it came from.
type Driver struct {
	ctx  *CompilationContext
	file string
	line int
}

// NewDriver wraps a compilation context.
func NewDriver(ctx *CompilationContext) *Driver {
	return &Driver{ctx: ctx}
}

// CompileFile reads and compiles a source file.
func (d *Driver) CompileFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return d.CompileSource(path, string(data))
}

// CompileSource compiles source line by line. Compilation stops at the first
// error; warnings accumulate in the context's sink.
func (d *Driver) CompileSource(filename, source string) error {
	d.file = filename
	for i, line := range strings.Split(source, "\n") {
		d.line = i + 1
		if err := d.Statement(line); err != nil {
			return err
		}
	}
	return nil
}

// Statement compiles a single statement. Blank lines and comments are
// ignored.
func (d *Driver) Statement(text string) error {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "'") {
		return nil
	}
	toks, err := tokenize(text)
	if err != nil {
		return d.decorate(err)
	}
	if len(toks) == 0 {
		return nil
	}
	if strings.EqualFold(toks[0], "REM") {
		return nil
	}
	if VerboseMode {
		driverLog.Debugf("statement %s:%d: %s", d.file, d.line, text)
	}
	err = d.statement(toks)
	d.ctx.ResetPool()
	return d.decorate(err)
}

// decorate stamps the current source position onto compiler errors that do
// not carry one yet.
func (d *Driver) decorate(err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CompilerError); ok && ce.Location.Line == 0 {
		ce.Location = SourceLocation{File: d.file, Line: d.line}
	}
	return err
}

func (d *Driver) statement(toks []string) error {
	switch strings.ToUpper(toks[0]) {
	case "DIM":
		return d.dim(toks[1:])
	case "GLOBAL":
		return d.global(toks[1:])
	case "CONST":
		return d.constant(toks[1:])
	case "IMPORT":
		return d.importStmt(toks[1:])
	case "PROCEDURE":
		return d.procedure(toks[1:])
	case "END":
		if len(toks) == 2 && strings.EqualFold(toks[1], "PROCEDURE") {
			d.ctx.LeaveProcedure()
			return nil
		}
		return compileErr(ErrSyntax, "unexpected END")
	case "DELETE":
		if len(toks) != 2 {
			return compileErr(ErrSyntax, "DELETE takes one name")
		}
		d.ctx.Delete(toks[1])
		return nil
	}
	return d.assignment(toks)
}

// dim handles "DIM name AS TYPE" and "DIM name(e1, ...) AS TYPE".
func (d *Driver) dim(toks []string) error {
	if len(toks) < 3 {
		return compileErr(ErrSyntax, "DIM needs a name and a type")
	}
	name := toks[0]
	rest := toks[1:]
	var extents []int
	if rest[0] == "(" {
		var err error
		var n int
		extents, n, err = parseExtents(rest)
		if err != nil {
			return err
		}
		rest = rest[n:]
	}
	if len(rest) != 2 || !strings.EqualFold(rest[0], "AS") {
		return compileErr(ErrSyntax, "DIM %s: expected AS TYPE", name)
	}
	t, prec, err := parseTypeName(rest[1])
	if err != nil {
		return err
	}
	if len(extents) > 0 {
		_, err = d.ctx.DefineArray(name, t, prec, extents)
		return err
	}
	_, err = d.ctx.Define(name, t, prec)
	return err
}

func parseExtents(toks []string) ([]int, int, error) {
	var extents []int
	i := 1
	for i < len(toks) {
		if toks[i] == ")" {
			if len(extents) == 0 {
				return nil, 0, compileErr(ErrSyntax, "empty array extents")
			}
			return extents, i + 1, nil
		}
		if toks[i] == "," {
			i++
			continue
		}
		n, err := parseNumber(toks[i])
		if err != nil || n < 1 {
			return nil, 0, compileErr(ErrSyntax, "bad array extent %q", toks[i])
		}
		extents = append(extents, int(n))
		i++
	}
	return nil, 0, compileErr(ErrSyntax, "unterminated array extents")
}

// parseTypeName resolves a type keyword; FLOAT takes an optional FAST suffix
// written FLOAT.FAST.
func parseTypeName(s string) (VarType, FloatPrecision, error) {
	prec := FloatSingle
	upper := strings.ToUpper(s)
	if upper == "FLOAT.FAST" {
		return VTFloat, FloatFast, nil
	}
	t, ok := ParseVarType(upper)
	if !ok {
		return VTNone, prec, compileErr(ErrSyntax, "unknown type %q", s)
	}
	return t, prec, nil
}

func (d *Driver) global(toks []string) error {
	if len(toks) == 0 {
		return compileErr(ErrSyntax, "GLOBAL needs at least one pattern")
	}
	var pats []string
	for _, t := range toks {
		switch {
		case t == ",":
		case t == "*" && len(pats) > 0:
			// the tokenizer splits a trailing wildcard off its pattern
			pats[len(pats)-1] += "*"
		default:
			pats = append(pats, t)
		}
	}
	for _, p := range pats {
		d.ctx.RegisterGlobalPattern(p)
	}
	return nil
}

// constant handles "CONST name = value" for integer values.
func (d *Driver) constant(toks []string) error {
	if len(toks) != 3 || toks[1] != "=" {
		return compileErr(ErrSyntax, "CONST needs the form CONST name = value")
	}
	value, err := parseNumber(toks[2])
	if err != nil {
		return compileErr(ErrSyntax, "bad constant value %q", toks[2])
	}
	_, err = d.ctx.DefineConstant(toks[0], fittingType(value), value)
	return err
}

// fittingType picks the narrowest unsigned (or signed, for negatives) type
// holding the value.
func fittingType(v int64) VarType {
	switch {
	case v >= 0 && v <= 0xff:
		return VTByte
	case v >= 0 && v <= 0xffff:
		return VTWord
	case v >= -0x80 && v < 0:
		return VTSByte
	case v >= -0x8000 && v < 0:
		return VTSWord
	case v < 0:
		return VTSDWord
	default:
		return VTDWord
	}
}

func (d *Driver) importStmt(toks []string) error {
	if len(toks) != 3 || !strings.EqualFold(toks[1], "AS") {
		return compileErr(ErrSyntax, "IMPORT needs the form IMPORT name AS TYPE")
	}
	t, prec, err := parseTypeName(toks[2])
	if err != nil {
		return err
	}
	_, err = d.ctx.Import(toks[0], t, elementBytes(t, prec))
	return err
}

// procedure handles "PROCEDURE name" with optional inline parameters, each
// registered under the procedure-qualified name.
func (d *Driver) procedure(toks []string) error {
	if len(toks) == 0 {
		return compileErr(ErrSyntax, "PROCEDURE needs a name")
	}
	name := toks[0]
	d.ctx.EnterProcedure(name)
	rest := toks[1:]
	if len(rest) == 0 {
		return nil
	}
	if rest[0] != "(" || rest[len(rest)-1] != ")" {
		return compileErr(ErrSyntax, "bad parameter list for PROCEDURE %s", name)
	}
	params := rest[1 : len(rest)-1]
	for len(params) > 0 {
		if params[0] == "," {
			params = params[1:]
			continue
		}
		if len(params) < 3 || !strings.EqualFold(params[1], "AS") {
			return compileErr(ErrSyntax, "parameter of %s needs the form name AS TYPE", name)
		}
		t, prec, err := parseTypeName(params[2])
		if err != nil {
			return err
		}
		if _, err := d.ctx.Define(name+parameterMarker+params[0], t, prec); err != nil {
			return err
		}
		params = params[3:]
	}
	return nil
}

// assignment handles all "target = expression" forms.
func (d *Driver) assignment(toks []string) error {
	eq := -1
	depth := 0
	for i, t := range toks {
		switch t {
		case "(":
			depth++
		case ")":
			depth--
		case "=":
			if depth == 0 {
				eq = i
			}
		}
		if eq >= 0 {
			break
		}
	}
	if eq < 1 || eq == len(toks)-1 {
		return compileErr(ErrSyntax, "expected an assignment, got %q", strings.Join(toks, " "))
	}
	lhs, rhs := toks[:eq], toks[eq+1:]

	val, err := d.expression(rhs)
	if err != nil {
		return err
	}

	// MID$(target, pos[, length]) = replacement
	if strings.EqualFold(lhs[0], "MID$") {
		args, err := d.callArgs(lhs[1:])
		if err != nil {
			return err
		}
		if len(args) != 2 && len(args) != 3 {
			return compileErr(ErrSyntax, "MID$ assignment takes 2 or 3 arguments")
		}
		var length *Variable
		if len(args) == 3 {
			length = args[2]
		}
		return d.ctx.StrMidAssign(args[0], args[1], length, val)
	}

	// name(i1, ...) = value
	if len(lhs) > 1 && lhs[1] == "(" {
		arr, err := d.ctx.Retrieve(lhs[0], true)
		if err != nil {
			return err
		}
		access, err := d.elementAccess(arr, lhs[1:])
		if err != nil {
			return err
		}
		return d.ctx.StoreElement(access, val)
	}

	if len(lhs) != 1 {
		return compileErr(ErrSyntax, "bad assignment target %q", strings.Join(lhs, " "))
	}
	dst, err := d.ctx.Retrieve(lhs[0], false)
	if err != nil {
		return err
	}
	if dst == nil {
		t := val.Type
		if t == VTString {
			t = VTDString
		}
		if dst, err = d.ctx.Define(lhs[0], t, val.Precision); err != nil {
			return err
		}
	}
	if err := d.ctx.Move(val, dst); err != nil {
		return err
	}
	dst.Assigned = true
	// constant values propagate so later statements can fold
	if val.InitializedByConstant &&
		(dst.Type == val.Type || (dst.Type == VTDString && val.Type.IsString())) {
		dst.Value = val.Value
		dst.ValueString = val.ValueString
		dst.InitializedByConstant = true
	} else {
		dst.InitializedByConstant = false
	}
	return nil
}

var cmpModes = map[string]CmpMode{
	"==": CmpEq, "<>": CmpNe, "<": CmpLt, "<=": CmpLe, ">": CmpGt, ">=": CmpGe,
}

var binOps = map[string]BinOp{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv,
	"MOD": OpMod, "AND": OpAnd, "OR": OpOr, "XOR": OpXor,
}

// expression compiles a single operand or "operand op operand".
func (d *Driver) expression(toks []string) (*Variable, error) {
	a, rest, err := d.operand(toks)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		return a, nil
	}
	opTok := strings.ToUpper(rest[0])
	b, tail, err := d.operand(rest[1:])
	if err != nil {
		return nil, err
	}
	if len(tail) != 0 {
		return nil, compileErr(ErrSyntax, "trailing tokens %q in expression", strings.Join(tail, " "))
	}
	if mode, ok := cmpModes[opTok]; ok {
		return d.ctx.Compare(mode, a, b)
	}
	if op, ok := binOps[opTok]; ok {
		if op == OpMod {
			_, rem, err := d.ctx.Divide(a, b, true)
			return rem, err
		}
		return d.ctx.BinaryOp(op, a, b)
	}
	return nil, compileErr(ErrSyntax, "unknown operator %q", rest[0])
}

// operand compiles one operand and returns the unconsumed tokens.
func (d *Driver) operand(toks []string) (*Variable, []string, error) {
	if len(toks) == 0 {
		return nil, nil, compileErr(ErrSyntax, "missing operand")
	}
	t := toks[0]

	if strings.HasPrefix(t, "\"") {
		return d.ctx.StaticStringVar(unquote(t)), toks[1:], nil
	}
	if isNumeric(t) {
		v, err := d.literal(t)
		return v, toks[1:], err
	}
	if t == "-" && len(toks) > 1 && isNumeric(toks[1]) {
		v, err := d.literal("-" + toks[1])
		return v, toks[2:], err
	}

	// call forms: FUNC ( args )
	if len(toks) > 1 && toks[1] == "(" {
		n := matchParen(toks, 1)
		if n < 0 {
			return nil, nil, compileErr(ErrSyntax, "unterminated call %q", t)
		}
		inner := toks[1 : n+1]
		rest := toks[n+1:]
		upper := strings.ToUpper(t)
		if upper == "CAST" {
			v, err := d.cast(inner)
			return v, rest, err
		}
		if fn, ok := stringFuncs[upper]; ok {
			args, err := d.callArgs(inner)
			if err != nil {
				return nil, nil, err
			}
			v, err := fn(d.ctx, args)
			return v, rest, err
		}
		// array element read
		arr, err := d.ctx.Retrieve(t, true)
		if err != nil {
			return nil, nil, err
		}
		access, err := d.elementAccess(arr, inner)
		if err != nil {
			return nil, nil, err
		}
		v, err := d.ctx.LoadElement(access)
		return v, rest, err
	}

	// plain name: constant first, then variable
	if c, err := d.ctx.Constant(t); err == nil {
		v, err := d.materialize(c)
		return v, toks[1:], err
	}
	v, err := d.ctx.Retrieve(t, true)
	if err != nil {
		return nil, nil, err
	}
	return v, toks[1:], nil
}

type stringFunc func(*CompilationContext, []*Variable) (*Variable, error)

var stringFuncs = map[string]stringFunc{
	"LEFT$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 2 {
			return nil, compileErr(ErrSyntax, "LEFT$ takes 2 arguments")
		}
		return ctx.StrLeft(a[0], a[1])
	},
	"RIGHT$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 2 {
			return nil, compileErr(ErrSyntax, "RIGHT$ takes 2 arguments")
		}
		return ctx.StrRight(a[0], a[1])
	},
	"MID$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		switch len(a) {
		case 2:
			return ctx.StrMid(a[0], a[1], nil)
		case 3:
			return ctx.StrMid(a[0], a[1], a[2])
		}
		return nil, compileErr(ErrSyntax, "MID$ takes 2 or 3 arguments")
	},
	"LEN": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 1 {
			return nil, compileErr(ErrSyntax, "LEN takes 1 argument")
		}
		return ctx.StrLen(a[0])
	},
	"INSTR": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		switch len(a) {
		case 2:
			return ctx.StrInstr(a[0], a[1], nil)
		case 3:
			return ctx.StrInstr(a[0], a[1], a[2])
		}
		return nil, compileErr(ErrSyntax, "INSTR takes 2 or 3 arguments")
	},
	"UPPER$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 1 {
			return nil, compileErr(ErrSyntax, "UPPER$ takes 1 argument")
		}
		return ctx.StrUpper(a[0])
	},
	"LOWER$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 1 {
			return nil, compileErr(ErrSyntax, "LOWER$ takes 1 argument")
		}
		return ctx.StrLower(a[0])
	},
	"FLIP$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 1 {
			return nil, compileErr(ErrSyntax, "FLIP$ takes 1 argument")
		}
		return ctx.StrFlip(a[0])
	},
	"STR$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 1 {
			return nil, compileErr(ErrSyntax, "STR$ takes 1 argument")
		}
		return ctx.StrStr(a[0])
	},
	"VAL": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 1 {
			return nil, compileErr(ErrSyntax, "VAL takes 1 argument")
		}
		return ctx.StrVal(a[0])
	},
	"CHR$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 1 {
			return nil, compileErr(ErrSyntax, "CHR$ takes 1 argument")
		}
		return ctx.StrChr(a[0])
	},
	"ASC": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		if len(a) != 1 {
			return nil, compileErr(ErrSyntax, "ASC takes 1 argument")
		}
		return ctx.StrAsc(a[0])
	},
	"BIN$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		switch len(a) {
		case 1:
			return ctx.StrBin(a[0], nil)
		case 2:
			return ctx.StrBin(a[0], a[1])
		}
		return nil, compileErr(ErrSyntax, "BIN$ takes 1 or 2 arguments")
	},
	"HEX$": func(ctx *CompilationContext, a []*Variable) (*Variable, error) {
		switch len(a) {
		case 1:
			return ctx.StrHex(a[0], nil)
		case 2:
			return ctx.StrHex(a[0], a[1])
		}
		return nil, compileErr(ErrSyntax, "HEX$ takes 1 or 2 arguments")
	},
}

// cast handles CAST(x AS TYPE). inner includes the surrounding parentheses.
func (d *Driver) cast(inner []string) (*Variable, error) {
	body := inner[1 : len(inner)-1]
	if len(body) != 3 || !strings.EqualFold(body[1], "AS") {
		return nil, compileErr(ErrSyntax, "CAST needs the form CAST(x AS TYPE)")
	}
	t, prec, err := parseTypeName(body[2])
	if err != nil {
		return nil, err
	}
	v, rest, err := d.operand(body[:1])
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, compileErr(ErrSyntax, "bad CAST operand")
	}
	return d.ctx.castTo(v, t, prec)
}

// callArgs compiles a parenthesized, comma-separated argument list. inner
// includes the surrounding parentheses.
func (d *Driver) callArgs(inner []string) ([]*Variable, error) {
	if len(inner) < 2 || inner[0] != "(" || inner[len(inner)-1] != ")" {
		return nil, compileErr(ErrSyntax, "expected an argument list")
	}
	body := inner[1 : len(inner)-1]
	var args []*Variable
	for len(body) > 0 {
		end := len(body)
		depth := 0
		for i, t := range body {
			if t == "(" {
				depth++
			}
			if t == ")" {
				depth--
			}
			if t == "," && depth == 0 {
				end = i
				break
			}
		}
		v, err := d.expression(body[:end])
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if end == len(body) {
			break
		}
		body = body[end+1:]
	}
	return args, nil
}

// elementAccess compiles the index list of an array access. inner includes
// the surrounding parentheses.
func (d *Driver) elementAccess(arr *Variable, inner []string) (*ArrayAccess, error) {
	args, err := d.callArgs(inner)
	if err != nil {
		return nil, err
	}
	indexes := make([]ArrayIndex, 0, len(args))
	for _, a := range args {
		if c, ok := constInt(a); ok {
			indexes = append(indexes, ConstIndex(c))
		} else {
			indexes = append(indexes, VarIndex(a))
		}
	}
	return d.ctx.Offset(arr, indexes)
}

// materialize copies a named constant into an initialized temporary so it
// can serve as a runtime operand.
func (d *Driver) materialize(c *Variable) (*Variable, error) {
	v, err := d.ctx.Temporary(c.Type, c.Precision, "constant "+c.Name)
	if err != nil {
		return nil, err
	}
	d.ctx.Emit.MoveConst(Width(c.Type.WidthClass()), v.Ref(), c.Value)
	v.Value = c.Value
	v.InitializedByConstant = true
	return v, nil
}

// literal materializes a numeric literal as an initialized temporary.
func (d *Driver) literal(s string) (*Variable, error) {
	value, err := parseNumber(s)
	if err != nil {
		return nil, compileErr(ErrSyntax, "bad number %q", s)
	}
	t := fittingType(value)
	v, err := d.ctx.Temporary(t, FloatSingle, "literal "+s)
	if err != nil {
		return nil, err
	}
	d.ctx.Emit.MoveConst(Width(t.WidthClass()), v.Ref(), value)
	v.Value = value
	v.InitializedByConstant = true
	return v, nil
}

// parseNumber accepts decimal, $hex, 0x hex and %binary literals.
func parseNumber(s string) (int64, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(s, "$"):
		v, err = strconv.ParseUint(s[1:], 16, 64)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "%"):
		v, err = strconv.ParseUint(s[1:], 2, 64)
	default:
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}

func isNumeric(s string) bool {
	_, err := parseNumber(s)
	return err == nil
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, "\"")
}

// matchParen returns the index of the ")" matching the "(" at open.
func matchParen(toks []string, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i] {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// tokenize splits a statement into identifiers, numbers, string literals,
// operators and punctuation. Identifiers may contain $, # and the parameter
// marker; a trailing ' comment is dropped.
func tokenize(s string) ([]string, error) {
	var toks []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '\'':
			return toks, nil
		case c == '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}
			if j == len(s) {
				return nil, compileErr(ErrSyntax, "unterminated string literal")
			}
			toks = append(toks, s[i:j+1])
			i = j + 1
		case c == '(' || c == ')' || c == ',' || c == '+' || c == '-' || c == '*' || c == '/':
			toks = append(toks, string(c))
			i++
		case c == '=' || c == '<' || c == '>':
			j := i + 1
			if j < len(s) && (s[j] == '=' || (c == '<' && s[j] == '>')) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		case c == '$' || c == '%' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		case isWordByte(c) || c == '_':
			j := i + 1
			for j < len(s) && (isWordByte(s[j]) || s[j] == '$' || s[j] == '#' || s[j] == ':' || s[j] == '.') {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			return nil, compileErr(ErrSyntax, "unexpected character %q", string(c))
		}
	}
	return toks, nil
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
