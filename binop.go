// Completion: 100% - Binary operations complete with type unification
package main

// BinOp names an arithmetic or bitwise binary operation.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "MOD"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpXor:
		return "XOR"
	default:
		return "?"
	}
}

// unifiedType computes the common type two operands are brought to before a
// binary operation: strings unify to dynamic string, a float operand pulls
// the other side to its (highest) precision, and integers go to the wider
// width, signed if either side is signed. The 1-bit flag width unifies
// through the byte class.
func unifiedType(a, b *Variable) (VarType, FloatPrecision, error) {
	if a.Type.IsString() || b.Type.IsString() {
		if a.Type.IsString() && b.Type.IsString() {
			return VTDString, FloatSingle, nil
		}
		return VTNone, FloatSingle, compileErr(ErrUnsupportedOperationForType,
			"cannot combine %s and %s", a.Type, b.Type)
	}
	if a.Type == VTFloat || b.Type == VTFloat {
		prec := FloatFast
		if (a.Type == VTFloat && a.Precision == FloatSingle) ||
			(b.Type == VTFloat && b.Precision == FloatSingle) {
			prec = FloatSingle
		}
		if (a.Type == VTFloat || a.Type.IsInteger()) && (b.Type == VTFloat || b.Type.IsInteger()) {
			return VTFloat, prec, nil
		}
		return VTNone, prec, compileErr(ErrUnsupportedOperationForType,
			"cannot combine %s and %s", a.Type, b.Type)
	}
	if !a.Type.IsInteger() || !b.Type.IsInteger() {
		return VTNone, FloatSingle, compileErr(ErrUnsupportedOperationForType,
			"cannot combine %s and %s", a.Type, b.Type)
	}
	aw, bw := a.WidthClass(), b.WidthClass()
	if aw < 8 {
		aw = 8
	}
	if bw < 8 {
		bw = 8
	}
	width := aw
	if bw > width {
		width = bw
	}
	signed := a.Type.Signed() || b.Type.Signed()
	return integerType(width, signed), FloatSingle, nil
}

// unify casts both operands to their unified type.
func (ctx *CompilationContext) unify(a, b *Variable) (*Variable, *Variable, VarType, FloatPrecision, error) {
	t, prec, err := unifiedType(a, b)
	if err != nil {
		return nil, nil, VTNone, prec, err
	}
	ua := a
	ub := b
	if a.Type != t || (t == VTFloat && a.Precision != prec) {
		if ua, err = ctx.castTo(a, t, prec); err != nil {
			return nil, nil, VTNone, prec, err
		}
	}
	if b.Type != t || (t == VTFloat && b.Precision != prec) {
		if ub, err = ctx.castTo(b, t, prec); err != nil {
			return nil, nil, VTNone, prec, err
		}
	}
	return ua, ub, t, prec, nil
}

// castTo is Cast with an explicit float precision on the target.
func (ctx *CompilationContext) castTo(v *Variable, t VarType, prec FloatPrecision) (*Variable, error) {
	if t == VTString {
		t = VTDString
	}
	if v.Type == t && (t != VTFloat || v.Precision == prec) {
		return v, nil
	}
	tmp, err := ctx.Temporary(t, prec, "cast of "+v.Name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Move(v, tmp); err != nil {
		return nil, err
	}
	return tmp, nil
}

// BinaryOp applies op to a and b after unification and materializes the
// result in a fresh temporary of the unified type.
func (ctx *CompilationContext) BinaryOp(op BinOp, a, b *Variable) (*Variable, error) {
	ua, ub, t, prec, err := ctx.unify(a, b)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Temporary(t, prec, "result of "+a.Name+op.String()+b.Name)
	if err != nil {
		return nil, err
	}
	if err := ctx.binaryInto(op, res, ua, ub); err != nil {
		return nil, err
	}
	return res, nil
}

// BinaryOpInPlace applies op writing the result back into the first operand.
// The second operand is cast to the target's type first.
func (ctx *CompilationContext) BinaryOpInPlace(op BinOp, target, operand *Variable) error {
	ub, err := ctx.castTo(operand, target.Type, target.Precision)
	if err != nil {
		return err
	}
	return ctx.binaryInto(op, target, target, ub)
}

// binaryInto emits op over two already unified operands into res.
func (ctx *CompilationContext) binaryInto(op BinOp, res, a, b *Variable) error {
	e := ctx.Emit
	switch {
	case a.Type == VTDString:
		if op != OpAdd {
			return compileErr(ErrUnsupportedOperationForType,
				"operation %s is not defined on strings", op)
		}
		return ctx.concatStrings(res, a, b)

	case a.Type == VTFloat:
		switch op {
		case OpAdd:
			e.FAdd(res.Precision, res.Ref(), a.Ref(), b.Ref())
		case OpSub:
			e.FSub(res.Precision, res.Ref(), a.Ref(), b.Ref())
		case OpMul:
			e.FMul(res.Precision, res.Ref(), a.Ref(), b.Ref())
		case OpDiv:
			// division by zero is a runtime concern, not checked here
			e.FDiv(res.Precision, res.Ref(), a.Ref(), b.Ref())
		default:
			return compileErr(ErrUnsupportedOperationForType,
				"operation %s is not defined on floats", op)
		}
		return nil

	default:
		w := Width(a.WidthClass())
		signed := a.Type.Signed()
		switch op {
		case OpAdd:
			e.Add(w, res.Ref(), a.Ref(), b.Ref())
		case OpSub:
			e.Sub(w, res.Ref(), a.Ref(), b.Ref())
		case OpMul:
			e.Mul(w, signed, res.Ref(), a.Ref(), b.Ref())
		case OpDiv:
			// division by zero is a runtime concern, not checked here
			e.Div(w, signed, res.Ref(), NoRef, a.Ref(), b.Ref())
		case OpMod:
			quot, err := ctx.Temporary(a.Type, a.Precision, "discarded quotient")
			if err != nil {
				return err
			}
			e.Div(w, signed, quot.Ref(), res.Ref(), a.Ref(), b.Ref())
		case OpAnd:
			e.And(w, res.Ref(), a.Ref(), b.Ref())
		case OpOr:
			e.Or(w, res.Ref(), a.Ref(), b.Ref())
		case OpXor:
			e.Xor(w, res.Ref(), a.Ref(), b.Ref())
		}
		return nil
	}
}

// Divide is the division entry point with an optional remainder output.
func (ctx *CompilationContext) Divide(a, b *Variable, wantRemainder bool) (*Variable, *Variable, error) {
	ua, ub, t, prec, err := ctx.unify(a, b)
	if err != nil {
		return nil, nil, err
	}
	if t == VTDString {
		return nil, nil, compileErr(ErrUnsupportedOperationForType,
			"operation / is not defined on strings")
	}
	quot, err := ctx.Temporary(t, prec, "quotient of "+a.Name+"/"+b.Name)
	if err != nil {
		return nil, nil, err
	}
	if t == VTFloat {
		if wantRemainder {
			return nil, nil, compileErr(ErrUnsupportedOperationForType,
				"float division has no remainder output")
		}
		ctx.Emit.FDiv(prec, quot.Ref(), ua.Ref(), ub.Ref())
		return quot, nil, nil
	}
	var rem *Variable
	remRef := NoRef
	if wantRemainder {
		if rem, err = ctx.Temporary(t, prec, "remainder of "+a.Name+"/"+b.Name); err != nil {
			return nil, nil, err
		}
		remRef = rem.Ref()
	}
	ctx.Emit.Div(Width(t.WidthClass()), t.Signed(), quot.Ref(), remRef, ua.Ref(), ub.Ref())
	return quot, rem, nil
}

// Compare materializes the comparison of a and b under mode into a fresh
// byte temporary holding 0 or 1. Operands of differing integer widths raise
// a cross-width comparison warning before unification.
func (ctx *CompilationContext) Compare(mode CmpMode, a, b *Variable) (*Variable, error) {
	if a.Type.IsInteger() && b.Type.IsInteger() && a.WidthClass() != b.WidthClass() {
		ctx.Warnings.Warnf("comparing %s (%s) with %s (%s) across bit widths",
			a.Name, a.Type, b.Name, b.Type)
	}
	ua, ub, t, prec, err := ctx.unify(a, b)
	if err != nil {
		if ErrorIs(err, ErrUnsupportedOperationForType) {
			return nil, compileErr(ErrCannotCompare, "cannot compare %s and %s", a.Type, b.Type)
		}
		return nil, err
	}
	res, err := ctx.Temporary(VTByte, FloatSingle, "comparison of "+a.Name+" and "+b.Name)
	if err != nil {
		return nil, err
	}
	switch t {
	case VTDString:
		ctx.Emit.CallRuntime("dstrcmp_"+mode.String(), res.Ref(), ua.Ref(), ub.Ref())
	case VTFloat:
		ctx.Emit.FCmp(prec, mode, res.Ref(), ua.Ref(), ub.Ref())
	default:
		ctx.Emit.Cmp(Width(t.WidthClass()), mode, res.Ref(), ua.Ref(), ub.Ref())
	}
	return res, nil
}

// concatStrings emits dynamic-string concatenation via descriptor
// manipulation and two bounded memory moves.
func (ctx *CompilationContext) concatStrings(res, a, b *Variable) error {
	e := ctx.Emit
	aAddr, aLen, err := ctx.descriptorOf(a)
	if err != nil {
		return err
	}
	bAddr, bLen, err := ctx.descriptorOf(b)
	if err != nil {
		return err
	}
	sum, err := ctx.Temporary(VTByte, FloatSingle, "combined length")
	if err != nil {
		return err
	}
	e.Add(W8, sum.Ref(), aLen.Ref(), bLen.Ref())
	e.DStringResize(res.Ref(), sum.Ref())
	resAddr, _, err := ctx.descriptorOf(res)
	if err != nil {
		return err
	}
	e.MemMove(resAddr.Ref(), aAddr.Ref(), aLen.Ref())
	aLenWord, err := ctx.castTo(aLen, VTWord, FloatSingle)
	if err != nil {
		return err
	}
	second, err := ctx.Temporary(VTWord, FloatSingle, "second half address")
	if err != nil {
		return err
	}
	e.Add(W16, second.Ref(), resAddr.Ref(), aLenWord.Ref())
	e.MemMove(second.Ref(), bAddr.Ref(), bLen.Ref())
	if a.InitializedByConstant && b.InitializedByConstant {
		res.ValueString = a.ValueString + b.ValueString
		res.InitializedByConstant = true
	}
	return nil
}
