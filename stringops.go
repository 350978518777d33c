// Completion: 100% - String functions complete, folding + descriptor emission
package main

import (
	"fmt"
	"strconv"
	"strings"
)

// String functions resolve the two string representations (static: length
// byte + inline bytes, dynamic: descriptor) and emit descriptor manipulation
// plus bounded memory moves. When every operand is a compile-time constant
// the result folds and only the final constant assignment is emitted.

// StaticStringVar wraps a string literal as a read-only static string
// variable backed by the constant pool.
func (ctx *CompilationContext) StaticStringVar(s string) *Variable {
	return &Variable{
		Name:                  strconv.Quote(s),
		RealName:              ctx.StringConstant(s),
		Type:                  VTString,
		Size:                  len(s) + 1,
		ValueString:           s,
		InitializedByConstant: true,
		ReadOnly:              true,
		Bank:                  BankStrings,
	}
}

// constDString materializes a compile-time string into a fresh dynamic
// string temporary.
func (ctx *CompilationContext) constDString(s, meaning string) (*Variable, error) {
	res, err := ctx.Temporary(VTDString, FloatSingle, meaning)
	if err != nil {
		return nil, err
	}
	if err := ctx.moveStaticToDynamic(ctx.StaticStringVar(s), res); err != nil {
		return nil, err
	}
	return res, nil
}

// asDString brings either string representation to a dynamic string.
func (ctx *CompilationContext) asDString(s *Variable) (*Variable, error) {
	if s.Type == VTDString {
		return s, nil
	}
	if s.Type == VTString {
		return ctx.Cast(s, VTDString)
	}
	return nil, compileErr(ErrUnsupportedOperationForType,
		"%s (%s) is not a string", s.Name, s.Type)
}

// constInt reports whether v is a compile-time integer constant.
func constInt(v *Variable) (int, bool) {
	if v.InitializedByConstant && v.Type.IsInteger() {
		return int(v.Value), true
	}
	return 0, false
}

// constStr reports whether v is a compile-time string constant.
func constStr(v *Variable) (string, bool) {
	if v.InitializedByConstant && v.Type.IsString() {
		return v.ValueString, true
	}
	return "", false
}

// clampByteTo emits "k = min(n, limit)" into a fresh byte temporary. The
// count is always copied first so the clamp never writes back into the
// caller's operand.
func (ctx *CompilationContext) clampByteTo(n, limit *Variable) (*Variable, error) {
	k, err := ctx.Temporary(VTByte, FloatSingle, "clamped count")
	if err != nil {
		return nil, err
	}
	if err := ctx.Move(n, k); err != nil {
		return nil, err
	}
	e := ctx.Emit
	ok, err := ctx.Temporary(VTByte, FloatSingle, "clamp flag")
	if err != nil {
		return nil, err
	}
	e.Cmp(W8, CmpLe, ok.Ref(), k.Ref(), limit.Ref())
	fix := ctx.NewLabel()
	done := ctx.NewLabel()
	e.JumpIfZero(W8, ok.Ref(), fix)
	e.Jump(done)
	e.Label(fix)
	e.Move(W8, k.Ref(), limit.Ref())
	e.Label(done)
	return k, nil
}

// StrLeft implements LEFT$(s, n): the first n characters, clamped to the
// source length. n of zero yields the empty dynamic string.
func (ctx *CompilationContext) StrLeft(s, n *Variable) (*Variable, error) {
	if sv, ok := constStr(s); ok {
		if k, ok := constInt(n); ok {
			if k > len(sv) {
				k = len(sv)
			}
			if k < 0 {
				k = 0
			}
			return ctx.constDString(sv[:k], "LEFT$ of "+s.Name)
		}
	}
	ds, err := ctx.asDString(s)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Temporary(VTDString, FloatSingle, "LEFT$ of "+s.Name)
	if err != nil {
		return nil, err
	}
	srcAddr, srcLen, err := ctx.descriptorOf(ds)
	if err != nil {
		return nil, err
	}
	k, err := ctx.clampByteTo(n, srcLen)
	if err != nil {
		return nil, err
	}
	e := ctx.Emit
	e.DStringResize(res.Ref(), k.Ref())
	resAddr, _, err := ctx.descriptorOf(res)
	if err != nil {
		return nil, err
	}
	e.MemMove(resAddr.Ref(), srcAddr.Ref(), k.Ref())
	return res, nil
}

// StrRight implements RIGHT$(s, n): the last n characters.
func (ctx *CompilationContext) StrRight(s, n *Variable) (*Variable, error) {
	if sv, ok := constStr(s); ok {
		if k, ok := constInt(n); ok {
			if k > len(sv) {
				k = len(sv)
			}
			if k < 0 {
				k = 0
			}
			return ctx.constDString(sv[len(sv)-k:], "RIGHT$ of "+s.Name)
		}
	}
	ds, err := ctx.asDString(s)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Temporary(VTDString, FloatSingle, "RIGHT$ of "+s.Name)
	if err != nil {
		return nil, err
	}
	srcAddr, srcLen, err := ctx.descriptorOf(ds)
	if err != nil {
		return nil, err
	}
	k, err := ctx.clampByteTo(n, srcLen)
	if err != nil {
		return nil, err
	}
	e := ctx.Emit
	e.DStringResize(res.Ref(), k.Ref())
	// start = srcAddr + srcLen - k
	skip, err := ctx.Temporary(VTByte, FloatSingle, "skipped length")
	if err != nil {
		return nil, err
	}
	e.Sub(W8, skip.Ref(), srcLen.Ref(), k.Ref())
	skipWord, err := ctx.castTo(skip, VTWord, FloatSingle)
	if err != nil {
		return nil, err
	}
	start, err := ctx.Temporary(VTWord, FloatSingle, "start address")
	if err != nil {
		return nil, err
	}
	e.Add(W16, start.Ref(), srcAddr.Ref(), skipWord.Ref())
	resAddr, _, err := ctx.descriptorOf(res)
	if err != nil {
		return nil, err
	}
	e.MemMove(resAddr.Ref(), start.Ref(), k.Ref())
	return res, nil
}

// StrMid implements MID$(s, pos[, length]): length characters from the
// 1-based position pos, to the end of the string when length is nil.
func (ctx *CompilationContext) StrMid(s, pos, length *Variable) (*Variable, error) {
	if sv, ok := constStr(s); ok {
		if p, ok := constInt(pos); ok {
			l := len(sv) - (p - 1)
			folded := length == nil
			if length != nil {
				if lc, ok := constInt(length); ok {
					l = lc
					folded = true
				}
			}
			if folded {
				if p < 1 {
					p = 1
				}
				if p > len(sv)+1 {
					p = len(sv) + 1
				}
				if l > len(sv)-(p-1) {
					l = len(sv) - (p - 1)
				}
				if l < 0 {
					l = 0
				}
				return ctx.constDString(sv[p-1:p-1+l], "MID$ of "+s.Name)
			}
		}
	}
	ds, err := ctx.asDString(s)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Temporary(VTDString, FloatSingle, "MID$ of "+s.Name)
	if err != nil {
		return nil, err
	}
	srcAddr, srcLen, err := ctx.descriptorOf(ds)
	if err != nil {
		return nil, err
	}
	e := ctx.Emit
	// skip = pos - 1, clamped to the source length
	posByte, err := ctx.castTo(pos, VTByte, FloatSingle)
	if err != nil {
		return nil, err
	}
	skip, err := ctx.Temporary(VTByte, FloatSingle, "skipped length")
	if err != nil {
		return nil, err
	}
	e.SubConst(W8, skip.Ref(), posByte.Ref(), 1)
	skip, err = ctx.clampByteTo(skip, srcLen)
	if err != nil {
		return nil, err
	}
	// remaining = srcLen - skip; k = min(length, remaining)
	remaining, err := ctx.Temporary(VTByte, FloatSingle, "remaining length")
	if err != nil {
		return nil, err
	}
	e.Sub(W8, remaining.Ref(), srcLen.Ref(), skip.Ref())
	k := remaining
	if length != nil {
		if k, err = ctx.clampByteTo(length, remaining); err != nil {
			return nil, err
		}
	}
	e.DStringResize(res.Ref(), k.Ref())
	skipWord, err := ctx.castTo(skip, VTWord, FloatSingle)
	if err != nil {
		return nil, err
	}
	start, err := ctx.Temporary(VTWord, FloatSingle, "start address")
	if err != nil {
		return nil, err
	}
	e.Add(W16, start.Ref(), srcAddr.Ref(), skipWord.Ref())
	resAddr, _, err := ctx.descriptorOf(res)
	if err != nil {
		return nil, err
	}
	e.MemMove(resAddr.Ref(), start.Ref(), k.Ref())
	return res, nil
}

// StrMidAssign implements the assignment form MID$(target, pos[, length]) =
// replacement, which may grow or shrink the target's backing allocation.
func (ctx *CompilationContext) StrMidAssign(target, pos, length, repl *Variable) error {
	if target.Type != VTDString {
		return compileErr(ErrUnsupportedOperationForType,
			"MID$ assignment needs a dynamic string target, got %s", target.Type)
	}
	if tv, ok := constStr(target); ok {
		if p, ok := constInt(pos); ok {
			if rv, ok := constStr(repl); ok {
				l := len(rv)
				folded := length == nil
				if length != nil {
					if lc, ok := constInt(length); ok {
						l = lc
						folded = true
					}
				}
				if folded && p >= 1 && p-1 <= len(tv) {
					if l > len(rv) {
						l = len(rv)
					}
					end := p - 1 + l
					if end > len(tv) {
						end = len(tv)
					}
					out := tv[:p-1] + rv[:l] + tv[end:]
					return ctx.moveStaticToDynamic(ctx.StaticStringVar(out), target)
				}
			}
		}
	}
	dr, err := ctx.asDString(repl)
	if err != nil {
		return err
	}
	lenRef := NoRef
	if length != nil {
		lb, err := ctx.castTo(length, VTByte, FloatSingle)
		if err != nil {
			return err
		}
		lenRef = lb.Ref()
	}
	pb, err := ctx.castTo(pos, VTByte, FloatSingle)
	if err != nil {
		return err
	}
	target.InitializedByConstant = false
	target.ValueString = ""
	ctx.Emit.CallRuntime("dstrmidassign", target.Ref(), pb.Ref(), lenRef, dr.Ref())
	return nil
}

// StrLen implements LEN(s) as a byte temporary.
func (ctx *CompilationContext) StrLen(s *Variable) (*Variable, error) {
	res, err := ctx.Temporary(VTByte, FloatSingle, "LEN of "+s.Name)
	if err != nil {
		return nil, err
	}
	if sv, ok := constStr(s); ok {
		ctx.Emit.MoveConst(W8, res.Ref(), int64(len(sv)))
		res.Value = int64(len(sv))
		res.InitializedByConstant = true
		return res, nil
	}
	ds, err := ctx.asDString(s)
	if err != nil {
		return nil, err
	}
	_, srcLen, err := ctx.descriptorOf(ds)
	if err != nil {
		return nil, err
	}
	ctx.Emit.Move(W8, res.Ref(), srcLen.Ref())
	return res, nil
}

// StrInstr implements INSTR(s, needle[, start]) via the runtime scanner.
func (ctx *CompilationContext) StrInstr(s, needle, start *Variable) (*Variable, error) {
	if sv, ok := constStr(s); ok {
		if nv, ok := constStr(needle); ok {
			from := 1
			folded := start == nil
			if start != nil {
				if f, ok := constInt(start); ok {
					from = f
					folded = true
				}
			}
			if folded {
				if from < 1 {
					from = 1
				}
				idx := 0
				if from-1 <= len(sv) {
					if at := strings.Index(sv[from-1:], nv); at >= 0 {
						idx = from + at
					}
				}
				res, err := ctx.Temporary(VTByte, FloatSingle, "INSTR result")
				if err != nil {
					return nil, err
				}
				ctx.Emit.MoveConst(W8, res.Ref(), int64(idx))
				res.Value = int64(idx)
				res.InitializedByConstant = true
				return res, nil
			}
		}
	}
	ds, err := ctx.asDString(s)
	if err != nil {
		return nil, err
	}
	dn, err := ctx.asDString(needle)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Temporary(VTByte, FloatSingle, "INSTR result")
	if err != nil {
		return nil, err
	}
	startRef := NoRef
	if start != nil {
		sb, err := ctx.castTo(start, VTByte, FloatSingle)
		if err != nil {
			return nil, err
		}
		startRef = sb.Ref()
	}
	ctx.Emit.CallRuntime("dstrinstr", res.Ref(), ds.Ref(), dn.Ref(), startRef)
	return res, nil
}

// caseConvert backs StrUpper and StrLower.
func (ctx *CompilationContext) caseConvert(s *Variable, routine string, fold func(string) string) (*Variable, error) {
	if sv, ok := constStr(s); ok {
		return ctx.constDString(fold(sv), routine+" of "+s.Name)
	}
	ds, err := ctx.asDString(s)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Temporary(VTDString, FloatSingle, routine+" of "+s.Name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Move(ds, res); err != nil {
		return nil, err
	}
	ctx.Emit.CallRuntime(routine, res.Ref())
	return res, nil
}

// StrUpper implements UPPER$(s).
func (ctx *CompilationContext) StrUpper(s *Variable) (*Variable, error) {
	return ctx.caseConvert(s, "dstrupper", strings.ToUpper)
}

// StrLower implements LOWER$(s).
func (ctx *CompilationContext) StrLower(s *Variable) (*Variable, error) {
	return ctx.caseConvert(s, "dstrlower", strings.ToLower)
}

// StrFlip implements FLIP$(s), reversing the characters.
func (ctx *CompilationContext) StrFlip(s *Variable) (*Variable, error) {
	return ctx.caseConvert(s, "dstrflip", func(in string) string {
		b := []byte(in)
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
		return string(b)
	})
}

// StrStr implements STR$(v): the decimal rendering of a number.
func (ctx *CompilationContext) StrStr(v *Variable) (*Variable, error) {
	if n, ok := constInt(v); ok {
		return ctx.constDString(strconv.Itoa(n), "STR$ of "+v.Name)
	}
	res, err := ctx.Temporary(VTDString, FloatSingle, "STR$ of "+v.Name)
	if err != nil {
		return nil, err
	}
	switch {
	case v.Type == VTFloat:
		ctx.Emit.CallRuntime(fmt.Sprintf("fstr_%s", v.Precision), res.Ref(), v.Ref())
	case v.Type.IsInteger():
		sign := "u"
		if v.Type.Signed() {
			sign = "s"
		}
		ctx.Emit.CallRuntime(fmt.Sprintf("istr%d%s", v.WidthClass(), sign), res.Ref(), v.Ref())
	default:
		return nil, compileErr(ErrUnsupportedOperationForType, "STR$ of %s", v.Type)
	}
	return res, nil
}

// StrVal implements VAL(s): the numeric value of a string, as a float.
func (ctx *CompilationContext) StrVal(s *Variable) (*Variable, error) {
	ds, err := ctx.asDString(s)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Temporary(VTFloat, FloatSingle, "VAL of "+s.Name)
	if err != nil {
		return nil, err
	}
	ctx.Emit.CallRuntime("dstrval", res.Ref(), ds.Ref())
	return res, nil
}

// StrChr implements CHR$(v): the one-character string with code v.
func (ctx *CompilationContext) StrChr(v *Variable) (*Variable, error) {
	if n, ok := constInt(v); ok {
		return ctx.constDString(string(rune(byte(n))), "CHR$ of "+v.Name)
	}
	vb, err := ctx.castTo(v, VTByte, FloatSingle)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Temporary(VTDString, FloatSingle, "CHR$ of "+v.Name)
	if err != nil {
		return nil, err
	}
	e := ctx.Emit
	e.DStringResizeConst(res.Ref(), 1)
	resAddr, _, err := ctx.descriptorOf(res)
	if err != nil {
		return nil, err
	}
	srcPtr, err := ctx.Temporary(VTWord, FloatSingle, "address of "+vb.Name)
	if err != nil {
		return nil, err
	}
	e.LoadAddress(srcPtr.Ref(), vb.Ref())
	e.MemMoveConst(resAddr.Ref(), srcPtr.Ref(), 1)
	return res, nil
}

// StrAsc implements ASC(s): the code of the first character.
func (ctx *CompilationContext) StrAsc(s *Variable) (*Variable, error) {
	res, err := ctx.Temporary(VTByte, FloatSingle, "ASC of "+s.Name)
	if err != nil {
		return nil, err
	}
	if sv, ok := constStr(s); ok && len(sv) > 0 {
		ctx.Emit.MoveConst(W8, res.Ref(), int64(sv[0]))
		res.Value = int64(sv[0])
		res.InitializedByConstant = true
		return res, nil
	}
	ds, err := ctx.asDString(s)
	if err != nil {
		return nil, err
	}
	srcAddr, _, err := ctx.descriptorOf(ds)
	if err != nil {
		return nil, err
	}
	dstPtr, err := ctx.Temporary(VTWord, FloatSingle, "address of "+res.Name)
	if err != nil {
		return nil, err
	}
	e := ctx.Emit
	e.LoadAddress(dstPtr.Ref(), res.Ref())
	e.MemMoveConst(dstPtr.Ref(), srcAddr.Ref(), 1)
	return res, nil
}

// radixString backs StrBin and StrHex.
func (ctx *CompilationContext) radixString(v, digits *Variable, base int, routine string) (*Variable, error) {
	if n, ok := constInt(v); ok {
		d := 0
		folded := digits == nil
		if digits != nil {
			if dc, ok := constInt(digits); ok {
				d = dc
				folded = true
			}
		}
		if folded {
			s := strconv.FormatUint(uint64(uint32(n)), base)
			s = strings.ToUpper(s)
			for len(s) < d {
				s = "0" + s
			}
			return ctx.constDString(s, routine+" of "+v.Name)
		}
	}
	res, err := ctx.Temporary(VTDString, FloatSingle, routine+" of "+v.Name)
	if err != nil {
		return nil, err
	}
	digitsRef := NoRef
	if digits != nil {
		db, err := ctx.castTo(digits, VTByte, FloatSingle)
		if err != nil {
			return nil, err
		}
		digitsRef = db.Ref()
	}
	ctx.Emit.CallRuntime(routine, res.Ref(), v.Ref(), digitsRef)
	return res, nil
}

// StrBin implements BIN$(v[, digits]).
func (ctx *CompilationContext) StrBin(v, digits *Variable) (*Variable, error) {
	return ctx.radixString(v, digits, 2, "dstrbin")
}

// StrHex implements HEX$(v[, digits]).
func (ctx *CompilationContext) StrHex(v, digits *Variable) (*Variable, error) {
	return ctx.radixString(v, digits, 16, "dstrhex")
}
