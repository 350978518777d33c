package main

import (
	"strings"
	"testing"
)

// newTestContext builds a compilation context on the synthetic test machine.
func newTestContext(t testing.TB, cpu Cpu) *CompilationContext {
	t.Helper()
	return NewCompilationContext(TestMachine(cpu), NewSink())
}

func mustDefine(t testing.TB, ctx *CompilationContext, name string, vt VarType) *Variable {
	t.Helper()
	v, err := ctx.Define(name, vt, FloatSingle)
	if err != nil {
		t.Fatalf("Define %s: %v", name, err)
	}
	return v
}

func mustTemp(t testing.TB, ctx *CompilationContext, vt VarType) *Variable {
	t.Helper()
	v, err := ctx.Temporary(vt, FloatSingle, "test scratch")
	if err != nil {
		t.Fatalf("Temporary %s: %v", vt, err)
	}
	return v
}

// constByte returns a byte temporary carrying a compile-time constant.
func constByte(t testing.TB, ctx *CompilationContext, value int) *Variable {
	t.Helper()
	v := mustTemp(t, ctx, VTByte)
	ctx.Emit.MoveConst(W8, v.Ref(), int64(value))
	v.Value = int64(value)
	v.InitializedByConstant = true
	return v
}

func compileProgram(t testing.TB, src string) *CompilationContext {
	t.Helper()
	ctx := newTestContext(t, Cpu6502)
	if err := NewDriver(ctx).CompileSource("test.bas", src); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return ctx
}

func mustRetrieve(t testing.TB, ctx *CompilationContext, name string) *Variable {
	t.Helper()
	v, err := ctx.Retrieve(name, true)
	if err != nil {
		t.Fatalf("Retrieve %s: %v", name, err)
	}
	return v
}

func codeContains(t testing.TB, ctx *CompilationContext, want string) {
	t.Helper()
	if !strings.Contains(ctx.Sink.Code(), want) {
		t.Fatalf("expected %q in generated code:\n%s", want, ctx.Sink.Code())
	}
}
