package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_FindFunction(t *testing.T) {
	mod := NewModule("m",
		NewFunction("helper"),
		NewFunction("_Z6kernelPi"),
		NewFunction("kernel_tail"),
	)

	tests := []struct {
		name    string
		target  string
		want    string
		wantErr bool
	}{
		{name: "exact", target: "helper", want: "helper"},
		{name: "substring picks first match", target: "kernel", want: "_Z6kernelPi"},
		{name: "suffix", target: "tail", want: "kernel_tail"},
		{name: "missing", target: "main", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := mod.FindFunction(tt.target)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrFunctionNotFound)
				assert.Contains(t, err.Error(), tt.target)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn.Name)
		})
	}
}

func TestModule_FindFunctionEmptyModule(t *testing.T) {
	_, err := NewModule("empty").FindFunction("")
	assert.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestBlock_SuccsAndTerminator(t *testing.T) {
	fn := NewFunction("f", "n")
	entry := fn.NewBlock("entry")
	then := fn.NewBlock("then")
	exit := fn.NewBlock("exit")

	cmp := entry.NewInstruction(CategoryCompare, "icmp", "c", ArgValue("n"), IntValue(0))
	br := entry.NewInstruction(CategoryBranch, "br", "", InstValue(cmp)).To(then, exit)
	then.NewInstruction(CategoryBranch, "br", "").To(exit)
	ret := exit.NewInstruction(CategoryReturn, "ret", "")

	assert.Same(t, br, entry.Terminator())
	assert.Equal(t, []*Block{then, exit}, entry.Succs())
	assert.Equal(t, []*Block{exit}, then.Succs())
	assert.Same(t, ret, exit.Terminator())
	assert.Empty(t, exit.Succs())

	cond, ok := br.Condition()
	require.True(t, ok)
	assert.Same(t, cmp, cond.Inst)

	assert.Equal(t, 4, fn.NumInstructions())
	assert.Equal(t, []int{0, 1}, []int{cmp.Index, br.Index})
	assert.Same(t, then, fn.Block("then"))
	assert.Nil(t, fn.Block("nope"))
}

func TestBlock_NoTerminator(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock("b")
	assert.Nil(t, b.Terminator())

	b.NewInstruction(CategoryAlloca, "alloca", "x")
	assert.Nil(t, b.Terminator())
	assert.Nil(t, b.Succs())
}

func TestInstruction_OperandAccessors(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock("entry")
	x := b.NewInstruction(CategoryAlloca, "alloca", "x")
	st := b.NewInstruction(CategoryStore, "store", "", IntValue(5), InstValue(x))
	call := b.NewInstruction(CategoryCall, "call", "r", InstValue(x), GlobalValue("puts"))

	ptr, val, ok := st.StoreOperands()
	require.True(t, ok)
	assert.Same(t, x, ptr.Inst)
	assert.Equal(t, int64(5), val.Int)

	callee, ok := call.Callee()
	require.True(t, ok)
	assert.Equal(t, "puts", callee.Name)

	_, _, ok = call.StoreOperands()
	assert.False(t, ok)
	_, ok = st.Callee()
	assert.False(t, ok)
}

func TestInstruction_String(t *testing.T) {
	fn := NewFunction("f")
	entry := fn.NewBlock("entry")
	exit := fn.NewBlock("exit")
	x := entry.NewInstruction(CategoryAlloca, "alloca", "x")
	st := entry.NewInstruction(CategoryStore, "store", "", IntValue(-3), InstValue(x))
	br := entry.NewInstruction(CategoryBranch, "br", "").To(exit)

	assert.Equal(t, "%x = alloca", x.String())
	assert.Equal(t, "store -3, %x", st.String())
	assert.Equal(t, "br label %exit", br.String())

	st.Text = "store i32 -3, ptr %x"
	assert.Equal(t, "store i32 -3, ptr %x", st.String())
}

func TestValue_String(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock("b")
	anon := b.NewInstruction(CategoryStore, "store", "")

	tests := []struct {
		value Value
		want  string
	}{
		{IntValue(-7), "-7"},
		{FloatValue(0.5), "0.5"},
		{DoubleValue(2.25), "2.25"},
		{ArgValue("n"), "%n"},
		{GlobalValue("g"), "@g"},
		{ConstValue("undef"), "undef"},
		{UnknownValue("metadata !0"), "metadata !0"},
		{InstValue(anon), "store#0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.value.String())
	}
}

func TestValue_IsConstant(t *testing.T) {
	assert.True(t, IntValue(1).IsConstant())
	assert.True(t, FloatValue(1).IsConstant())
	assert.True(t, DoubleValue(1).IsConstant())
	assert.True(t, ConstValue("null").IsConstant())
	assert.False(t, ArgValue("a").IsConstant())
	assert.False(t, GlobalValue("g").IsConstant())
	assert.False(t, UnknownValue("?").IsConstant())
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "alloca", CategoryAlloca.String())
	assert.Equal(t, "arith", CategoryArith.String())
	assert.Equal(t, "Category(99)", Category(99).String())
	assert.Equal(t, "global", KindGlobal.String())
}
