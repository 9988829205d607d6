package llvmir

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-cdfg/pkg/cdfg"
	"github.com/l3aro/go-cdfg/pkg/ir"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "llvm", name)
}

func parseKernel(t *testing.T) (*ir.Module, *ir.Function) {
	t.Helper()
	mod, err := ParseFile(fixture("kernel.ll"))
	require.NoError(t, err)
	fn, err := mod.FindFunction("kernel_main")
	require.NoError(t, err)
	return mod, fn
}

func categories(b *ir.Block) []ir.Category {
	var out []ir.Category
	for _, inst := range b.Instructions {
		out = append(out, inst.Category)
	}
	return out
}

func TestParseFile_Functions(t *testing.T) {
	mod, fn := parseKernel(t)

	var names []string
	for _, f := range mod.Functions {
		names = append(names, f.Name)
	}
	// declarations are skipped
	assert.Equal(t, []string{"helper", "scale", "kernel_main"}, names)

	assert.Equal(t, []string{"n", "p"}, fn.Params)
	require.Len(t, fn.Blocks, 3)
	assert.Equal(t, "entry", fn.Blocks[0].Name)
	assert.Equal(t, "then", fn.Blocks[1].Name)
	assert.Equal(t, "exit", fn.Blocks[2].Name)
	assert.Equal(t, 15, fn.NumInstructions())
}

func TestParseFile_Successors(t *testing.T) {
	_, fn := parseKernel(t)
	entry, then, exit := fn.Blocks[0], fn.Blocks[1], fn.Blocks[2]

	assert.Equal(t, []*ir.Block{then, exit}, entry.Succs())
	assert.Equal(t, []*ir.Block{exit}, then.Succs())
	assert.Empty(t, exit.Succs())
}

func TestParseFile_Categories(t *testing.T) {
	_, fn := parseKernel(t)

	assert.Equal(t, []ir.Category{
		ir.CategoryAlloca, ir.CategoryStore, ir.CategoryLoad, ir.CategoryCompare, ir.CategoryBranch,
	}, categories(fn.Blocks[0]))
	assert.Equal(t, []ir.Category{
		ir.CategoryLoad, ir.CategoryCast, ir.CategoryCast, ir.CategoryCall,
		ir.CategoryArith, ir.CategoryAddress, ir.CategoryStore, ir.CategoryBranch,
	}, categories(fn.Blocks[1]))
	assert.Equal(t, []ir.Category{ir.CategoryUnmodeled, ir.CategoryReturn}, categories(fn.Blocks[2]))

	phi := fn.Blocks[2].Instructions[0]
	assert.Equal(t, "phi", phi.Opcode)
	assert.Equal(t, "v", phi.Name)
	assert.Empty(t, phi.Operands)

	then := fn.Blocks[1].Instructions
	assert.Equal(t, []string{"load", "sext", "trunc", "call", "fadd", "getelementptr", "store", "br"},
		[]string{then[0].Opcode, then[1].Opcode, then[2].Opcode, then[3].Opcode, then[4].Opcode, then[5].Opcode, then[6].Opcode, then[7].Opcode})
}

func TestParseFile_Operands(t *testing.T) {
	_, fn := parseKernel(t)
	entry := fn.Blocks[0].Instructions
	then := fn.Blocks[1].Instructions
	exit := fn.Blocks[2].Instructions

	x := entry[0]
	assert.Equal(t, "x", x.Name)
	assert.Empty(t, x.Operands)

	store := entry[1]
	assert.Empty(t, store.Name)
	ptr, val, ok := store.StoreOperands()
	require.True(t, ok)
	assert.Same(t, x, ptr.Inst)
	assert.Equal(t, ir.KindIntConst, val.Kind)
	assert.Equal(t, int64(5), val.Int)
	assert.Equal(t, uint64(4), store.Align)
	assert.Contains(t, store.Text, "store")

	cmp := entry[3]
	require.Len(t, cmp.Operands, 2)
	assert.Same(t, entry[2], cmp.Operands[0].Inst)
	assert.Equal(t, ir.ArgValue("n"), cmp.Operands[1])

	cond, ok := entry[4].Condition()
	require.True(t, ok)
	assert.Same(t, cmp, cond.Inst)

	load := then[0]
	assert.Equal(t, []ir.Value{ir.GlobalValue("counter")}, load.Operands)
	assert.Equal(t, uint64(8), load.Align)

	call := then[3]
	require.Len(t, call.Operands, 2)
	assert.Same(t, then[2], call.Operands[0].Inst)
	callee, ok := call.Callee()
	require.True(t, ok)
	assert.Equal(t, ir.GlobalValue("helper"), callee)

	fadd := then[4]
	assert.Equal(t, []ir.Value{ir.DoubleValue(1.5), ir.DoubleValue(2)}, fadd.Operands)

	gep := then[5]
	assert.Equal(t, []ir.Value{ir.ArgValue("p"), ir.IntValue(2)}, gep.Operands)

	ret := exit[1]
	require.Len(t, ret.Operands, 1)
	assert.Same(t, exit[0], ret.Operands[0].Inst)
	assert.True(t, ret.Terminator)
}

func TestParseFile_FloatAndIntConstants(t *testing.T) {
	mod, err := ParseFile(fixture("kernel.ll"))
	require.NoError(t, err)

	scale, err := mod.FindFunction("scale")
	require.NoError(t, err)
	fmul := scale.Blocks[0].Instructions[0]
	assert.Equal(t, []ir.Value{ir.ArgValue("z"), ir.FloatValue(0.5)}, fmul.Operands)

	helper, err := mod.FindFunction("helper")
	require.NoError(t, err)
	add := helper.Blocks[0].Instructions[0]
	assert.Equal(t, "add", add.Opcode)
	assert.Equal(t, []ir.Value{ir.ArgValue("a"), ir.IntValue(1)}, add.Operands)
}

func TestParseBytes_Errors(t *testing.T) {
	_, err := ParseBytes("bad.ll", []byte("define i32 @f( {"))
	assert.ErrorIs(t, err, ErrParse)

	_, err = ParseFile(fixture("does-not-exist.ll"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrParse)
}

func TestBuild_KernelEndToEnd(t *testing.T) {
	mod, fn := parseKernel(t)

	res, err := cdfg.Build(mod, "kernel")
	require.NoError(t, err)
	assert.Same(t, fn, res.Function)
	assert.Equal(t, fn.NumInstructions(), res.ComputedCount())
	assert.Equal(t, 3, res.BlockGraph.NumEdges())

	then := fn.Blocks[1]
	tc := res.CDFG(then)
	require.NotNil(t, tc)

	g, ok := tc.Vertices[1].(*cdfg.NamedExternal)
	require.True(t, ok)
	assert.Equal(t, "counter", g.Name)
	assert.Equal(t, cdfg.OriginGlobal, g.Origin)
	assert.Equal(t, uint64(8), g.Align)

	store := then.Instructions[6]
	sv, ok := res.VertexOf(store)
	require.True(t, ok)
	got, _ := tc.Uses.Get(sv)
	assert.Equal(t, []*ir.Instruction{then.Instructions[5], then.Instructions[3]}, got)

	exit := fn.Blocks[2]
	rv, ok := res.VertexOf(exit.Instructions[1])
	require.True(t, ok)
	got, _ = res.CDFG(exit).Uses.Get(rv)
	assert.Equal(t, []*ir.Instruction{exit.Instructions[0]}, got)
}

func TestBuild_LoopBlockGraph(t *testing.T) {
	mod, err := ParseFile(fixture("loop.ll"))
	require.NoError(t, err)

	res, err := cdfg.Build(mod, "loop")
	require.NoError(t, err)

	var edges [][2]int
	for _, e := range res.BlockGraph.Edges() {
		edges = append(edges, [2]int{int(e.From), int(e.To)})
	}
	assert.Equal(t, [][2]int{{0, 1}, {1, 3}, {1, 2}, {2, 1}}, edges)

	exit := res.Function.Blocks[3]
	store := exit.Instructions[0]
	sv, ok := res.VertexOf(store)
	require.True(t, ok)
	got, _ := res.CDFG(exit).Uses.Get(sv)
	// %acc is a phi in the header
	assert.Equal(t, []*ir.Instruction{res.Function.Blocks[1].Instructions[1]}, got)
}

func TestSignExtend(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 64)
	huge.Add(huge, big.NewInt(5))

	tests := []struct {
		x    *big.Int
		bits uint64
		want int64
	}{
		{big.NewInt(1), 1, -1},
		{big.NewInt(0), 1, 0},
		{big.NewInt(255), 8, -1},
		{big.NewInt(127), 8, 127},
		{big.NewInt(-1), 32, -1},
		{big.NewInt(42), 64, 42},
		{huge, 128, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, signExtend(tt.x, tt.bits), "%s/i%d", tt.x, tt.bits)
	}
}

func TestOpcodeOf(t *testing.T) {
	assert.Equal(t, "phi", opcodeOf("%v = phi i32 [ 0, %a ], [ 1, %b ]"))
	assert.Equal(t, "call", opcodeOf("tail call void @f()"))
	assert.Equal(t, "unreachable", opcodeOf("unreachable"))
	assert.Equal(t, "unknown", opcodeOf(""))
}
