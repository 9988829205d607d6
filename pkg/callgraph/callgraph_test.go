package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-cdfg/pkg/ir"
)

func testModule() *ir.Module {
	helper := ir.NewFunction("helper", "a")
	hb := helper.NewBlock("entry")
	hb.NewInstruction(ir.CategoryCall, "call", "", ir.GlobalValue("puts"))
	hb.NewInstruction(ir.CategoryReturn, "ret", "")

	main := ir.NewFunction("main", "fp")
	entry := main.NewBlock("entry")
	then := main.NewBlock("then")
	exit := main.NewBlock("exit")
	c := entry.NewInstruction(ir.CategoryCall, "call", "c", ir.IntValue(1), ir.GlobalValue("helper"))
	entry.NewInstruction(ir.CategoryBranch, "br", "", ir.InstValue(c)).To(then, exit)
	then.NewInstruction(ir.CategoryCall, "call", "", ir.GlobalValue("helper"))
	then.NewInstruction(ir.CategoryCall, "call", "", ir.ArgValue("fp"))
	then.NewInstruction(ir.CategoryBranch, "br", "").To(exit)
	exit.NewInstruction(ir.CategoryReturn, "ret", "")

	return ir.NewModule("m", helper, main)
}

func TestSites(t *testing.T) {
	sites := Sites(testModule())

	require.Len(t, sites, 4)
	assert.Equal(t, CallSite{Caller: "helper", Callee: "puts", Block: "entry", Index: 0, Type: ExternalCall}, sites[0])
	assert.Equal(t, CallSite{Caller: "main", Callee: "helper", Block: "entry", Index: 0, Type: LocalCall}, sites[1])
	assert.Equal(t, LocalCall, sites[2].Type)
	assert.Equal(t, CallSite{Caller: "main", Block: "then", Index: 3, Type: IndirectCall}, sites[3])
}

func TestBuild(t *testing.T) {
	g := Build(testModule())

	assert.Equal(t, []string{"helper", "main"}, g.Nodes[:2])

	pairs := make(map[[2]string]int)
	for _, e := range g.Edges {
		pairs[[2]string{e.Caller, e.Callee}]++
	}
	assert.Equal(t, 1, pairs[[2]string{"main", "helper"}])
	assert.Equal(t, 1, pairs[[2]string{"helper", "puts"}])
	assert.Len(t, pairs, 2)
}

func TestBuildFuncCFG(t *testing.T) {
	mod := testModule()
	main, err := mod.FindFunction("main")
	require.NoError(t, err)

	lcfg := BuildFuncCFG(main)
	assert.Equal(t, "main", lcfg.Name)
	require.Len(t, lcfg.Blocks, 3)

	entry := lcfg.Blocks[0]
	assert.Equal(t, 0, entry.Start)
	assert.Equal(t, 2, entry.End)
	assert.False(t, entry.Term)
	require.Len(t, entry.Succs, 2)
	assert.Equal(t, 1, entry.Succs[0].BlockID)
	assert.Equal(t, "T", entry.Succs[0].Cond)
	assert.Equal(t, 2, entry.Succs[1].BlockID)
	assert.Equal(t, "F", entry.Succs[1].Cond)
	require.Len(t, entry.Calls, 1)
	assert.Equal(t, "helper", entry.Calls[0].Callee)

	then := lcfg.Blocks[1]
	require.Len(t, then.Succs, 1)
	assert.Empty(t, then.Succs[0].Cond)
	require.Len(t, then.Calls, 2)
	assert.Equal(t, "%fp", then.Calls[1].Callee)

	assert.True(t, lcfg.Blocks[2].Term)
}

func TestDOT(t *testing.T) {
	mod := testModule()
	assert.NotEmpty(t, DOT(mod, "calls"))

	main, err := mod.FindFunction("main")
	require.NoError(t, err)
	assert.NotEmpty(t, CFGDOT(main))
}
