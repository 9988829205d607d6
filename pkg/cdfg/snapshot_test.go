package cdfg

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-cdfg/pkg/ir"
)

func TestNewSnapshot(t *testing.T) {
	s := newStoreLoadFunc("main")
	res, err := BuildFunction(s.fn)
	require.NoError(t, err)

	snap := NewSnapshot(res)
	assert.Equal(t, "main", snap.Function)
	assert.Equal(t, []ControlEdge{{From: "entry", To: "exit"}}, snap.ControlEdges)
	require.Len(t, snap.Blocks, 2)
	assert.Equal(t, 6, snap.NumVertices())

	entry := snap.Blocks[0]
	assert.Equal(t, "entry", entry.Name)
	require.Len(t, entry.Vertices, 5)

	store := entry.Vertices[1]
	assert.Equal(t, "computed", store.Kind)
	assert.Equal(t, s.store.Index, store.Instruction)
	assert.Equal(t, []int{s.alloca.Index}, store.Uses)
	assert.Equal(t, []int{s.store.Index}, store.Defs)

	leaf := entry.Vertices[2]
	assert.Equal(t, "int", leaf.Kind)
	assert.Equal(t, "5", leaf.Label)
	assert.Equal(t, -1, leaf.Instruction)
	assert.Empty(t, leaf.Uses)

	assert.Equal(t, []EdgeRecord{{From: 2, To: 1, Operand: "5"}}, entry.Edges)

	exit := snap.Blocks[1]
	require.Len(t, exit.Vertices, 1)
	assert.Equal(t, []int{s.load.Index}, exit.Vertices[0].Uses)
	assert.Empty(t, exit.Vertices[0].Defs)
}

func TestSnapshot_EncodeDecode(t *testing.T) {
	s := newStoreLoadFunc("main")
	res, err := BuildFunction(s.fn)
	require.NoError(t, err)
	snap := NewSnapshot(res)

	data, err := snap.Encode()
	require.NoError(t, err)

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	_, err = DecodeSnapshot([]byte{0xc1})
	assert.Error(t, err)
}

func TestSnapshot_JSON(t *testing.T) {
	fn := ir.NewFunction("f", "a")
	fn.NewBlock("entry").NewInstruction(ir.CategoryCast, "sext", "w", ir.ArgValue("a"))
	res, err := BuildFunction(fn)
	require.NoError(t, err)

	data, err := json.Marshal(NewSnapshot(res))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "f", decoded["function"])
	assert.Contains(t, decoded, "control_edges")

	blocks := decoded["blocks"].([]interface{})
	require.Len(t, blocks, 1)
	vertices := blocks[0].(map[string]interface{})["vertices"].([]interface{})
	require.Len(t, vertices, 2)
	assert.Equal(t, "external", vertices[1].(map[string]interface{})["kind"])
	assert.Equal(t, "%a", vertices[1].(map[string]interface{})["label"])
}

func TestVertexLabels(t *testing.T) {
	fn := ir.NewFunction("f")
	inst := fn.NewBlock("b").NewInstruction(ir.CategoryAlloca, "alloca", "x")

	tests := []struct {
		v    Vertex
		kind Kind
		want string
	}{
		{&Computed{Inst: inst}, KindComputed, "%x = alloca"},
		{&IntConst{Value: -2}, KindIntConst, "-2"},
		{&FloatConst{Value: 0.25}, KindFloatConst, "0.25f"},
		{&DoubleConst{Value: 1e-3}, KindDoubleConst, "0.001"},
		{&NamedExternal{Name: "g", Origin: OriginGlobal}, KindNamedExternal, "@g"},
		{&NamedExternal{Name: "p", Align: 8}, KindNamedExternal, "%p align 8"},
		{&Unresolved{Operand: "undef"}, KindUnresolved, "? undef"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.v.Kind())
		assert.Equal(t, tt.want, tt.v.Label())
	}
	assert.Equal(t, "unresolved", KindUnresolved.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestTable(t *testing.T) {
	tbl := newTable()
	a := &IntConst{Value: 1}
	b := &IntConst{Value: 1}

	tbl.Set(a, nil)
	tbl.Set(b, []*ir.Instruction{{Index: 3}})
	tbl.Set(a, []*ir.Instruction{{Index: 9}})

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []Vertex{a, b}, tbl.Vertices())

	got, ok := tbl.Get(a)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].Index)

	assert.False(t, tbl.Has(&IntConst{Value: 1}))
}

func TestSnapshot_ExportBlockGraphMatchesLive(t *testing.T) {
	s := newStoreLoadFunc("main")
	res, err := BuildFunction(s.fn)
	require.NoError(t, err)

	dir := t.TempDir()
	live := filepath.Join(dir, "live.dot")
	cached := filepath.Join(dir, "cached.dot")
	require.NoError(t, ExportBlockGraph(res.BlockGraph, "main", live))

	data, err := NewSnapshot(res).Encode()
	require.NoError(t, err)
	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)
	require.NoError(t, snap.ExportBlockGraph(cached))

	want, err := os.ReadFile(live)
	require.NoError(t, err)
	got, err := os.ReadFile(cached)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestSnapshot_BlockGraphUnknownBlock(t *testing.T) {
	snap := &Snapshot{
		Function:     "f",
		Blocks:       []BlockSnapshot{{Name: "entry"}},
		ControlEdges: []ControlEdge{{From: "entry", To: "gone"}},
	}
	_, err := snap.BlockGraph()
	assert.ErrorIs(t, err, ErrInvariant)
}
