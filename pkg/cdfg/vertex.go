package cdfg

import (
	"fmt"
	"strconv"

	"github.com/l3aro/go-cdfg/pkg/ir"
)

// Kind identifies the concrete type of a Vertex.
type Kind int

const (
	KindComputed Kind = iota
	KindIntConst
	KindFloatConst
	KindDoubleConst
	KindNamedExternal
	KindUnresolved
)

var kindNames = [...]string{
	KindComputed:      "computed",
	KindIntConst:      "int",
	KindFloatConst:    "float",
	KindDoubleConst:   "double",
	KindNamedExternal: "external",
	KindUnresolved:    "unresolved",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Vertex is a node of a block's data-flow graph. The set of implementations
// is closed: *Computed, *IntConst, *FloatConst, *DoubleConst, *NamedExternal
// and *Unresolved. Vertices are compared by identity.
type Vertex interface {
	Kind() Kind
	Label() string
	vertex()
}

// Computed is the value produced by an instruction.
type Computed struct {
	Inst *ir.Instruction
}

// IntConst is a sign-extended integer literal.
type IntConst struct {
	Value int64
}

// FloatConst is a single-precision literal.
type FloatConst struct {
	Value float32
}

// DoubleConst is a double-precision literal.
type DoubleConst struct {
	Value float64
}

// Origin tells where a NamedExternal comes from.
type Origin int

const (
	OriginArgument Origin = iota
	OriginGlobal
)

func (o Origin) String() string {
	if o == OriginGlobal {
		return "global"
	}
	return "argument"
}

// NamedExternal is a function argument or global referenced by name.
// Align is the access alignment when the leaf feeds a load, zero otherwise.
type NamedExternal struct {
	Name   string
	Origin Origin
	Align  uint64
}

// Unresolved stands in for an operand whose kind could not be modeled.
// Operand is diagnostic text.
type Unresolved struct {
	Operand string
	Align   uint64
}

func (*Computed) Kind() Kind      { return KindComputed }
func (*IntConst) Kind() Kind      { return KindIntConst }
func (*FloatConst) Kind() Kind    { return KindFloatConst }
func (*DoubleConst) Kind() Kind   { return KindDoubleConst }
func (*NamedExternal) Kind() Kind { return KindNamedExternal }
func (*Unresolved) Kind() Kind    { return KindUnresolved }

func (*Computed) vertex()      {}
func (*IntConst) vertex()      {}
func (*FloatConst) vertex()    {}
func (*DoubleConst) vertex()   {}
func (*NamedExternal) vertex() {}
func (*Unresolved) vertex()    {}

func (v *Computed) Label() string { return v.Inst.String() }

func (v *IntConst) Label() string { return strconv.FormatInt(v.Value, 10) }

func (v *FloatConst) Label() string {
	return strconv.FormatFloat(float64(v.Value), 'g', -1, 32) + "f"
}

func (v *DoubleConst) Label() string { return strconv.FormatFloat(v.Value, 'g', -1, 64) }

func (v *NamedExternal) Label() string {
	sigil := "%"
	if v.Origin == OriginGlobal {
		sigil = "@"
	}
	if v.Align > 0 {
		return fmt.Sprintf("%s%s align %d", sigil, v.Name, v.Align)
	}
	return sigil + v.Name
}

func (v *Unresolved) Label() string {
	if v.Align > 0 {
		return fmt.Sprintf("? %s align %d", v.Operand, v.Align)
	}
	return "? " + v.Operand
}

// EdgeProperty records the operand an edge was created for.
type EdgeProperty struct {
	Operand ir.Value
}
