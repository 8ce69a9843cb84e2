// Package op holds the node graph and the frame evaluator.
//
// A Graph is two arenas of nodes, one per channel, plus an evaluation
// order. Nodes refer to their children by Ref (channel and index), never
// by pointer, so a subexpression can feed several parents. Order[0] is
// the root; walking Order from the end evaluates every child before the
// nodes that read it.
package op

import "fmt"

// Chan selects one of the two node arenas.
type Chan uint8

const (
	Scalar Chan = iota
	Color
)

func (c Chan) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case Color:
		return "color"
	}
	return fmt.Sprintf("chan(%d)", uint8(c))
}

// Ref addresses a node by arena and position.
type Ref struct {
	Chan  Chan
	Index int
}

func S(ix int) Ref { return Ref{Chan: Scalar, Index: ix} }
func C(ix int) Ref { return Ref{Chan: Color, Index: ix} }

func (r Ref) String() string {
	if r.Chan == Scalar {
		return fmt.Sprintf("s%d", r.Index)
	}
	return fmt.Sprintf("c%d", r.Index)
}

type ScalarNode struct {
	Def      ScalarDef
	Children []Ref
}

type ColorNode struct {
	Def      ColorDef
	Children []Ref
}

// Graph is the immutable description an Instance is built from.
type Graph struct {
	Scalars []ScalarNode
	Colors  []ColorNode
	Order   []Ref
}

// AddScalar appends a scalar node and returns its ref.
func (g *Graph) AddScalar(def ScalarDef, children ...Ref) Ref {
	g.Scalars = append(g.Scalars, ScalarNode{Def: def, Children: children})
	return S(len(g.Scalars) - 1)
}

// AddColor appends a colour node and returns its ref.
func (g *Graph) AddColor(def ColorDef, children ...Ref) Ref {
	g.Colors = append(g.Colors, ColorNode{Def: def, Children: children})
	return C(len(g.Colors) - 1)
}

// Root returns Order[0], or false for an empty order.
func (g *Graph) Root() (Ref, bool) {
	if len(g.Order) == 0 {
		return Ref{}, false
	}
	return g.Order[0], true
}

// Children returns the child list of r. It panics on a dangling ref.
func (g *Graph) Children(r Ref) []Ref {
	if r.Chan == Scalar {
		return g.Scalars[r.Index].Children
	}
	return g.Colors[r.Index].Children
}

// Def returns the definition of r. It panics on a dangling ref.
func (g *Graph) Def(r Ref) Def {
	if r.Chan == Scalar {
		return g.Scalars[r.Index].Def
	}
	return g.Colors[r.Index].Def
}

func (g *Graph) has(r Ref) bool {
	switch r.Chan {
	case Scalar:
		return r.Index >= 0 && r.Index < len(g.Scalars)
	case Color:
		return r.Index >= 0 && r.Index < len(g.Colors)
	}
	return false
}

// SetRoot replaces Order with the reverse post-order of a depth-first walk
// from root: root first, every node ahead of its children, each node
// once. Nodes unreachable from root are left out of the order.
func (g *Graph) SetRoot(root Ref) {
	seen := make(map[Ref]bool)
	var post []Ref
	var visit func(r Ref)
	visit = func(r Ref) {
		if seen[r] || !g.has(r) {
			return
		}
		seen[r] = true
		for _, ch := range g.Children(r) {
			visit(ch)
		}
		post = append(post, r)
	}
	visit(root)
	g.Order = g.Order[:0]
	for i := len(post) - 1; i >= 0; i-- {
		g.Order = append(g.Order, post[i])
	}
}
