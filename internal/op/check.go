package op

import "fmt"

// CheckError reports the first structural problem ConsistencyCheck found.
// Slot is the offending child position, or -1 when the node itself is at
// fault.
type CheckError struct {
	Pos    int
	Node   Ref
	Slot   int
	Reason string
}

func (e *CheckError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("op: order[%d] %v: %s", e.Pos, e.Node, e.Reason)
	}
	return fmt.Sprintf("op: order[%d] %v child %d: %s", e.Pos, e.Node, e.Slot, e.Reason)
}

// ConsistencyCheck verifies that g can be evaluated: every node appears in
// Order exactly once, every child ref points at an existing node of the
// channel its slot expects, and every child sits later in Order than its
// parent. The earliest violation in Order is returned as a *CheckError.
func ConsistencyCheck(g *Graph) error {
	if len(g.Order) == 0 {
		return &CheckError{Pos: -1, Slot: -1, Reason: "empty order"}
	}
	pos := make(map[Ref]int, len(g.Order))
	for i, r := range g.Order {
		if _, dup := pos[r]; !dup && g.has(r) {
			pos[r] = i
		}
	}

	for i, r := range g.Order {
		if !g.has(r) {
			return &CheckError{Pos: i, Node: r, Slot: -1, Reason: "dangling order entry"}
		}
		if pos[r] != i {
			return &CheckError{Pos: i, Node: r, Slot: -1, Reason: fmt.Sprintf("duplicate of order[%d]", pos[r])}
		}
		def := g.Def(r)
		if def == nil {
			return &CheckError{Pos: i, Node: r, Slot: -1, Reason: "missing definition"}
		}
		children := g.Children(r)
		lay := def.Layout()
		if len(children) < len(lay.Fixed) || (!lay.Variadic && len(children) != len(lay.Fixed)) {
			return &CheckError{Pos: i, Node: r, Slot: -1,
				Reason: fmt.Sprintf("%s takes %s children, has %d", def.Name(), arity(lay), len(children))}
		}
		for slot, ch := range children {
			want := lay.Repeat
			if slot < len(lay.Fixed) {
				want = lay.Fixed[slot]
			}
			if !g.has(ch) {
				return &CheckError{Pos: i, Node: r, Slot: slot, Reason: fmt.Sprintf("dangling ref %v", ch)}
			}
			if ch.Chan != want {
				return &CheckError{Pos: i, Node: r, Slot: slot,
					Reason: fmt.Sprintf("%s slot wants %v, got %v", def.Name(), want, ch)}
			}
			cpos, ok := pos[ch]
			if !ok {
				return &CheckError{Pos: i, Node: r, Slot: slot, Reason: fmt.Sprintf("%v missing from order", ch)}
			}
			if cpos <= i {
				return &CheckError{Pos: i, Node: r, Slot: slot,
					Reason: fmt.Sprintf("%v at order[%d] is not later than its parent", ch, cpos)}
			}
		}
	}

	for ix := range g.Scalars {
		if _, ok := pos[S(ix)]; !ok {
			return &CheckError{Pos: len(g.Order), Node: S(ix), Slot: -1, Reason: "node missing from order"}
		}
	}
	for ix := range g.Colors {
		if _, ok := pos[C(ix)]; !ok {
			return &CheckError{Pos: len(g.Order), Node: C(ix), Slot: -1, Reason: "node missing from order"}
		}
	}
	return nil
}

func arity(l Layout) string {
	if l.Variadic {
		return fmt.Sprintf("at least %d", len(l.Fixed))
	}
	return fmt.Sprint(len(l.Fixed))
}
