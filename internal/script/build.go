package script

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/param"
	"github.com/coreman2200/beacon/internal/pixel"
	"github.com/coreman2200/beacon/internal/waves"
)

// Load parses and builds the script at path.
func Load(path string) (*op.Graph, error) {
	items, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Build(items)
	var se *Error
	if errors.As(err, &se) {
		se.File = path
	}
	return g, err
}

// Build turns parsed items into a checked graph. Every item but the last
// must be a binding (name=expr); the last is the root. Bindings are built
// where they are referenced, once per channel, so unused ones never reach
// the graph.
func Build(items []*Node) (*op.Graph, error) {
	if len(items) == 0 {
		return nil, errorf(0, "empty script")
	}
	b := &builder{
		g:        &op.Graph{},
		bindings: make(map[string]*Node),
		memo:     make(map[memoKey]op.Ref),
		active:   make(map[string]bool),
	}
	for _, n := range items[:len(items)-1] {
		if n.Key == "" {
			return nil, errorf(n.Line, "top-level %q is not a binding (name=...)", n.Term)
		}
		if _, dup := b.bindings[n.Key]; dup {
			return nil, errorf(n.Line, "binding %q defined twice", n.Key)
		}
		b.bindings[n.Key] = n
	}

	root := items[len(items)-1]
	ch, ok := b.chanOf(root, map[string]bool{})
	if !ok {
		ch = op.Color
	}
	ref, err := b.node(root, ch)
	if err != nil {
		return nil, err
	}
	b.g.SetRoot(ref)
	if err := op.ConsistencyCheck(b.g); err != nil {
		return nil, fmt.Errorf("script: built graph is inconsistent: %w", err)
	}
	return b.g, nil
}

type memoKey struct {
	name string
	ch   op.Chan
}

type builder struct {
	g        *op.Graph
	bindings map[string]*Node
	memo     map[memoKey]op.Ref
	active   map[string]bool
}

func (b *builder) node(n *Node, ch op.Chan) (op.Ref, error) {
	if ch == op.Scalar {
		return b.scalar(n)
	}
	return b.color(n)
}

func (b *builder) isBinding(n *Node) bool {
	_, ok := b.bindings[n.Term]
	return ok && len(n.Items) == 0
}

func (b *builder) binding(n *Node, ch op.Chan) (op.Ref, error) {
	key := memoKey{n.Term, ch}
	if ref, ok := b.memo[key]; ok {
		return ref, nil
	}
	if b.active[n.Term] {
		return op.Ref{}, errorf(n.Line, "binding %q refers to itself", n.Term)
	}
	b.active[n.Term] = true
	ref, err := b.node(b.bindings[n.Term], ch)
	delete(b.active, n.Term)
	if err != nil {
		return op.Ref{}, err
	}
	b.memo[key] = ref
	return ref, nil
}

func (b *builder) scalar(n *Node) (op.Ref, error) {
	if v, ok := parseNumber(n.Term); ok && len(n.Items) == 0 {
		return b.g.AddScalar(op.Constant{Value: v}), nil
	}
	if _, ok := parseColor(n.Term); ok {
		return op.Ref{}, errorf(n.Line, "%q makes a color where a scalar is needed", n.Term)
	}
	if b.isBinding(n) {
		return b.binding(n, op.Scalar)
	}
	lay, ok := lookupScalar(n.Term)
	if !ok {
		if _, isColor := lookupColor(n.Term); isColor {
			return op.Ref{}, errorf(n.Line, "%q makes a color where a scalar is needed", n.Term)
		}
		return op.Ref{}, errorf(n.Line, "unknown scalar op %q", n.Term)
	}
	a, err := b.bind(n, lay.slots)
	if err != nil {
		return op.Ref{}, err
	}
	def, refs := lay.build(a)
	if a.err != nil {
		return op.Ref{}, a.err
	}
	return b.g.AddScalar(def, refs...), nil
}

func (b *builder) color(n *Node) (op.Ref, error) {
	if len(n.Items) == 0 {
		if c, ok := parseColor(n.Term); ok {
			return b.g.AddColor(op.ColorConstant{Value: c}), nil
		}
		if v, ok := parseNumber(n.Term); ok {
			return b.g.AddColor(op.ColorConstant{Value: pixel.Grey(v)}), nil
		}
	}
	if b.isBinding(n) {
		return b.binding(n, op.Color)
	}
	lay, ok := lookupColor(n.Term)
	if !ok {
		if _, isScalar := lookupScalar(n.Term); isScalar {
			return op.Ref{}, errorf(n.Line, "%q makes a scalar where a color is needed (wrap it in grey)", n.Term)
		}
		return op.Ref{}, errorf(n.Line, "unknown color op %q", n.Term)
	}
	a, err := b.bind(n, lay.slots)
	if err != nil {
		return op.Ref{}, err
	}
	def, refs := lay.build(a)
	if a.err != nil {
		return op.Ref{}, a.err
	}
	return b.g.AddColor(def, refs...), nil
}

func (b *builder) param(n *Node) (param.Param, error) {
	if v, ok := parseNumber(n.Term); ok && len(n.Items) == 0 {
		return param.Const(v), nil
	}
	lay, ok := lookupParam(n.Term)
	if !ok {
		return param.Param{}, errorf(n.Line, "unknown param %q", n.Term)
	}
	a, err := b.bind(n, lay.slots)
	if err != nil {
		return param.Param{}, err
	}
	p := lay.build(a)
	return p, a.err
}

// chanOf guesses which channel n produces. Ops that exist in both
// channels take the channel of their first positional input.
func (b *builder) chanOf(n *Node, seen map[string]bool) (op.Chan, bool) {
	if len(n.Items) == 0 {
		if _, ok := parseColor(n.Term); ok {
			return op.Color, true
		}
		if _, ok := parseNumber(n.Term); ok {
			return op.Scalar, true
		}
		if b.isBinding(n) {
			if seen[n.Term] {
				return 0, false
			}
			seen[n.Term] = true
			return b.chanOf(b.bindings[n.Term], seen)
		}
	}
	_, s := lookupScalar(n.Term)
	_, c := lookupColor(n.Term)
	switch {
	case s && !c:
		return op.Scalar, true
	case c && !s:
		return op.Color, true
	case s && c:
		for _, it := range n.Items {
			if it.Key == "" {
				return b.chanOf(it, seen)
			}
		}
	}
	return 0, false
}

// bind distributes n's items over slots: keyed items by name, the rest
// in order.
func (b *builder) bind(n *Node, slots []slot) (*args, error) {
	a := &args{b: b, node: n, vals: make(map[string][]*Node), kinds: make(map[string]slotKind)}
	byName := make(map[string]slot, len(slots))
	for _, s := range slots {
		byName[s.name] = s
		a.kinds[s.name] = s.kind
	}

	var positional []*Node
	for _, it := range n.Items {
		if it.Key == "" {
			positional = append(positional, it)
			continue
		}
		s, ok := byName[strings.ToLower(it.Key)]
		if !ok {
			return nil, errorf(it.Line, "%s has no input %q", n.Term, it.Key)
		}
		if !s.repeating && len(a.vals[s.name]) > 0 {
			return nil, errorf(it.Line, "%s: input %q given twice", n.Term, it.Key)
		}
		a.vals[s.name] = append(a.vals[s.name], it)
	}

	si := 0
	for _, it := range positional {
		for si < len(slots) && !slots[si].repeating && len(a.vals[slots[si].name]) > 0 {
			si++
		}
		if si == len(slots) {
			return nil, errorf(it.Line, "%s: too many inputs", n.Term)
		}
		a.vals[slots[si].name] = append(a.vals[slots[si].name], it)
		if !slots[si].repeating {
			si++
		}
	}

	for _, s := range slots {
		if !s.optional && len(a.vals[s.name]) == 0 {
			return nil, errorf(n.Line, "%s: missing input %q", n.Term, s.name)
		}
	}
	return a, nil
}

// args holds the bound inputs of one op while its layout builds it. The
// first failure sticks in err and later lookups return zero values.
type args struct {
	b     *builder
	node  *Node
	vals  map[string][]*Node
	kinds map[string]slotKind
	err   error
}

func (a *args) fail(n *Node, format string, v ...any) {
	if a.err == nil {
		a.err = errorf(n.Line, "%s: %s", a.node.Term, fmt.Sprintf(format, v...))
	}
}

func (a *args) first(name string) *Node {
	if vs := a.vals[name]; len(vs) > 0 {
		return vs[0]
	}
	return nil
}

func (a *args) items(name string) []*Node { return a.vals[name] }

func (a *args) number(name string, dflt float32) float32 {
	n := a.first(name)
	if n == nil {
		return dflt
	}
	v, ok := parseNumber(n.Term)
	if !ok || len(n.Items) > 0 {
		a.fail(n, "%s wants a number, got %q", name, n.Term)
	}
	return v
}

func (a *args) param(name string, dflt float32) param.Param {
	n := a.first(name)
	if n == nil {
		return param.Const(dflt)
	}
	p, err := a.b.param(n)
	if err != nil && a.err == nil {
		a.err = err
	}
	return p
}

func (a *args) shape(name string, dflt waves.Shape) waves.Shape {
	n := a.first(name)
	if n == nil {
		return dflt
	}
	s, ok := waves.ParseShape(n.Term)
	if !ok {
		a.fail(n, "unknown wave shape %q", n.Term)
	}
	return s
}

func (a *args) channel(name string) op.ChannelKind {
	n := a.first(name)
	if n == nil {
		return op.Red
	}
	k, ok := op.ParseChannel(n.Term)
	if !ok {
		a.fail(n, "unknown channel %q", n.Term)
	}
	return k
}

func (a *args) color(name string) pixel.Color {
	n := a.first(name)
	if n == nil {
		return pixel.Color{}
	}
	return a.colorOf(n)
}

func (a *args) colorOf(n *Node) pixel.Color {
	c, ok := parseColor(n.Term)
	if !ok {
		a.fail(n, "%q is not a color (#rrggbb or $rrggbb)", n.Term)
	}
	return c
}

func (a *args) stopOf(n *Node) op.Stop {
	sa, err := a.b.bind(n, stopLayout)
	if err != nil {
		if a.err == nil {
			a.err = err
		}
		return op.Stop{}
	}
	st := op.Stop{Pos: sa.number("pos", 0), Color: sa.color("color")}
	if sa.err != nil && a.err == nil {
		a.err = sa.err
	}
	return st
}

// refs builds the op inputs bound to names, in order.
func (a *args) refs(names ...string) []op.Ref {
	var out []op.Ref
	for _, name := range names {
		for _, n := range a.vals[name] {
			var ref op.Ref
			var err error
			if a.kinds[name] == slotColor {
				ref, err = a.b.color(n)
			} else {
				ref, err = a.b.scalar(n)
			}
			if err != nil {
				if a.err == nil {
					a.err = err
				}
				return nil
			}
			out = append(out, ref)
		}
	}
	return out
}

func parseNumber(s string) (float32, bool) {
	if s == "" {
		return 0, false
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9', c == '-', c == '+', c == '.':
	default:
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return float32(v), true
}

func parseColor(s string) (pixel.Color, bool) {
	if len(s) != 7 || (s[0] != '#' && s[0] != '$') {
		return pixel.Color{}, false
	}
	c, err := colorful.Hex("#" + s[1:])
	if err != nil {
		return pixel.Color{}, false
	}
	return pixel.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}, true
}
