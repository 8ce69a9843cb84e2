package op

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beacon/internal/pixel"
)

// smallGraph is grey(sum(c0, c0)): one shared scalar under a colour root.
func smallGraph() *Graph {
	g := &Graph{}
	k := g.AddScalar(Constant{Value: 0.25})
	sum := g.AddScalar(Sum{}, k, k)
	root := g.AddColor(Grey{}, sum)
	g.SetRoot(root)
	return g
}

func checkErr(t *testing.T, g *Graph) *CheckError {
	t.Helper()
	err := ConsistencyCheck(g)
	require.Error(t, err)
	var ce *CheckError
	require.True(t, errors.As(err, &ce), "want *CheckError, got %T", err)
	return ce
}

func TestSetRootOrdersParentsFirst(t *testing.T) {
	g := smallGraph()
	assert.Equal(t, []Ref{C(0), S(1), S(0)}, g.Order)
	require.NoError(t, ConsistencyCheck(g))
}

func TestSetRootDropsUnreachable(t *testing.T) {
	g := &Graph{}
	g.AddScalar(Constant{Value: 1})
	k := g.AddScalar(Constant{Value: 2})
	g.SetRoot(k)
	assert.Equal(t, []Ref{S(1)}, g.Order)

	ce := checkErr(t, g)
	assert.Equal(t, S(0), ce.Node)
	assert.Contains(t, ce.Reason, "missing from order")
}

func TestCheckEmptyOrder(t *testing.T) {
	ce := checkErr(t, &Graph{})
	assert.Equal(t, "empty order", ce.Reason)
}

func TestCheckChildNotLater(t *testing.T) {
	g := smallGraph()
	g.Order = []Ref{C(0), S(0), S(1)}
	ce := checkErr(t, g)
	assert.Equal(t, 2, ce.Pos)
	assert.Equal(t, S(1), ce.Node)
	assert.Equal(t, 0, ce.Slot)
	assert.Contains(t, ce.Reason, "not later")
}

func TestCheckDanglingChild(t *testing.T) {
	g := smallGraph()
	g.Colors[0].Children = []Ref{S(7)}
	ce := checkErr(t, g)
	assert.Equal(t, 0, ce.Pos)
	assert.Equal(t, 0, ce.Slot)
	assert.Contains(t, ce.Reason, "dangling")
}

func TestCheckWrongChannel(t *testing.T) {
	g := &Graph{}
	c := g.AddColor(ColorConstant{Value: pixel.Grey(1)})
	root := g.AddColor(Grey{}, c)
	g.SetRoot(root)
	ce := checkErr(t, g)
	assert.Equal(t, 0, ce.Pos)
	assert.Contains(t, ce.Reason, "wants scalar")
}

func TestCheckArity(t *testing.T) {
	g := &Graph{}
	a := g.AddScalar(Constant{Value: 1})
	root := g.AddColor(RGB{}, a, a)
	g.SetRoot(root)
	ce := checkErr(t, g)
	assert.Equal(t, -1, ce.Slot)
	assert.Contains(t, ce.Reason, "rgb takes 3 children, has 2")
}

func TestCheckDuplicateEntry(t *testing.T) {
	g := smallGraph()
	g.Order = append(g.Order, S(1))
	ce := checkErr(t, g)
	assert.Equal(t, 3, ce.Pos)
	assert.Contains(t, ce.Reason, "duplicate of order[1]")
}

func TestCheckReportsEarliestViolation(t *testing.T) {
	g := smallGraph()
	g.Order = append(g.Order, S(9))
	g.Colors[0].Children = []Ref{C(0)}
	ce := checkErr(t, g)
	assert.Equal(t, 0, ce.Pos)
}

func TestNewInstanceRejectsBadGraph(t *testing.T) {
	g := smallGraph()
	g.Order = g.Order[:1]
	_, err := NewInstance(g, 8, nil)
	var ce *CheckError
	assert.ErrorAs(t, err, &ce)

	_, err = NewInstance(smallGraph(), 0, nil)
	assert.ErrorIs(t, err, ErrSize)
}
