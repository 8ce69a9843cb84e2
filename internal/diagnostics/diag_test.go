package diagnostics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/script"
)

func TestReload(t *testing.T) {
	ok := Reload("show.scr", nil)
	assert.Equal(t, Info, ok.Severity)
	assert.Equal(t, "show.scr", ok.Evidence["path"])

	items, err := script.Parse(strings.NewReader("grey:\n    wobble\n"))
	require.NoError(t, err)
	_, err = script.Build(items)
	require.Error(t, err)

	bad := Reload("show.scr", fmt.Errorf("reload: %w", err))
	assert.Equal(t, Err, bad.Severity)
	assert.Equal(t, "SCRIPT.RELOAD_FAILED", bad.Code)
	assert.Equal(t, 2, bad.Evidence["line"])
	assert.Contains(t, bad.Detail, "wobble")
}

func TestFromCheckError(t *testing.T) {
	d := FromError("GRAPH", op.ConsistencyCheck(&op.Graph{Order: []op.Ref{op.S(3)}}))
	assert.Equal(t, 0, d.Evidence["order_pos"])
	assert.Equal(t, "s3", d.Evidence["node"])
}
