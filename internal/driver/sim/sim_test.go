package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beacon/internal/pixel"
)

func TestDriverLogsEveryNth(t *testing.T) {
	var out bytes.Buffer
	d := New(zerolog.New(&out), 2)
	frame := []pixel.Color{{R: 1}, {B: 1}}
	for i := 0; i < 4; i++ {
		require.NoError(t, d.Write(frame))
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, float64(4), rec["frame"])
	assert.Equal(t, "$ff0000", rec["first"])
	assert.Equal(t, "$7f007f", rec["avg"])
}

func TestAverage(t *testing.T) {
	assert.Equal(t, pixel.Color{}, Average(nil))
	assert.Equal(t, pixel.Grey(0.5), Average([]pixel.Color{pixel.Grey(0), pixel.Grey(1)}))
}
