package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/beacon/internal/pixel"
)

func whites(n int) []pixel.Color {
	buf := make([]pixel.Color, n)
	for i := range buf {
		buf[i] = pixel.Grey(1)
	}
	return buf
}

func TestDefaultLimiterBudgetClamp(t *testing.T) {
	buf := whites(10)
	// pre-limit current would be 10 * 60 = 600 mA
	DefaultLimiter(buf, Settings{LEDChanMA: 20, BudgetMA: 300, WhiteCap: 3, LimiterKnee: 0.9})
	cur := EstimateMA(buf, 20)
	if cur > 300.1 {
		t.Fatalf("expected <= 300mA after limit, got %.2f mA", cur)
	}
}

func TestDefaultLimiterKnee(t *testing.T) {
	// 10 LEDs at 1/3 grey draw 200 mA; budget 210 puts the ratio past the knee
	buf := make([]pixel.Color, 10)
	for i := range buf {
		buf[i] = pixel.Grey(1.0 / 3)
	}
	DefaultLimiter(buf, Settings{BudgetMA: 210})
	cur := EstimateMA(buf, 20)
	assert.Less(t, cur, 200.0)
	assert.Greater(t, cur, 190.0)

	under := make([]pixel.Color, 10)
	DefaultLimiter(under, Settings{BudgetMA: 1000})
	assert.Equal(t, make([]pixel.Color, 10), under)
}

func TestWhiteCap(t *testing.T) {
	buf := whites(1) // sum=3
	DefaultLimiter(buf, Settings{WhiteCap: 1.5})
	sum := buf[0].R + buf[0].G + buf[0].B
	if sum > 1.5001 {
		t.Fatalf("expected sum <= 1.5, got %f", sum)
	}
}

func TestApplyLEDExposureAndClamp(t *testing.T) {
	buf := []pixel.Color{{R: 0.25, G: 0.8, B: -0.1}}
	ApplyLED(buf, Settings{ExposureEV: 1})
	assert.InDelta(t, 0.5, buf[0].R, 1e-6)
	assert.Equal(t, float32(1), buf[0].G)
	assert.Equal(t, float32(0), buf[0].B)
}

func TestFilmicToneMapRange(t *testing.T) {
	buf := []pixel.Color{{}, pixel.Grey(0.18), pixel.Grey(50)}
	FilmicToneMap(buf, Settings{})
	assert.Equal(t, pixel.Color{}, buf[0])
	assert.Greater(t, buf[1].R, float32(0.18))
	assert.LessOrEqual(t, buf[2].R, float32(1))
	assert.Greater(t, buf[2].R, float32(0.95))
}
