package render

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/coreman2200/beacon/internal/pixel"
)

// Settings tune post-processing. Zero fields take the defaults noted.
type Settings struct {
	ExposureEV  float32 // 0
	OutputGamma float32 // 2.2; 1 disables
	WhiteCap    float32 // per-LED R+G+B cap, 3 = no cap
	LEDChanMA   float32 // mA per channel at full scale, WS2812 ~20
	BudgetMA    float32 // global current budget; 0 disables
	LimiterKnee float32 // fraction of budget where soft limiting starts, 0.9
}

func (s Settings) gamma() float32 {
	if s.OutputGamma > 0 {
		return s.OutputGamma
	}
	return 2.2
}

func (s Settings) whiteCap() float32 {
	if s.WhiteCap > 0 {
		return s.WhiteCap
	}
	return 3
}

func (s Settings) chanMA() float32 {
	if s.LEDChanMA > 0 {
		return s.LEDChanMA
	}
	return 20
}

func (s Settings) knee() float32 {
	if s.LimiterKnee > 0 && s.LimiterKnee < 1 {
		return s.LimiterKnee
	}
	return 0.9
}

// PostFunc is one post-processing pass over a finished frame.
type PostFunc func([]pixel.Color, Settings)

// ApplyPreview does exposure, ACES tone map and gamma. No limiter: screens
// don't draw current.
func ApplyPreview(buf []pixel.Color, s Settings) {
	FilmicToneMap(buf, s)
}

// ApplyLED does exposure as a linear scale, then the limiter and a clamp.
// No curve: LED drivers apply their own gamma.
func ApplyLED(buf []pixel.Color, s Settings) {
	if s.ExposureEV != 0 {
		scale := math32.Exp2(s.ExposureEV)
		for i := range buf {
			buf[i] = buf[i].Scale(scale)
		}
	}
	DefaultLimiter(buf, s)
	clampAll(buf)
}

// FilmicToneMap applies exposure in EV, the ACES approximation and output
// gamma.
func FilmicToneMap(buf []pixel.Color, s Settings) {
	exposure := math32.Exp2(s.ExposureEV)
	ig := 1 / s.gamma()
	for i := range buf {
		r := acesApprox(buf[i].R * exposure)
		g := acesApprox(buf[i].G * exposure)
		b := acesApprox(buf[i].B * exposure)
		if ig != 1 {
			r = math32.Pow(r, ig)
			g = math32.Pow(g, ig)
			b = math32.Pow(b, ig)
		}
		buf[i] = pixel.Color{R: clamp01(r), G: clamp01(g), B: clamp01(b)}
	}
}

// DefaultLimiter applies two stages:
//  1. per-LED white cap: scales (R,G,B) so R+G+B <= WhiteCap
//  2. global budget: estimates current and scales the whole frame to stay
//     under BudgetMA, easing in from LimiterKnee*BudgetMA
func DefaultLimiter(buf []pixel.Color, s Settings) {
	wc := s.whiteCap()
	for i := range buf {
		sum := buf[i].R + buf[i].G + buf[i].B
		if sum > wc && sum > 0 {
			buf[i] = buf[i].Scale(wc / sum)
		}
	}

	if s.BudgetMA <= 0 {
		return
	}
	total := EstimateMA(buf, s.chanMA())
	if total <= 0 {
		return
	}
	budget := float64(s.BudgetMA)
	kneeMA := float64(s.knee()) * budget
	if total <= kneeMA {
		return
	}
	// compress the excess over the knee so the result approaches the
	// budget without reaching it
	span := budget - kneeMA
	target := kneeMA + span*(1-math.Exp(-(total-kneeMA)/span))
	applyGlobalScale(buf, float32(target/total))
}

// EstimateMA is the current buf would draw at chanMA per full-scale channel.
func EstimateMA(buf []pixel.Color, chanMA float32) float64 {
	var total float64
	for _, c := range buf {
		total += float64((c.R + c.G + c.B) * chanMA)
	}
	return total
}

func applyGlobalScale(buf []pixel.Color, s float32) {
	if s >= 1 {
		return
	}
	for i := range buf {
		buf[i] = buf[i].Scale(s)
	}
}

func clampAll(buf []pixel.Color) {
	for i, c := range buf {
		buf[i] = pixel.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
	}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Approximate ACES filmic curve (Narkowicz 2015).
func acesApprox(x float32) float32 {
	const (
		a = 2.51
		b = 0.03
		c = 2.43
		d = 0.59
		e = 0.14
	)
	return clamp01((x * (a*x + b)) / (x*(c*x+d) + e))
}
