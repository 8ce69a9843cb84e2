package script

import (
	"strings"

	"github.com/coreman2200/beacon/internal/noise"
	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/param"
	"github.com/coreman2200/beacon/internal/pixel"
	"github.com/coreman2200/beacon/internal/pulser"
	"github.com/coreman2200/beacon/internal/waves"
)

// The tables are filled in init because their build funcs recurse back
// into the builder, which consults the tables.
var (
	paramLayouts  map[string]paramLayout
	scalarLayouts map[string]scalarLayout
	colorLayouts  map[string]colorLayout
)

func init() {
	paramLayouts = paramTable()
	scalarLayouts = scalarTable()
	colorLayouts = colorTable()
}

type slotKind int

const (
	slotScalar slotKind = iota
	slotColor
	slotNumber
	slotColorLit
	slotParam
	slotStop
	slotShape
	slotChannel
)

// slot is one named input of an op or param. Positional items fill slots
// in order; a repeating slot takes every remaining positional item.
type slot struct {
	name      string
	kind      slotKind
	optional  bool
	repeating bool
}

func req(name string, kind slotKind) slot { return slot{name: name, kind: kind} }
func opt(name string, kind slotKind) slot { return slot{name: name, kind: kind, optional: true} }
func rep(name string, kind slotKind) slot {
	return slot{name: name, kind: kind, optional: true, repeating: true}
}

type scalarLayout struct {
	slots []slot
	build func(a *args) (op.ScalarDef, []op.Ref)
}

type colorLayout struct {
	slots []slot
	build func(a *args) (op.ColorDef, []op.Ref)
}

type paramLayout struct {
	slots []slot
	build func(a *args) param.Param
}

func paramTable() map[string]paramLayout {
	return map[string]paramLayout{
		"constant": {
			[]slot{req("_1", slotNumber)},
			func(a *args) param.Param { return param.Const(a.number("_1", 0)) },
		},
		"randflat": {
			[]slot{req("min", slotParam), req("max", slotParam)},
			func(a *args) param.Param {
				return param.NewRandFlat(a.param("min", 0), a.param("max", 1))
			},
		},
		"randnorm": {
			[]slot{opt("mean", slotParam), opt("stdev", slotParam)},
			func(a *args) param.Param {
				return param.NewRandNorm(a.param("mean", 0.5), a.param("stdev", 0.25))
			},
		},
		"changing": {
			[]slot{req("start", slotParam), req("velocity", slotParam)},
			func(a *args) param.Param {
				return param.NewChanging(a.param("start", 0), a.param("velocity", 0))
			},
		},
		"wave": {
			[]slot{req("shape", slotShape), opt("min", slotParam), opt("max", slotParam), opt("duration", slotParam)},
			func(a *args) param.Param {
				return param.NewWave(a.shape("shape", waves.Flat),
					a.param("min", 0), a.param("max", 1), a.param("duration", 1))
			},
		},
		"wavecycle": {
			[]slot{req("shape", slotShape), opt("min", slotParam), opt("max", slotParam),
				opt("period", slotParam), opt("offset", slotParam)},
			func(a *args) param.Param {
				return param.NewWaveCycle(a.shape("shape", waves.Flat),
					a.param("min", 0), a.param("max", 1), a.param("period", 1), a.param("offset", 0))
			},
		},
		"quote": {
			[]slot{req("_1", slotParam)},
			func(a *args) param.Param { return param.Quote(a.param("_1", 0)) },
		},
	}
}

func one(kind slotKind) []slot { return []slot{req("_1", kind)} }

func many(kind slotKind) []slot { return []slot{rep("_", kind)} }

func scalarTable() map[string]scalarLayout {
	return map[string]scalarLayout{
		"constant": {
			one(slotNumber),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.Constant{Value: a.number("_1", 0)}, nil },
		},
		"param": {
			one(slotParam),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.ParamNode{P: a.param("_1", 0)}, nil },
		},
		"wave": {
			[]slot{req("shape", slotShape), opt("min", slotParam), opt("max", slotParam),
				opt("pos", slotParam), opt("width", slotParam)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				return op.Wave{
					Shape: a.shape("shape", waves.Flat),
					Min:   a.param("min", 0),
					Max:   a.param("max", 1),
					Pos:   a.param("pos", 0.5),
					Width: a.param("width", 1),
				}, nil
			},
		},
		"wavecycle": {
			[]slot{req("shape", slotShape), opt("min", slotParam), opt("max", slotParam),
				opt("pos", slotParam), opt("period", slotParam)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				return op.WaveCycle{
					Shape:  a.shape("shape", waves.Flat),
					Min:    a.param("min", 0),
					Max:    a.param("max", 1),
					Pos:    a.param("pos", 0.5),
					Period: a.param("period", 1),
				}, nil
			},
		},
		"pulser": {
			[]slot{opt("interval", slotParam), opt("countlimit", slotNumber), opt("duration", slotParam),
				opt("pos", slotParam), opt("width", slotParam), opt("spaceshape", slotShape), opt("timeshape", slotShape)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				def := pulser.NewDef()
				def.Interval = a.param("interval", 1)
				def.CountLimit = int(a.number("countlimit", 0))
				def.Duration = a.param("duration", 1)
				def.Pos = a.param("pos", 0.5)
				def.Width = a.param("width", 0.25)
				def.SpaceShape = a.shape("spaceshape", waves.Triangle)
				def.TimeShape = a.shape("timeshape", waves.Flat)
				return op.Pulser{Def: def}, nil
			},
		},
		"invert": {
			one(slotScalar),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.Invert{}, a.refs("_1") },
		},
		"brightness": {
			one(slotColor),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.Brightness{}, a.refs("_1") },
		},
		"channel": {
			[]slot{req("which", slotChannel), req("_1", slotColor)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				return op.Channel{Which: a.channel("which")}, a.refs("_1")
			},
		},
		"mul": {
			many(slotScalar),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.Mul{}, a.refs("_") },
		},
		"sum": {
			many(slotScalar),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.Sum{}, a.refs("_") },
		},
		"mean": {
			many(slotScalar),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.Mean{}, a.refs("_") },
		},
		"min": {
			many(slotScalar),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.Min{}, a.refs("_") },
		},
		"max": {
			many(slotScalar),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.Max{}, a.refs("_") },
		},
		"clamp": {
			[]slot{req("_1", slotScalar), opt("min", slotParam), opt("max", slotParam)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				return op.Clamp{Min: a.param("min", 0), Max: a.param("max", 1)}, a.refs("_1")
			},
		},
		"shift": {
			[]slot{req("_1", slotScalar), opt("offset", slotParam)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				return op.Shift{Offset: a.param("offset", 0)}, a.refs("_1")
			},
		},
		"decay": {
			[]slot{req("_1", slotScalar), opt("halflife", slotParam)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				return op.Decay{HalfLife: a.param("halflife", 1)}, a.refs("_1")
			},
		},
		"shiftdecay": {
			[]slot{req("_1", slotScalar), opt("halflife", slotParam), opt("shift", slotParam)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				return op.ShiftDecay{HalfLife: a.param("halflife", 1), Shift: a.param("shift", 0)}, a.refs("_1")
			},
		},
		"timedelta": {
			one(slotScalar),
			func(a *args) (op.ScalarDef, []op.Ref) { return op.TimeDelta{}, a.refs("_1") },
		},
		"noise": {
			[]slot{opt("grain", slotNumber), opt("octaves", slotNumber), opt("offset", slotParam), opt("max", slotParam)},
			func(a *args) (op.ScalarDef, []op.Ref) {
				grain, octaves := a.number("grain", 32), a.number("octaves", 1)
				switch {
				case octaves < 1 || octaves > noise.MaxOctaves:
					a.fail(a.node, "octaves must be 1..%d, got %v", noise.MaxOctaves, octaves)
				case grain < 1 || grain > float32(int(noise.MaxTable)>>(int(octaves)-1)):
					a.fail(a.node, "grain must be 1..%d with %v octaves, got %v", noise.MaxTable>>(int(octaves)-1), octaves, grain)
				}
				return op.Noise{
					Grain:   int(grain),
					Octaves: int(octaves),
					Offset:  a.param("offset", 0),
					Max:     a.param("max", 1),
				}, nil
			},
		},
	}
}

func colorTable() map[string]colorLayout {
	return map[string]colorLayout{
		"constant": {
			one(slotColorLit),
			func(a *args) (op.ColorDef, []op.Ref) { return op.ColorConstant{Value: a.color("_1")}, nil },
		},
		"invert": {
			one(slotColor),
			func(a *args) (op.ColorDef, []op.Ref) { return op.ColorInvert{}, a.refs("_1") },
		},
		"grey": {
			one(slotScalar),
			func(a *args) (op.ColorDef, []op.Ref) { return op.Grey{}, a.refs("_1") },
		},
		"rgb": {
			[]slot{req("r", slotScalar), req("g", slotScalar), req("b", slotScalar)},
			func(a *args) (op.ColorDef, []op.Ref) { return op.RGB{}, a.refs("r", "g", "b") },
		},
		"hsv": {
			[]slot{req("h", slotScalar), req("s", slotScalar), req("v", slotScalar)},
			func(a *args) (op.ColorDef, []op.Ref) { return op.HSV{}, a.refs("h", "s", "v") },
		},
		"gradient": {
			[]slot{req("_1", slotScalar), rep("stop", slotColorLit)},
			func(a *args) (op.ColorDef, []op.Ref) {
				var stops []pixel.Color
				for _, n := range a.items("stop") {
					stops = append(stops, a.colorOf(n))
				}
				return op.Gradient{Stops: stops}, a.refs("_1")
			},
		},
		"pgradient": {
			[]slot{req("_1", slotScalar), rep("stop", slotStop)},
			func(a *args) (op.ColorDef, []op.Ref) {
				var stops []op.Stop
				for _, n := range a.items("stop") {
					stops = append(stops, a.stopOf(n))
				}
				return op.PGradient{Stops: stops}, a.refs("_1")
			},
		},
		"muls": {
			[]slot{req("_1", slotColor), req("_2", slotScalar)},
			func(a *args) (op.ColorDef, []op.Ref) { return op.MulS{}, a.refs("_1", "_2") },
		},
		"mul": {
			many(slotColor),
			func(a *args) (op.ColorDef, []op.Ref) { return op.ColorMul{}, a.refs("_") },
		},
		"sum": {
			many(slotColor),
			func(a *args) (op.ColorDef, []op.Ref) { return op.ColorSum{}, a.refs("_") },
		},
		"mean": {
			many(slotColor),
			func(a *args) (op.ColorDef, []op.Ref) { return op.ColorMean{}, a.refs("_") },
		},
		"min": {
			many(slotColor),
			func(a *args) (op.ColorDef, []op.Ref) { return op.ColorMin{}, a.refs("_") },
		},
		"max": {
			many(slotColor),
			func(a *args) (op.ColorDef, []op.Ref) { return op.ColorMax{}, a.refs("_") },
		},
		"lerp": {
			[]slot{req("mask", slotScalar), req("_1", slotColor), req("_2", slotColor)},
			func(a *args) (op.ColorDef, []op.Ref) { return op.Lerp{}, a.refs("_1", "_2", "mask") },
		},
		"mask": {
			[]slot{req("mask", slotScalar), req("_1", slotColor), req("_2", slotColor), opt("threshold", slotParam)},
			func(a *args) (op.ColorDef, []op.Ref) {
				return op.Mask{Threshold: a.param("threshold", 0.5)}, a.refs("_1", "_2", "mask")
			},
		},
		"shift": {
			[]slot{req("_1", slotColor), opt("offset", slotParam)},
			func(a *args) (op.ColorDef, []op.Ref) {
				return op.ColorShift{Offset: a.param("offset", 0)}, a.refs("_1")
			},
		},
	}
}

// stopLayout is the shape of one pgradient stop: a position and a colour.
var stopLayout = []slot{req("pos", slotNumber), req("color", slotColorLit)}

func lookupScalar(name string) (scalarLayout, bool) {
	l, ok := scalarLayouts[strings.ToLower(name)]
	return l, ok
}

func lookupColor(name string) (colorLayout, bool) {
	l, ok := colorLayouts[strings.ToLower(name)]
	return l, ok
}

func lookupParam(name string) (paramLayout, bool) {
	l, ok := paramLayouts[strings.ToLower(name)]
	return l, ok
}
