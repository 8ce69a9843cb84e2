package op

import (
	"fmt"
	"strings"

	"github.com/coreman2200/beacon/internal/param"
	"github.com/coreman2200/beacon/internal/pixel"
	"github.com/coreman2200/beacon/internal/pulser"
	"github.com/coreman2200/beacon/internal/waves"
)

// Layout describes which children a node kind accepts. Fixed lists the
// channel of each leading slot. When Variadic is set any number of
// further children of channel Repeat may follow.
type Layout struct {
	Fixed    []Chan
	Variadic bool
	Repeat   Chan
}

var (
	noInputs     = Layout{}
	oneScalar    = Layout{Fixed: []Chan{Scalar}}
	oneColor     = Layout{Fixed: []Chan{Color}}
	threeScalars = Layout{Fixed: []Chan{Scalar, Scalar, Scalar}}
	manyScalars  = Layout{Variadic: true, Repeat: Scalar}
	manyColors   = Layout{Variadic: true, Repeat: Color}
	twoAndMask   = Layout{Fixed: []Chan{Color, Color, Scalar}}
)

// Def is a node definition: its kind and its fixed knobs.
type Def interface {
	Name() string
	Layout() Layout
}

// ScalarDef is implemented by definitions of scalar nodes.
type ScalarDef interface {
	Def
	scalarDef()
}

// ColorDef is implemented by definitions of colour nodes.
type ColorDef interface {
	Def
	colorDef()
}

type (
	Constant struct{ Value float32 }
	// ParamNode broadcasts a param evaluated at script age.
	ParamNode struct{ P param.Param }
	// Wave samples Shape across the strip, centred on Pos and spanning
	// Width, scaled into [Min,Max].
	Wave struct {
		Shape              waves.Shape
		Min, Max, Pos, Width param.Param
	}
	// WaveCycle repeats Shape along the strip every Period, with phase 0
	// at Pos.
	WaveCycle struct {
		Shape                 waves.Shape
		Min, Max, Pos, Period param.Param
	}
	Pulser     struct{ Def pulser.Def }
	Invert     struct{}
	Brightness struct{}
	Channel    struct{ Which ChannelKind }
	Mul        struct{}
	Sum        struct{}
	Mean       struct{}
	Min        struct{}
	Max        struct{}
	Clamp      struct{ Min, Max param.Param }
	// Shift rotates the strip by Offset strip lengths.
	Shift struct{ Offset param.Param }
	Decay struct{ HalfLife param.Param }
	// ShiftDecay is Decay whose held trail moves by Shift strip lengths
	// per second.
	ShiftDecay struct{ HalfLife, Shift param.Param }
	TimeDelta  struct{}
	Noise      struct {
		Grain, Octaves int
		Offset, Max    param.Param
	}
)

func (Constant) Name() string   { return "constant" }
func (ParamNode) Name() string  { return "param" }
func (Wave) Name() string       { return "wave" }
func (WaveCycle) Name() string  { return "wavecycle" }
func (Pulser) Name() string     { return "pulser" }
func (Invert) Name() string     { return "invert" }
func (Brightness) Name() string { return "brightness" }
func (Channel) Name() string    { return "channel" }
func (Mul) Name() string        { return "mul" }
func (Sum) Name() string        { return "sum" }
func (Mean) Name() string       { return "mean" }
func (Min) Name() string        { return "min" }
func (Max) Name() string        { return "max" }
func (Clamp) Name() string      { return "clamp" }
func (Shift) Name() string      { return "shift" }
func (Decay) Name() string      { return "decay" }
func (ShiftDecay) Name() string { return "shiftdecay" }
func (TimeDelta) Name() string  { return "timedelta" }
func (Noise) Name() string      { return "noise" }

func (Constant) Layout() Layout   { return noInputs }
func (ParamNode) Layout() Layout  { return noInputs }
func (Wave) Layout() Layout       { return noInputs }
func (WaveCycle) Layout() Layout  { return noInputs }
func (Pulser) Layout() Layout     { return noInputs }
func (Invert) Layout() Layout     { return oneScalar }
func (Brightness) Layout() Layout { return oneColor }
func (Channel) Layout() Layout    { return oneColor }
func (Mul) Layout() Layout        { return manyScalars }
func (Sum) Layout() Layout        { return manyScalars }
func (Mean) Layout() Layout       { return manyScalars }
func (Min) Layout() Layout        { return manyScalars }
func (Max) Layout() Layout        { return manyScalars }
func (Clamp) Layout() Layout      { return oneScalar }
func (Shift) Layout() Layout      { return oneScalar }
func (Decay) Layout() Layout      { return oneScalar }
func (ShiftDecay) Layout() Layout { return oneScalar }
func (TimeDelta) Layout() Layout  { return oneScalar }
func (Noise) Layout() Layout      { return noInputs }

func (Constant) scalarDef()   {}
func (ParamNode) scalarDef()  {}
func (Wave) scalarDef()       {}
func (WaveCycle) scalarDef()  {}
func (Pulser) scalarDef()     {}
func (Invert) scalarDef()     {}
func (Brightness) scalarDef() {}
func (Channel) scalarDef()    {}
func (Mul) scalarDef()        {}
func (Sum) scalarDef()        {}
func (Mean) scalarDef()       {}
func (Min) scalarDef()        {}
func (Max) scalarDef()        {}
func (Clamp) scalarDef()      {}
func (Shift) scalarDef()      {}
func (Decay) scalarDef()      {}
func (ShiftDecay) scalarDef() {}
func (TimeDelta) scalarDef()  {}
func (Noise) scalarDef()      {}

// Stop is one positioned colour of a PGradient.
type Stop struct {
	Pos   float32
	Color pixel.Color
}

type (
	ColorConstant struct{ Value pixel.Color }
	ColorInvert   struct{}
	Grey          struct{}
	RGB           struct{}
	HSV           struct{}
	// Gradient spreads Stops evenly over [0,1] and looks up its scalar
	// child.
	Gradient struct{ Stops []pixel.Color }
	// PGradient looks up its scalar child among explicitly placed stops.
	PGradient  struct{ Stops []Stop }
	MulS       struct{}
	ColorMul   struct{}
	ColorSum   struct{}
	ColorMean  struct{}
	ColorMin   struct{}
	ColorMax   struct{}
	Lerp       struct{}
	Mask       struct{ Threshold param.Param }
	ColorShift struct{ Offset param.Param }
)

func (ColorConstant) Name() string { return "constant" }
func (ColorInvert) Name() string   { return "invert" }
func (Grey) Name() string          { return "grey" }
func (RGB) Name() string           { return "rgb" }
func (HSV) Name() string           { return "hsv" }
func (Gradient) Name() string      { return "gradient" }
func (PGradient) Name() string     { return "pgradient" }
func (MulS) Name() string          { return "muls" }
func (ColorMul) Name() string      { return "mul" }
func (ColorSum) Name() string      { return "sum" }
func (ColorMean) Name() string     { return "mean" }
func (ColorMin) Name() string      { return "min" }
func (ColorMax) Name() string      { return "max" }
func (Lerp) Name() string          { return "lerp" }
func (Mask) Name() string          { return "mask" }
func (ColorShift) Name() string    { return "shift" }

func (ColorConstant) Layout() Layout { return noInputs }
func (ColorInvert) Layout() Layout   { return oneColor }
func (Grey) Layout() Layout          { return oneScalar }
func (RGB) Layout() Layout           { return threeScalars }
func (HSV) Layout() Layout           { return threeScalars }
func (Gradient) Layout() Layout      { return oneScalar }
func (PGradient) Layout() Layout     { return oneScalar }
func (MulS) Layout() Layout          { return Layout{Fixed: []Chan{Color, Scalar}} }
func (ColorMul) Layout() Layout      { return manyColors }
func (ColorSum) Layout() Layout      { return manyColors }
func (ColorMean) Layout() Layout     { return manyColors }
func (ColorMin) Layout() Layout      { return manyColors }
func (ColorMax) Layout() Layout      { return manyColors }
func (Lerp) Layout() Layout          { return twoAndMask }
func (Mask) Layout() Layout          { return twoAndMask }
func (ColorShift) Layout() Layout    { return oneColor }

func (ColorConstant) colorDef() {}
func (ColorInvert) colorDef()   {}
func (Grey) colorDef()          {}
func (RGB) colorDef()           {}
func (HSV) colorDef()           {}
func (Gradient) colorDef()      {}
func (PGradient) colorDef()     {}
func (MulS) colorDef()          {}
func (ColorMul) colorDef()      {}
func (ColorSum) colorDef()      {}
func (ColorMean) colorDef()     {}
func (ColorMin) colorDef()      {}
func (ColorMax) colorDef()      {}
func (Lerp) colorDef()          {}
func (Mask) colorDef()          {}
func (ColorShift) colorDef()    {}

// ChannelKind picks the component a Channel node extracts.
type ChannelKind uint8

const (
	Red ChannelKind = iota
	Green
	Blue
	Hue
	Saturation
	Value
)

var channelNames = [...]string{"r", "g", "b", "h", "s", "v"}

func (k ChannelKind) String() string {
	if int(k) < len(channelNames) {
		return channelNames[k]
	}
	return fmt.Sprintf("channel(%d)", uint8(k))
}

// ParseChannel accepts the one-letter names and the spelled-out ones.
func ParseChannel(name string) (ChannelKind, bool) {
	switch strings.ToLower(name) {
	case "r", "red":
		return Red, true
	case "g", "green":
		return Green, true
	case "b", "blue":
		return Blue, true
	case "h", "hue":
		return Hue, true
	case "s", "sat", "saturation":
		return Saturation, true
	case "v", "val", "value":
		return Value, true
	}
	return 0, false
}
