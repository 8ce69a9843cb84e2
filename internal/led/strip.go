// Package led drives WS2812-style strips over SPI with periph's nrzled
// encoder.
package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/beacon/internal/layout"
	"github.com/coreman2200/beacon/internal/pixel"
)

const DefaultFreq = 2500 * physic.KiloHertz

type Options struct {
	Count      int
	Freq       physic.Frequency // 0 = DefaultFreq
	Brightness float32          // 0 = full
	Gamma      float32          // 0 or 1 = linear
	Layout     layout.Strip
}

// Strip is a render driver writing to one SPI-attached strip.
type Strip struct {
	mu     sync.Mutex
	dev    *nrzled.Dev
	port   spi.PortCloser
	count  int
	bright float32
	lut    LUT
	layout layout.Strip
	phys   []pixel.Color
	raw    []byte
}

// Open initialises the host drivers and opens the SPI port by name; ""
// selects the first port available.
func Open(name string, o Options) (*Strip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("led: host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("led: open spi %q: %w", name, err)
	}
	s, err := New(p, o)
	if err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already open port. The strip owns p from here on.
func New(p spi.PortCloser, o Options) (*Strip, error) {
	if o.Count <= 0 {
		return nil, fmt.Errorf("led: invalid LED count: %d", o.Count)
	}
	if o.Freq == 0 {
		o.Freq = DefaultFreq
	}
	if o.Brightness <= 0 || o.Brightness > 1 {
		o.Brightness = 1
	}
	o.Layout.Count = o.Count

	dev, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: o.Count, Channels: 3, Freq: o.Freq})
	if err != nil {
		return nil, fmt.Errorf("led: nrzled: %w", err)
	}
	return &Strip{
		dev:    dev,
		port:   p,
		count:  o.Count,
		bright: o.Brightness,
		lut:    NewLUT(o.Gamma),
		layout: o.Layout,
		phys:   make([]pixel.Color, o.Count),
		raw:    make([]byte, o.Count*3),
	}, nil
}

// Write takes one colour per LED in logical order.
func (s *Strip) Write(buf []pixel.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev == nil {
		return fmt.Errorf("led: strip closed")
	}
	if len(buf) != s.count {
		return fmt.Errorf("led: frame length %d does not match count %d", len(buf), s.count)
	}
	s.layout.Apply(s.phys, buf)
	for i, c := range s.phys {
		c = c.Scale(s.bright)
		s.raw[i*3+0] = s.lut[pixel.To255(c.R)]
		s.raw[i*3+1] = s.lut[pixel.To255(c.G)]
		s.raw[i*3+2] = s.lut[pixel.To255(c.B)]
	}
	if _, err := s.dev.Write(s.raw); err != nil {
		return fmt.Errorf("led: spi write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *Strip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Halt()
	s.dev = nil
	if cerr := s.port.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *Strip) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return "led{closed}"
	}
	return s.dev.String()
}
