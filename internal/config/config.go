// Package config loads beacon's settings from YAML or TOML. The format is
// picked from the file extension; anything but .toml is read as YAML.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Post struct {
	ExposureEV  float64 `yaml:"exposure_ev" toml:"exposure_ev"`
	OutputGamma float64 `yaml:"output_gamma" toml:"output_gamma"`
	WhiteCap    float64 `yaml:"white_cap" toml:"white_cap"`
	LEDChanMA   float64 `yaml:"led_chan_ma" toml:"led_chan_ma"`
	BudgetMA    float64 `yaml:"budget_ma" toml:"budget_ma"`
	LimiterKnee float64 `yaml:"limiter_knee" toml:"limiter_knee"`
}

type Strip struct {
	Width        int  `yaml:"width" toml:"width"`
	FlipEveryRow bool `yaml:"flip_every_row" toml:"flip_every_row"`
	Reverse      bool `yaml:"reverse" toml:"reverse"`
	Offset       int  `yaml:"offset" toml:"offset"`
}

type SPI struct {
	Port       string  `yaml:"port" toml:"port"`         // e.g. /dev/spidev0.0, "" = first
	FreqKHz    int     `yaml:"freq_khz" toml:"freq_khz"` // e.g. 2500
	Brightness float64 `yaml:"brightness" toml:"brightness"`
	Gamma      float64 `yaml:"gamma" toml:"gamma"`
}

type ImgSeq struct {
	Dir   string `yaml:"dir" toml:"dir"`
	Scale int    `yaml:"scale" toml:"scale"`
	Every int    `yaml:"every" toml:"every"`
}

type Window struct {
	Title string `yaml:"title" toml:"title"`
	Scale int    `yaml:"scale" toml:"scale"`
}

type Config struct {
	Script   string  `yaml:"script" toml:"script"`
	Pixels   int     `yaml:"pixels" toml:"pixels"`
	FPS      int     `yaml:"fps" toml:"fps"`
	Driver   string  `yaml:"driver" toml:"driver"` // sim | term | preview | imgseq | window | spi
	Seed     uint64  `yaml:"seed" toml:"seed"`
	Limit    float64 `yaml:"limit" toml:"limit"` // seconds, 0 = run forever
	Watch    bool    `yaml:"watch" toml:"watch"`
	LogLevel string  `yaml:"log_level" toml:"log_level"`
	Addr     string  `yaml:"addr" toml:"addr"`
	Calib    string  `yaml:"calib,omitempty" toml:"calib,omitempty"` // index_sweep | rgb_channels | ends

	Cycle         []string `yaml:"cycle,omitempty" toml:"cycle,omitempty"`
	CycleInterval float64  `yaml:"cycle_interval" toml:"cycle_interval"`
	CycleFade     float64  `yaml:"cycle_fade" toml:"cycle_fade"`

	Post   Post   `yaml:"post" toml:"post"`
	Strip  Strip  `yaml:"strip" toml:"strip"`
	SPI    SPI    `yaml:"spi,omitempty" toml:"spi,omitempty"`
	ImgSeq ImgSeq `yaml:"imgseq,omitempty" toml:"imgseq,omitempty"`
	Window Window `yaml:"window,omitempty" toml:"window,omitempty"`
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if isTOML(path) {
		err = toml.Unmarshal(b, &c)
	} else {
		err = yaml.Unmarshal(b, &c)
	}
	if err != nil {
		return nil, err
	}
	// script paths are relative to the config file
	dir := filepath.Dir(path)
	c.Script = resolve(dir, c.Script)
	for i, p := range c.Cycle {
		c.Cycle[i] = resolve(dir, p)
	}
	return &c, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func Save(path string, c *Config) error {
	var (
		b   []byte
		err error
	)
	if isTOML(path) {
		b, err = toml.Marshal(c)
	} else {
		b, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
