// Package config loads the flat YAML run configuration: the instrument
// plus the GA parameters. Everything is validated up front so a bad file
// fails before any search starts.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/jsphweid/fretwise/engine"
	"github.com/jsphweid/fretwise/instrument"
	"github.com/jsphweid/fretwise/model"
)

type InstrumentConfig struct {
	// Tuning lists open-string MIDI pitches, treble string first.
	Tuning  []model.Pitch `yaml:"tuning"`
	MaxFret int           `yaml:"max_fret"`
}

type Config struct {
	Instrument InstrumentConfig `yaml:"instrument"`
	Engine     engine.Config    `yaml:"engine"`
	// BPM only affects rendered playback, not the search.
	BPM float64 `yaml:"bpm"`
}

func Default() Config {
	std := instrument.StandardGuitar()
	return Config{
		Instrument: InstrumentConfig{Tuning: std.Tuning(), MaxFret: std.MaxFret()},
		Engine:     engine.DefaultConfig(),
		BPM:        120,
	}
}

// Load reads path and overlays it on the defaults, so partial files work.
func Load(path string) (Config, error) {
	cfg := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(dat, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.NewInstrument(); err != nil {
		return engine.ConfigurationError{Detail: err.Error()}
	}
	if c.BPM <= 0 {
		return engine.ConfigurationError{Detail: fmt.Sprintf("bpm must be > 0, got %v", c.BPM)}
	}
	return c.Engine.Validate()
}

func (c Config) NewInstrument() (*instrument.Instrument, error) {
	return instrument.New(c.Instrument.Tuning, c.Instrument.MaxFret)
}
