package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/NoahYB/drum-machine/internal/midiio"
	"github.com/NoahYB/drum-machine/internal/transport"
)

// AudioConfig configures the built-in sound engine.
type AudioConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
	// Samples maps a pad number to a WAV file.
	Samples map[string]string `toml:"samples,omitempty"`
}

// MIDIConfig configures pad input and echo output.
type MIDIConfig struct {
	InPort      string `toml:"in_port,omitempty"`
	OutPort     string `toml:"out_port,omitempty"`
	VirtualName string `toml:"virtual_name"`
	BaseNote    int    `toml:"base_note"`
	Channel     int    `toml:"channel"`
}

// OSCConfig configures the OSC bridge. An empty Host disables sending, an
// empty Listen disables receiving.
type OSCConfig struct {
	Host   string `toml:"host,omitempty"`
	Port   int    `toml:"port"`
	Listen string `toml:"listen,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	BPM         int         `toml:"bpm"`
	Bars        int         `toml:"bars"`
	Metronome   bool        `toml:"metronome"`
	CountInBars int         `toml:"count_in_bars"`
	Audio       AudioConfig `toml:"audio"`
	MIDI        MIDIConfig  `toml:"midi"`
	OSC         OSCConfig   `toml:"osc"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	s := transport.DefaultSettings()
	return &Config{
		BPM:         s.BPM,
		Bars:        s.Bars,
		Metronome:   s.Metronome,
		CountInBars: s.CountInBars,
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.6,
		},
		MIDI: MIDIConfig{
			VirtualName: "Drum Machine Pads",
			BaseNote:    midiio.DefaultBaseNote,
		},
		OSC: OSCConfig{
			Port: 57120,
		},
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "drum-machine"), nil
}

// Path returns the full path to config.toml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config at path, or at Path when path is empty. A missing
// file yields the defaults; keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Clamp()
	return cfg, nil
}

// Save writes the config to path, or to Path when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Clamp pulls every value into its valid range.
func (c *Config) Clamp() {
	s := c.Settings()
	c.BPM, c.Bars, c.CountInBars = s.BPM, s.Bars, s.CountInBars
	c.Audio.Volume = min(max(c.Audio.Volume, 0), 1)
	c.MIDI.BaseNote = min(max(c.MIDI.BaseNote, 0), 127)
	c.MIDI.Channel = min(max(c.MIDI.Channel, 0), 16)
}

// Settings are the transport settings this config starts with.
func (c *Config) Settings() transport.Settings {
	return transport.Settings{
		BPM:         c.BPM,
		Bars:        c.Bars,
		Metronome:   c.Metronome,
		CountInBars: c.CountInBars,
	}.Clamp()
}

// SamplePaths converts the sample table keys to pad numbers.
func (c *Config) SamplePaths() (map[int]string, error) {
	out := make(map[int]string, len(c.Audio.Samples))
	for key, path := range c.Audio.Samples {
		pad, err := strconv.Atoi(key)
		if err != nil || pad < 0 {
			return nil, fmt.Errorf("sample key %q is not a pad number", key)
		}
		out[pad] = path
	}
	return out, nil
}

func (c *Config) Mapping() midiio.Mapping {
	return midiio.Mapping{
		BaseNote: uint8(min(max(c.MIDI.BaseNote, 0), 127)), //nolint:gosec // clamped
		Pads:     midiio.DefaultPads,
		Channel:  c.MIDI.Channel,
	}
}
