package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahYB/drum-machine/internal/transport"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, transport.DefaultSettings(), cfg.Settings())
}

func TestLoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
bpm = 95
count_in_bars = 2

[osc]
host = "127.0.0.1"

[audio.samples]
0 = "kick.wav"
3 = "hat.wav"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 95, cfg.BPM)
	assert.Equal(t, 8, cfg.Bars)
	assert.True(t, cfg.Metronome)
	assert.Equal(t, 2, cfg.CountInBars)
	assert.Equal(t, "127.0.0.1", cfg.OSC.Host)
	assert.Equal(t, 57120, cfg.OSC.Port)

	samples, err := cfg.SamplePaths()
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "kick.wav", 3: "hat.wav"}, samples)
}

func TestLoadClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("bpm = 500\nbars = -4\ncount_in_bars = 9\n[audio]\nvolume = 4.0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.BPM)
	assert.Equal(t, 8, cfg.Bars)
	assert.Equal(t, 2, cfg.CountInBars)
	assert.Equal(t, 1.0, cfg.Audio.Volume)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("bpm = \"fast\""), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.BPM = 140
	cfg.Bars = 16
	cfg.MIDI.InPort = "Launchpad"
	cfg.Audio.Samples = map[string]string{"1": "snare.wav"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSamplePathsRejectsNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Samples = map[string]string{"kick": "kick.wav"}
	_, err := cfg.SamplePaths()
	assert.ErrorContains(t, err, "kick")
}

func TestMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MIDI.BaseNote = 48
	cfg.MIDI.Channel = 10
	m := cfg.Mapping()
	assert.Equal(t, uint8(48), m.BaseNote)
	assert.Equal(t, 8, m.Pads)
	assert.Equal(t, 10, m.Channel)
}
