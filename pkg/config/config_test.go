package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
capacity: 256
duration: 750ms
consumers: [1, 2]
`))
	require.NoError(t, err)
	assert.Equal(t, uint64(256), cfg.Capacity)
	assert.Equal(t, 750*time.Millisecond, cfg.Duration)
	assert.Equal(t, []int{1, 2}, cfg.Consumers)
	assert.Equal(t, Default().Iterations, cfg.Iterations)
	assert.Equal(t, Default().MaxSpin, cfg.MaxSpin)
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":     "capacty: 12\n",
		"zero capacity":   "capacity: 0\n",
		"bad duration":    "duration: -1s\n",
		"no consumers":    "consumers: []\n",
		"zero consumers":  "consumers: [4, 0]\n",
		"zero iterations": "iterations: 0\n",
		"zero max spin":   "max_spin: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("capacity: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("messages: 5000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Messages)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConcurrencySettings(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []Concurrency{{NumConsumers: 4}, {NumConsumers: 8}, {NumConsumers: 16}}, cfg.ConcurrencySettings(false))
	assert.Len(t, cfg.ConcurrencySettings(true), 6)
	assert.Len(t, cfg.Consumers, 3, "expanding must not alias the default slice")
}
