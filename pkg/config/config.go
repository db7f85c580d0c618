package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/i5heu/GoSling/internal/testbench"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid bench config")

// Concurrency is an alias for testbench.Config. This allows other programs to
// import the settings without pulling in the entire testbench package.
type Concurrency = testbench.Config

// Config drives cmd/bench.
type Config struct {
	// Capacity is the slot count of every queue under test.
	Capacity uint64 `yaml:"capacity"`
	// Duration is how long each timed run produces.
	Duration time.Duration `yaml:"duration"`
	// Iterations repeats every setting this many times.
	Iterations int `yaml:"iterations"`
	// Messages is the number of pushes per burst run.
	Messages int `yaml:"messages"`
	// MaxSpin is how many empty polls a burst consumer tolerates once the
	// producer has finished.
	MaxSpin int `yaml:"max_spin"`
	// Consumers lists the consumer goroutine counts to run.
	Consumers []int `yaml:"consumers"`
	// HighConcurrencyConsumers is appended to Consumers when requested.
	HighConcurrencyConsumers []int `yaml:"high_concurrency_consumers"`
}

// Default mirrors the settings the ring was originally benchmarked with.
func Default() Config {
	return Config{
		Capacity:                 1024,
		Duration:                 5 * time.Second,
		Iterations:               5,
		Messages:                 1000,
		MaxSpin:                  128,
		Consumers:                []int{4, 8, 16},
		HighConcurrencyConsumers: []int{64, 128, 256},
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting can actually be run.
func (c Config) Validate() error {
	switch {
	case c.Capacity < 1:
		return fmt.Errorf("%w: capacity must be >= 1", ErrInvalidConfig)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidConfig, c.Duration)
	case c.Iterations < 1:
		return fmt.Errorf("%w: iterations must be >= 1, got %d", ErrInvalidConfig, c.Iterations)
	case c.Messages < 1:
		return fmt.Errorf("%w: messages must be >= 1, got %d", ErrInvalidConfig, c.Messages)
	case c.MaxSpin < 1:
		return fmt.Errorf("%w: max_spin must be >= 1, got %d", ErrInvalidConfig, c.MaxSpin)
	case len(c.Consumers) == 0:
		return fmt.Errorf("%w: at least one consumer count is required", ErrInvalidConfig)
	}
	for _, n := range append(append([]int{}, c.Consumers...), c.HighConcurrencyConsumers...) {
		if n < 1 {
			return fmt.Errorf("%w: consumer count must be >= 1, got %d", ErrInvalidConfig, n)
		}
	}
	return nil
}

// ConcurrencySettings expands the consumer counts into harness settings.
func (c Config) ConcurrencySettings(highConcurrency bool) []Concurrency {
	counts := c.Consumers
	if highConcurrency {
		counts = append(append([]int{}, counts...), c.HighConcurrencyConsumers...)
	}
	out := make([]Concurrency, 0, len(counts))
	for _, n := range counts {
		out = append(out, Concurrency{NumConsumers: n})
	}
	return out
}
