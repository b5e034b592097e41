package physics

import (
	"fmt"
	"math"
	"os"

	"github.com/oliverbestmann/rigid/gm"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Gravity gm.Vec3 `yaml:"gravity"`

	// MaxSubSteps limits the number of fixed steps per frame. Time exceeding
	// the limit is dropped. Zero performs a single variable length step.
	MaxSubSteps   int     `yaml:"max_sub_steps"`
	FixedTimeStep float64 `yaml:"fixed_time_step"`

	// FrameCounterLimit is the value at which the frame counter wraps back to one.
	FrameCounterLimit uint64 `yaml:"frame_counter_limit"`

	Solver SolverConfig `yaml:"solver"`
}

type SolverConfig struct {
	Iterations int `yaml:"iterations"`

	// Damping is the fraction of velocity a body keeps per second.
	Damping float64 `yaml:"damping"`

	// CollisionSlop is the amount of overlap allowed between shapes.
	CollisionSlop float64 `yaml:"collision_slop"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:           gm.Vec3{Y: -9.82},
		MaxSubSteps:       10,
		FixedTimeStep:     1.0 / 60.0,
		FrameCounterLimit: math.MaxUint64,
		Solver: SolverConfig{
			Iterations:    10,
			Damping:       1.0,
			CollisionSlop: 0.1,
		},
	}
}

// ParseConfig parses a yaml document. Values missing in the document
// keep their default value.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("physics: unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("physics: load config %s: %w", path, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("physics: load config %s: %w", path, err)
	}

	return config, nil
}

func (c Config) Validate() error {
	switch {
	case c.MaxSubSteps < 0:
		return fmt.Errorf("%w: max_sub_steps must not be negative, got %d", ErrInvalidConfig, c.MaxSubSteps)

	case c.FixedTimeStep <= 0:
		return fmt.Errorf("%w: fixed_time_step must be positive, got %v", ErrInvalidConfig, c.FixedTimeStep)

	case c.FrameCounterLimit < 2:
		return fmt.Errorf("%w: frame_counter_limit must be at least 2, got %d", ErrInvalidConfig, c.FrameCounterLimit)

	case c.Solver.Iterations < 1:
		return fmt.Errorf("%w: solver.iterations must be at least 1, got %d", ErrInvalidConfig, c.Solver.Iterations)

	case c.Solver.Damping <= 0 || c.Solver.Damping > 1:
		return fmt.Errorf("%w: solver.damping must be in (0, 1], got %v", ErrInvalidConfig, c.Solver.Damping)

	case c.Solver.CollisionSlop < 0:
		return fmt.Errorf("%w: solver.collision_slop must not be negative, got %v", ErrInvalidConfig, c.Solver.CollisionSlop)
	}

	return nil
}
