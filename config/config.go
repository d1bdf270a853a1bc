package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"snake-torus/game"
	"snake-torus/game/types"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

const (
	FrontendTerminal = "terminal"
	FrontendWindow   = "window"
)

// Config holds all application configuration
type Config struct {
	GridWidth       int    `json:"grid_width"`
	GridHeight      int    `json:"grid_height"`
	MoveIntervalMs  int    `json:"move_interval_ms"`
	SpawnIntervalMs int    `json:"spawn_interval_ms"`
	SweepIntervalMs int    `json:"sweep_interval_ms"`
	FoodLifetimeMs  int    `json:"food_lifetime_ms"`
	ExpiryMode      string `json:"expiry_mode"`

	Frontend  string `json:"frontend"`
	HTTPAddr  string `json:"http_addr"`
	Sound     bool   `json:"sound"`
	Autopilot bool   `json:"autopilot"`
	DataDir   string `json:"data_dir"`
	Seed      uint64 `json:"seed"`
	LogFile   string `json:"log_file"`
}

// Default returns the stock game settings.
func Default() *Config {
	return &Config{
		GridWidth:       types.GridWidth,
		GridHeight:      types.GridHeight,
		MoveIntervalMs:  int(types.MoveInterval / time.Millisecond),
		SpawnIntervalMs: int(types.SpawnInterval / time.Millisecond),
		SweepIntervalMs: int(types.SweepInterval / time.Millisecond),
		FoodLifetimeMs:  int(types.FoodLifetime / time.Millisecond),
		ExpiryMode:      game.ExpiryDeadline.String(),
		Frontend:        FrontendTerminal,
		DataDir:         "data",
	}
}

// Load overlays the JSON file at path, then the environment, on the
// defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if addr := os.Getenv("SNAKE_HTTP_ADDR"); addr != "" {
		c.HTTPAddr = addr
	}
	if dir := os.Getenv("SNAKE_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
}

// Validate checks that the settings describe a playable game.
func (c *Config) Validate() error {
	// The default snake starts at (8,12) and the default food sits at (4,10).
	if c.GridWidth <= 8 || c.GridHeight <= 12 {
		return fmt.Errorf("%w: grid %dx%d cannot hold the starting layout", ErrInvalid, c.GridWidth, c.GridHeight)
	}
	intervals := []struct {
		name string
		ms   int
	}{
		{"move_interval_ms", c.MoveIntervalMs},
		{"spawn_interval_ms", c.SpawnIntervalMs},
		{"sweep_interval_ms", c.SweepIntervalMs},
		{"food_lifetime_ms", c.FoodLifetimeMs},
	}
	for _, iv := range intervals {
		if iv.ms <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, iv.name, iv.ms)
		}
	}
	if _, err := game.ParseExpiryMode(c.ExpiryMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.Frontend {
	case FrontendTerminal, FrontendWindow:
	default:
		return fmt.Errorf("%w: unknown frontend %q", ErrInvalid, c.Frontend)
	}
	return nil
}

func (c *Config) Grid() types.Grid {
	return types.Grid{Width: c.GridWidth, Height: c.GridHeight}
}

func (c *Config) FoodLifetime() time.Duration {
	return time.Duration(c.FoodLifetimeMs) * time.Millisecond
}

// Timing converts the interval settings for the scheduler. Call it on a
// validated config.
func (c *Config) Timing() game.Timing {
	mode, _ := game.ParseExpiryMode(c.ExpiryMode)
	return game.Timing{
		Move:   time.Duration(c.MoveIntervalMs) * time.Millisecond,
		Spawn:  time.Duration(c.SpawnIntervalMs) * time.Millisecond,
		Sweep:  time.Duration(c.SweepIntervalMs) * time.Millisecond,
		Expiry: mode,
	}
}
