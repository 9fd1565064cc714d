package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/fransk/hilo/server/games"
	"github.com/fransk/hilo/server/games/guess"
)

// config is read from the environment at startup.
type config struct {
	Addr   string `env:"HILO_ADDR" envDefault:":8080"`
	WebDir string `env:"HILO_WEB_DIR" envDefault:"../web"`
	DBPath string `env:"HILO_DB_PATH" envDefault:"hilo.db"`

	// Preset is used by start messages that name no bounds or preset.
	Preset string `env:"HILO_PRESET" envDefault:"normal"`

	// Seed fixes the secret sequence. Zero draws a seed from crypto/rand.
	Seed uint64 `env:"HILO_SEED" envDefault:"0"`

	SubscriberBuffer int           `env:"HILO_SUBSCRIBER_BUFFER" envDefault:"16"`
	PublishInterval  time.Duration `env:"HILO_PUBLISH_INTERVAL" envDefault:"100ms"`
	PublishBurst     int           `env:"HILO_PUBLISH_BURST" envDefault:"8"`

	DemoLow      int           `env:"HILO_DEMO_LOW" envDefault:"1"`
	DemoHigh     int           `env:"HILO_DEMO_HIGH" envDefault:"100"`
	DemoInterval time.Duration `env:"HILO_DEMO_INTERVAL" envDefault:"1s"`
}

func (c config) demoRange() guess.Range {
	return guess.Range{Low: c.DemoLow, High: c.DemoHigh}
}

// loadConfig parses the environment and checks the values that would
// otherwise fail later at runtime.
func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, ok := games.LookupPreset(cfg.Preset); !ok {
		return config{}, fmt.Errorf("HILO_PRESET %q is not one of %v", cfg.Preset, games.PresetNames())
	}
	if cfg.DemoLow >= cfg.DemoHigh {
		return config{}, fmt.Errorf("demo range [%d, %d] is empty", cfg.DemoLow, cfg.DemoHigh)
	}
	if cfg.SubscriberBuffer <= 0 || cfg.PublishBurst <= 0 {
		return config{}, fmt.Errorf("subscriber buffer and publish burst must be positive")
	}
	if cfg.PublishInterval <= 0 || cfg.DemoInterval <= 0 {
		return config{}, fmt.Errorf("publish and demo intervals must be positive")
	}
	return cfg, nil
}
