package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
)

const (
	DefaultRunAddress  = "localhost:8787"
	DefaultBackendURL  = ""
	DefaultAnonKey     = ""
	DefaultSessionFile = ""
)

type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	BackendURL  string `env:"SUPABASE_URL"`
	AnonKey     string `env:"SUPABASE_ANON_KEY"`
	SessionFile string `env:"SESSION_FILE"`
}

func New() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", DefaultRunAddress, "gateway listen address")
	flag.StringVar(&cfg.BackendURL, "u", DefaultBackendURL, "backend project URL")
	flag.StringVar(&cfg.AnonKey, "k", DefaultAnonKey, "backend anon API key")
	flag.StringVar(&cfg.SessionFile, "s", DefaultSessionFile, "session file path")
	flag.Parse()

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.BackendURL == "" || cfg.AnonKey == "" {
		return nil, errors.New("backend URL and anon key are required")
	}

	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.SessionFile = filepath.Join(home, ".exapower", "session.json")
	}

	return cfg, nil
}
