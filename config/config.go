// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config file is given and it exists in the
// working directory.
const DefaultFile = "carnet.yaml"

type Config struct {
	Root        string `yaml:"root"`
	Addr        string `yaml:"addr"`
	Token       string `yaml:"token"`
	LogLevel    string `yaml:"log_level"`
	LogPretty   bool   `yaml:"log_pretty"`
	StateDir    string `yaml:"state_dir"`
	DatabaseURL string `yaml:"database_url"`
}

func Default() Config {
	return Config{
		Addr:     "127.0.0.1:8080",
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order. A .env file in the working directory is
// loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.StateDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.StateDir = filepath.Join(dir, "carnet")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("CARNET_ROOT", &cfg.Root)
	setString("CARNET_ADDR", &cfg.Addr)
	setString("CARNET_TOKEN", &cfg.Token)
	setString("CARNET_LOG_LEVEL", &cfg.LogLevel)
	setString("CARNET_STATE_DIR", &cfg.StateDir)
	setString("CARNET_DATABASE_URL", &cfg.DatabaseURL)

	if v, ok := os.LookupEnv("CARNET_LOG_PRETTY"); ok {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CARNET_LOG_PRETTY: %w", err)
		}
		cfg.LogPretty = pretty
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}
	return nil
}
