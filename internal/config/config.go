// Package config loads process settings and game balance from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the simulator process.
type Config struct {
	Seed            int64         `yaml:"seed" json:"seed"` // 0 = non-deterministic
	TickInterval    time.Duration `yaml:"tick_interval" json:"tick_interval"`
	WorldEventEvery uint64        `yaml:"world_event_every" json:"world_event_every"` // Ticks between world-event passes
	DBPath          string        `yaml:"db_path" json:"db_path"`
	APIPort         int           `yaml:"api_port" json:"api_port"`
	AdminKey        string        `yaml:"admin_key" json:"-"`
	RandomOrgKey    string        `yaml:"random_org_key" json:"-"`
	Difficulty      string        `yaml:"difficulty" json:"difficulty"`
	Balance         Balance       `yaml:"balance" json:"balance"`
}

// ErrNoConfigFile is returned by Load when the file does not exist; the
// returned Config is still usable and holds defaults.
var ErrNoConfigFile = errors.New("config file not found")

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		TickInterval:    time.Second,
		WorldEventEvery: 30,
		DBPath:          "data/storefront.db",
		APIPort:         8080,
		Difficulty:      "normal",
		Balance:         Default(),
	}
}

// Load reads a YAML config file over the defaults. The difficulty preset is
// applied first, so explicit balance keys in the file still win.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, ErrNoConfigFile
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var probe struct {
		Difficulty string `yaml:"difficulty"`
	}
	if err := yaml.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if probe.Difficulty != "" {
		cfg.Difficulty = probe.Difficulty
		cfg.Balance = ForDifficulty(probe.Difficulty)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides settings from STORESIM_* environment variables.
func (c *Config) ApplyEnv() {
	if mode := os.Getenv("STORESIM_DIFFICULTY"); mode != "" && mode != c.Difficulty {
		c.Difficulty = mode
		c.Balance = ForDifficulty(mode)
	}
	if v, ok := envInt64("STORESIM_SEED"); ok {
		c.Seed = v
	}
	if v := os.Getenv("STORESIM_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.TickInterval = d
		}
	}
	if v, ok := envInt64("STORESIM_WORLD_EVENT_EVERY"); ok && v > 0 {
		c.WorldEventEvery = uint64(v)
	}
	if v := os.Getenv("STORESIM_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v, ok := envInt64("STORESIM_API_PORT"); ok && v > 0 {
		c.APIPort = int(v)
	}
	if v := os.Getenv("STORESIM_ADMIN_KEY"); v != "" {
		c.AdminKey = v
	}
	if v := os.Getenv("RANDOM_ORG_API_KEY"); v != "" {
		c.RandomOrgKey = v
	}
	if v, ok := envFloat("STORESIM_STARTING_CASH"); ok && v >= 0 {
		c.Balance.StartingCash = v
	}
}

// Validate checks process settings and the balance.
func (c *Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("tick_interval must be positive"))
	}
	if c.WorldEventEvery == 0 {
		errs = append(errs, errors.New("world_event_every must be positive"))
	}
	if c.APIPort < 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("api_port out of range: %d", c.APIPort))
	}
	if err := c.Balance.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("balance: %w", err))
	}
	return errors.Join(errs...)
}

func envInt64(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
