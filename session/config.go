// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the on-disk shape of a session's runtime settings, loaded
// by cmd/bwnetctl serve's --config flag.
type Config struct {
	ListenAddr  string        `toml:"listen_addr"`
	ReadLimit   int           `toml:"read_limit"`
	Checksum    bool          `toml:"checksum"`
	RetryDelay  time.Duration `toml:"retry_delay"`
	LocalPrefix bool          `toml:"local_prefix"`
	MetricsAddr string        `toml:"metrics_addr"`
}

// DefaultConfig returns the configuration bwnetctl serve uses when no
// --config file is given.
func DefaultConfig() Config {
	return Config{
		ListenAddr: "127.0.0.1:0",
		ReadLimit:  0,
		Checksum:   true,
		RetryDelay: -1,
	}
}

// LoadConfig reads and parses a toml config file, starting from
// DefaultConfig so a partial file only overrides the fields it sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path in toml form.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Options converts the loaded config into session Options.
func (c Config) Options() []Option {
	opts := []Option{WithRetryDelay(c.RetryDelay)}
	if c.ReadLimit > 0 {
		opts = append(opts, WithReadLimit(c.ReadLimit))
	}
	if c.LocalPrefix {
		opts = append(opts, WithLocalPrefix())
	} else {
		opts = append(opts, WithNetworkPrefix())
	}
	return opts
}
