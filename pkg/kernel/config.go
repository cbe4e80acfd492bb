// Copyright 2024 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the compile-time constants the original kernel baked
// into headers (param.h and friends), made runtime-configurable via an
// optional TOML boot file.
type Config struct {
	// NPROC is the fixed size of the process table.
	NPROC int `toml:"nproc"`
	// NOFILE bounds the per-process open-file table.
	NOFILE int `toml:"nofile"`
	// NCPU is the number of simulated CPU dispatch loops.
	NCPU int `toml:"ncpu"`
	// AgedOutTicks is the starvation threshold do_aging uses.
	AgedOutTicks int64 `toml:"aged_out_ticks"`
	// TickInterval is the wall-clock duration of one simulated tick.
	TickInterval time.Duration `toml:"tick_interval"`
	// DefaultPriority seeds a new process's BJF priority.
	DefaultPriority float64 `toml:"default_priority"`
}

// DefaultConfig returns the compiled-in defaults, matching the original
// kernel's NPROC=64, NOFILE=16, and a 10ms tick.
func DefaultConfig() Config {
	return Config{
		NPROC:           DefaultNPROC,
		NOFILE:          DefaultNOFILE,
		NCPU:            DefaultNCPU,
		AgedOutTicks:    DefaultAgedOut,
		TickInterval:    10 * time.Millisecond,
		DefaultPriority: 3.0,
	}
}

// LoadConfig reads a TOML boot file, applying its fields on top of
// DefaultConfig. A missing path is not an error: callers pass "" to
// get defaults outright, and cmd/psctl treats a missing configured
// path as "fall back to defaults" the way the teacher's runsc config
// loader tolerates an absent config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("kernel: decoding config %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.NPROC <= 0 {
		return fmt.Errorf("kernel: nproc must be positive, got %d", c.NPROC)
	}
	if c.NOFILE <= 0 {
		return fmt.Errorf("kernel: nofile must be positive, got %d", c.NOFILE)
	}
	if c.NCPU <= 0 {
		return fmt.Errorf("kernel: ncpu must be positive, got %d", c.NCPU)
	}
	if c.AgedOutTicks <= 0 {
		return fmt.Errorf("kernel: aged_out_ticks must be positive, got %d", c.AgedOutTicks)
	}
	return nil
}
