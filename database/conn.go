/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu       sync.RWMutex
	globalProvider *Provider
)

// Init installs the process-wide provider for cfg, closing any previous one.
func Init(cfg *Config) (*Provider, error) {
	if cfg == nil {
		return nil, NewDataAccessError("init", "database configuration cannot be empty", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewDataAccessError("init", "invalid configuration", err)
	}
	p := NewProvider(cfg)

	globalMu.Lock()
	previous := globalProvider
	globalProvider = p
	globalMu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			return p, err
		}
	}
	return p, nil
}

// InitFromFile loads the configuration file at path and calls Init.
func InitFromFile(path string) (*Provider, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return Init(cfg)
}

// GetProvider returns the process-wide provider, or nil before Init.
func GetProvider() *Provider {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider
}

// Open opens the process-wide connection on first use and returns it.
func Open(ctx context.Context) (*bun.DB, error) {
	p := GetProvider()
	if p == nil {
		return nil, NewDataAccessError("open connection", "database not initialized", nil)
	}
	return p.Open(ctx)
}

// Close closes the process-wide connection. A later Open reopens it.
func Close() error {
	p := GetProvider()
	if p == nil {
		return nil
	}
	return p.Close()
}
