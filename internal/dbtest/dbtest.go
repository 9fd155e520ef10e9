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

// Package dbtest opens throwaway in-memory SQLite stores for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/salesdb/database"
	"github.com/uptrace/bun"
)

// NewProvider returns an unopened provider over a private in-memory
// database. The provider is closed when the test ends.
func NewProvider(t *testing.T) *database.Provider {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.URL = "sqlite::memory:"
	p := database.NewProvider(cfg)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// Open returns an open handle with the schema applied and no rows.
func Open(t *testing.T) (*database.Provider, *bun.DB) {
	t.Helper()

	ctx := context.Background()
	p := NewProvider(t)
	db, err := p.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, database.ApplySchema(ctx, db))
	return p, db
}

// OpenSeeded is Open plus the demo departments and sellers.
func OpenSeeded(t *testing.T) (*database.Provider, *bun.DB) {
	t.Helper()

	p, db := Open(t)
	seeded, err := database.SeedDemoData(context.Background(), db)
	require.NoError(t, err)
	require.True(t, seeded)
	return p, db
}
