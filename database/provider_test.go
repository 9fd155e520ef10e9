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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryProvider(t *testing.T) *Provider {
	t.Helper()
	cfg := DefaultConfig()
	cfg.URL = "sqlite::memory:"
	p := NewProvider(cfg)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProvider_OpenIsLazyAndShared(t *testing.T) {
	ctx := context.Background()
	p := memoryProvider(t)

	assert.False(t, p.IsOpen())
	assert.Nil(t, p.DB())

	first, err := p.Open(ctx)
	require.NoError(t, err)
	second, err := p.Open(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, p.IsOpen())
	assert.NoError(t, p.Ping(ctx))
	assert.Equal(t, 1, first.DB.Stats().MaxOpenConnections)
}

func TestProvider_CloseThenReopen(t *testing.T) {
	ctx := context.Background()
	p := memoryProvider(t)

	require.NoError(t, p.Close(), "closing a closed provider is a no-op")

	first, err := p.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.False(t, p.IsOpen())
	require.NoError(t, p.Close())

	err = p.Ping(ctx)
	assert.True(t, IsDataAccessError(err))

	second, err := p.Open(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestProvider_ForeignKeysEnabled(t *testing.T) {
	ctx := context.Background()
	db, err := memoryProvider(t).Open(ctx)
	require.NoError(t, err)

	var enabled int
	require.NoError(t, db.NewRaw("PRAGMA foreign_keys").Scan(ctx, &enabled))
	assert.Equal(t, 1, enabled)
}

func TestProvider_OpenFailure(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(&Config{}).Open(context.Background())
		require.Error(t, err)
		assert.True(t, IsDataAccessError(err))
	})

	t.Run("unreachable server", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.URL = "mysql://nobody@127.0.0.1:1/none"
		cfg.ConnectTimeout = 200 * time.Millisecond
		p := NewProvider(cfg)

		_, err := p.Open(context.Background())
		require.Error(t, err)
		assert.True(t, IsDataAccessError(err))
		assert.False(t, p.IsOpen())
	})
}

func TestProvider_Stats(t *testing.T) {
	p := memoryProvider(t)
	assert.Equal(t, &DBStats{}, p.Stats())

	_, err := p.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats().OpenConns)
}

func TestGlobalProvider(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() {
		_ = Close()
		globalMu.Lock()
		globalProvider = nil
		globalMu.Unlock()
	})

	_, err := Init(nil)
	assert.True(t, IsDataAccessError(err))

	cfg := DefaultConfig()
	cfg.URL = ":memory:"
	p, err := Init(cfg)
	require.NoError(t, err)
	assert.Same(t, p, GetProvider())

	db, err := Open(ctx)
	require.NoError(t, err)
	assert.Same(t, db, p.DB())

	require.NoError(t, Close())
	assert.False(t, p.IsOpen())
}

func TestInitFromFile(t *testing.T) {
	t.Cleanup(func() {
		globalMu.Lock()
		globalProvider = nil
		globalMu.Unlock()
	})

	p, err := InitFromFile(writeFile(t, "db.properties", "dburl=sqlite::memory:\n"))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, p.Config().DriverName())
}

func TestProvider_ForeignKeysOnReplacedConnection(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.URL = "file:" + filepath.Join(t.TempDir(), "sales.db")
	p := NewProvider(cfg)
	t.Cleanup(func() { _ = p.Close() })

	db, err := p.Open(ctx)
	require.NoError(t, err)

	// Drop the idle connection so the next statement dials a new one.
	db.DB.SetMaxIdleConns(0)
	db.DB.SetMaxIdleConns(1)
	require.GreaterOrEqual(t, db.DB.Stats().MaxIdleClosed, int64(1))

	var enabled int
	require.NoError(t, db.NewRaw("PRAGMA foreign_keys").Scan(ctx, &enabled))
	assert.Equal(t, 1, enabled)
}

func TestSQLiteConnector(t *testing.T) {
	c := newSQLiteConnector(":memory:")
	assert.NotNil(t, c.Driver())
	assert.Equal(t, sqlitePragmas, c.pragmas)

	conn, err := c.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	c.pragmas = []string{"PRAGMA no_such_thing("}
	_, err = c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot apply")
}
