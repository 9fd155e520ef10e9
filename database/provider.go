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
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/tomoncle/salesdb/utils"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// DBStats mirrors database/sql stats for the shared connection.
type DBStats struct {
	OpenConns    int           `json:"open_conns"`
	InUse        int           `json:"in_use"`
	Idle         int           `json:"idle"`
	WaitCount    int64         `json:"wait_count"`
	WaitDuration time.Duration `json:"wait_duration"`
}

// Provider owns the one database handle of a process. The handle is opened
// on the first call to Open and reused until Close.
//
// The underlying *sql.DB is capped at a single connection, so statements
// issued from several goroutines are serialised by database/sql and a
// transaction holds the connection until it ends.
type Provider struct {
	config *Config
	logger Logger

	mu sync.Mutex
	db *bun.DB
}

// NewProvider returns a closed provider for cfg.
func NewProvider(cfg *Config) *Provider {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Provider{config: cfg, logger: GetLogger()}
}

// SetLogger replaces the provider logger.
func (p *Provider) SetLogger(logger Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = logger
}

// Config returns the configuration the provider opens with.
func (p *Provider) Config() *Config {
	return p.config
}

// Open returns the shared handle, opening it on first use.
func (p *Provider) Open(ctx context.Context) (*bun.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}

	start := time.Now()
	db, err := p.connect(ctx)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("Failed to open database", "driver", p.config.DriverName(), "error", err)
		}
		return nil, err
	}
	p.db = db
	if p.logger != nil {
		p.logger.Info("Database opened",
			"driver", p.config.DriverName(),
			"dsn", p.config.Redacted(),
			"elapsed", utils.Since(start),
		)
	}
	return db, nil
}

func (p *Provider) connect(ctx context.Context) (*bun.DB, error) {
	const op = "open connection"

	if err := p.config.Validate(); err != nil {
		return nil, wrapf(op, err, "invalid configuration")
	}
	dsn, err := p.config.DSN()
	if err != nil {
		return nil, wrapf(op, err, "cannot build data source name")
	}

	driverName, dialect, err := p.driverFor(p.config.DriverName())
	if err != nil {
		return nil, wrapf(op, err, "cannot select driver")
	}
	var sqlDB *sql.DB
	if p.config.DriverName() == DriverSQLite {
		sqlDB = sql.OpenDB(newSQLiteConnector(dsn))
	} else {
		sqlDB, err = sql.Open(driverName, dsn)
		if err != nil {
			return nil, wrapf(op, err, "cannot open %s database", p.config.DriverName())
		}
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	timeout := p.config.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, wrapf(op, err, "database connection test failed")
	}

	db := bun.NewDB(sqlDB, dialect)

	if p.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if p.config.SlowQueryTime > 0 {
		db.AddQueryHook(&SlowQueryHook{Threshold: p.config.SlowQueryTime, Logger: p.logger})
	}
	db.AddQueryHook(&ErrorQueryHook{Logger: p.logger})
	return db, nil
}

func (p *Provider) driverFor(name string) (string, schema.Dialect, error) {
	switch name {
	case DriverMySQL:
		return "mysql", mysqldialect.New(), nil
	case DriverPostgres:
		return "postgres", pgdialect.New(), nil
	case DriverPgx:
		return "pgx", pgdialect.New(), nil
	case DriverSQLite:
		return sqliteshim.ShimName, sqlitedialect.New(), nil
	default:
		return "", nil, fmt.Errorf("unsupported database driver: %s", name)
	}
}

// Close closes the shared handle if it is open and forgets it, so that a
// later Open reconnects. Closing a closed provider is a no-op.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	if err != nil {
		if p.logger != nil {
			p.logger.Error("Failed to close database connection", "error", err)
		}
		return wrapf("close connection", err, "cannot close database")
	}
	if p.logger != nil {
		p.logger.Info("Database connection closed")
	}
	return nil
}

// DB returns the open handle or nil.
func (p *Provider) DB() *bun.DB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db
}

// IsOpen reports whether the handle is currently open.
func (p *Provider) IsOpen() bool {
	return p.DB() != nil
}

// Ping checks the open connection.
func (p *Provider) Ping(ctx context.Context) error {
	db := p.DB()
	if db == nil {
		return NewDataAccessError("ping", "database not connected", nil)
	}
	if err := db.PingContext(ctx); err != nil {
		return NewDataAccessError("ping", "database unreachable", err)
	}
	return nil
}

// Stats returns connection statistics; zero values when closed.
func (p *Provider) Stats() *DBStats {
	db := p.DB()
	if db == nil {
		return &DBStats{}
	}
	stats := db.DB.Stats()
	return &DBStats{
		OpenConns:    stats.OpenConnections,
		InUse:        stats.InUse,
		Idle:         stats.Idle,
		WaitCount:    stats.WaitCount,
		WaitDuration: stats.WaitDuration,
	}
}
