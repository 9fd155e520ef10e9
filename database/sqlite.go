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
	"database/sql/driver"
	"fmt"

	"github.com/uptrace/bun/driver/sqliteshim"
)

// sqlitePragmas run on every new SQLite connection. SQLite keeps them per
// connection, so a replaced connection must get them again.
var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON",
}

// sqliteConnector opens connections through the sqliteshim driver and
// applies sqlitePragmas to each one.
type sqliteConnector struct {
	driver  driver.Driver
	dsn     string
	pragmas []string
}

var _ driver.Connector = (*sqliteConnector)(nil)

func newSQLiteConnector(dsn string) *sqliteConnector {
	return &sqliteConnector{driver: sqliteshim.Driver(), dsn: dsn, pragmas: sqlitePragmas}
}

func (c *sqliteConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	for _, pragma := range c.pragmas {
		if err := execPragma(ctx, conn, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("cannot apply %q: %w", pragma, err)
		}
	}
	return conn, nil
}

func (c *sqliteConnector) Driver() driver.Driver {
	return c.driver
}

func execPragma(ctx context.Context, conn driver.Conn, query string) error {
	if execer, ok := conn.(driver.ExecerContext); ok {
		_, err := execer.ExecContext(ctx, query, nil)
		return err
	}
	stmt, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(nil) //nolint:staticcheck
	return err
}
