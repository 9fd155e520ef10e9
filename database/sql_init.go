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
	"bufio"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

//go:embed schema/*.sql
var scriptFS embed.FS

// ScriptResult describes one executed SQL script.
type ScriptResult struct {
	Name         string
	Statements   int
	RowsAffected int64
	Duration     time.Duration
}

// ExecScript runs every statement of content inside one transaction.
// Statements end with a semicolon at the end of a line; blank lines and
// lines starting with "--" are skipped.
func ExecScript(ctx context.Context, db bun.IDB, name, content string) (*ScriptResult, error) {
	const op = "exec script"

	start := time.Now()
	result := &ScriptResult{Name: name}
	statements := splitSQLStatements(content)
	if len(statements) == 0 {
		return result, nil
	}

	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range statements {
			res, err := tx.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("failed to execute SQL statement: %s, error: %w", stmt, err)
			}
			rows, _ := res.RowsAffected()
			result.RowsAffected += rows
			result.Statements++
		}
		return nil
	})
	result.Duration = time.Since(start)
	if err != nil {
		return result, Translate(op, err)
	}

	GetLogger().Debug("SQL script executed",
		"script", name,
		"statements", result.Statements,
		"rows_affected", result.RowsAffected,
		"duration", result.Duration.String(),
	)
	return result, nil
}

// ApplySchema creates the department and seller tables for the dialect of
// db when they do not exist yet.
func ApplySchema(ctx context.Context, db *bun.DB) error {
	name, err := schemaFileFor(db.Dialect().Name())
	if err != nil {
		return NewDataAccessError("apply schema", "no schema for dialect", err)
	}
	return execEmbedded(ctx, db, name)
}

// SeedDemoData loads the demo departments and sellers into an empty store.
// It does nothing when departments already exist.
func SeedDemoData(ctx context.Context, db *bun.DB) (bool, error) {
	count, err := db.NewSelect().Table("department").Count(ctx)
	if err != nil {
		return false, Translate("seed data", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := execEmbedded(ctx, db, "schema/seed.sql"); err != nil {
		return false, err
	}
	return true, nil
}

func execEmbedded(ctx context.Context, db *bun.DB, name string) error {
	content, err := scriptFS.ReadFile(name)
	if err != nil {
		return NewDataAccessError("exec script", "cannot read "+name, err)
	}
	_, err = ExecScript(ctx, db, name, string(content))
	return err
}

func schemaFileFor(name dialect.Name) (string, error) {
	switch name {
	case dialect.SQLite:
		return "schema/sqlite.sql", nil
	case dialect.MySQL:
		return "schema/mysql.sql", nil
	case dialect.PG:
		return "schema/postgres.sql", nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s", name)
	}
}

func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		current.WriteString(line)
		current.WriteString(" ")

		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if current.Len() > 0 {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}

	return statements
}
