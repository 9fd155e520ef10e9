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

package transaction

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tomoncle/salesdb/database"
	"github.com/tomoncle/salesdb/utils"
	"github.com/uptrace/bun"
)

const (
	opTransaction = "transaction"

	msgRolledBack    = "transaction rolled back"
	msgRollbackError = "error trying to rollback"
)

// Tx is the part of a transaction the script needs.
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Commit() error
	Rollback() error
}

// Beginner starts transactions. FromBun adapts a *bun.DB.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

type bunBeginner struct {
	db *bun.DB
}

// FromBun returns a Beginner over db. Statement placeholders are written
// with '?' and rendered for the handle's dialect.
func FromBun(db *bun.DB) Beginner {
	return &bunBeginner{db: db}
}

func (b *bunBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := b.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Statement is one parameterised statement.
type Statement struct {
	Query string
	Args  []interface{}
}

// NewStatement returns a Statement for query and args.
func NewStatement(query string, args ...interface{}) Statement {
	return Statement{Query: query, Args: args}
}

// ExecAtomic runs stmts in order on one transaction and commits when all of
// them succeed. It returns the rows affected by each statement.
func ExecAtomic(ctx context.Context, db Beginner, stmts ...Statement) ([]int64, error) {
	logger := database.GetLogger()
	start := time.Now()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, database.NewDataAccessError(opTransaction, "cannot begin transaction", err)
	}

	affected := make([]int64, 0, len(stmts))
	for i, stmt := range stmts {
		res, err := tx.ExecContext(ctx, stmt.Query, stmt.Args...)
		if err == nil {
			var n int64
			n, err = res.RowsAffected()
			affected = append(affected, n)
		}
		if err != nil {
			logger.Warn("Statement failed, rolling back", "index", i, "error", err)
			return nil, rollback(tx, database.Translate(opTransaction, err), false)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Commit failed, rolling back", "error", err)
		return nil, rollback(tx, database.TranslateMsg(opTransaction, "commit failed", err), true)
	}
	logger.Debug("Transaction committed", "statements", len(stmts), "elapsed", utils.Since(start))
	return affected, nil
}

// RunInTx calls fn with a transaction on db and commits when fn returns nil.
// Failures follow the same reporting rules as ExecAtomic.
func RunInTx(ctx context.Context, db *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	logger := database.GetLogger()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return database.NewDataAccessError(opTransaction, "cannot begin transaction", err)
	}
	defer func() {
		if r := recover(); r != nil {
			if err := tx.Rollback(); err != nil {
				logger.Error("Rollback after panic failed", "error", err)
			}
			panic(r)
		}
	}()
	if err := fn(ctx, tx); err != nil {
		logger.Warn("Unit of work failed, rolling back", "error", err)
		return rollback(tx, err, false)
	}
	if err := tx.Commit(); err != nil {
		logger.Error("Commit failed, rolling back", "error", err)
		return rollback(tx, database.TranslateMsg(opTransaction, "commit failed", err), true)
	}
	return nil
}

// rollback undoes tx after cause. A failing rollback wins over cause.
// After a failed commit the driver may already have ended the transaction,
// in which case sql.ErrTxDone counts as rolled back.
func rollback(tx Tx, cause error, afterCommit bool) error {
	err := tx.Rollback()
	if err != nil && !(afterCommit && errors.Is(err, sql.ErrTxDone)) {
		database.GetLogger().Error("Rollback failed", "error", err, "cause", cause)
		return database.NewDataAccessError(opTransaction, msgRollbackError, err)
	}
	database.GetLogger().Info("Transaction rolled back", "cause", cause)
	return database.NewDataAccessError(opTransaction, msgRolledBack, cause)
}
