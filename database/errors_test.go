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
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSqlError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		wantIs bool
		want   SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"plain", errors.New("boom"), false, UnknownErr},
		{"mysql row referenced", &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}, true, ForeignKeyViolationErr},
		{"mysql missing parent", &mysql.MySQLError{Number: 1452}, true, ForeignKeyViolationErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, DuplicateKeyErr},
		{"mysql other", &mysql.MySQLError{Number: 1064}, true, UnknownErr},
		{"pgconn fk", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, true, ForeignKeyViolationErr},
		{"pgconn undefined table", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, true, NoTableErr},
		{"pq fk", &pq.Error{Code: "23503"}, true, ForeignKeyViolationErr},
		{"pq not null", &pq.Error{Code: "23502"}, true, NotNullViolationErr},
		{"wrapped pq", fmt.Errorf("exec: %w", &pq.Error{Code: "23505"}), true, DuplicateKeyErr},
		{"sqlite fk", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), true, ForeignKeyViolationErr},
		{"sqlite missing table", errors.New("SQL logic error: no such table: seller (1)"), true, NoTableErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, kind := IsSqlError(tt.err)
			assert.Equal(t, tt.wantIs, is)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestTranslate(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Translate("department.insert", nil))
	})

	t.Run("foreign key becomes integrity error", func(t *testing.T) {
		cause := &mysql.MySQLError{Number: 1451, Message: "a foreign key constraint fails"}
		err := Translate("department.deleteById", cause)

		require.Error(t, err)
		assert.True(t, IsIntegrityError(err))
		assert.False(t, IsDataAccessError(err))
		assert.ErrorIs(t, err, cause)

		var ie *IntegrityError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "department.deleteById", ie.Op)
	})

	t.Run("anything else becomes data access error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Translate("seller.findAll", cause)

		assert.True(t, IsDataAccessError(err))
		assert.False(t, IsIntegrityError(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "seller.findAll: statement failed: connection reset", err.Error())
	})

	t.Run("already translated", func(t *testing.T) {
		first := NewIntegrityError("a", "b", nil)
		assert.Same(t, first, Translate("other", first))

		second := NewDataAccessError("a", "b", nil)
		assert.Same(t, second, Translate("other", second))
	})
}

func TestErrorFormat(t *testing.T) {
	assert.Equal(t, "close connection: cannot close database",
		NewDataAccessError("close connection", "cannot close database", nil).Error())
	assert.Equal(t, "referential integrity violation",
		NewIntegrityError("", "referential integrity violation", nil).Error())

	cause := errors.New("disk full")
	err := wrapf("exec script", cause, "cannot run %s", "seed.sql")
	assert.Equal(t, "exec script: cannot run seed.sql: disk full", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestSQLError_String(t *testing.T) {
	assert.Equal(t, "foreign_key_violation", ForeignKeyViolationErr.String())
	assert.Equal(t, "unknown", UnknownErr.String())
	assert.Equal(t, "unknown", SQLError(99).String())
}

func TestTranslateMsg(t *testing.T) {
	cause := errors.New("commit refused")
	err := TranslateMsg("transaction", "commit failed", cause)
	assert.Equal(t, "transaction: commit failed: commit refused", err.Error())
	assert.True(t, IsDataAccessError(err))

	fk := &pq.Error{Code: "23503"}
	assert.True(t, IsIntegrityError(TranslateMsg("transaction", "commit failed", fk)))
	assert.NoError(t, TranslateMsg("transaction", "commit failed", nil))
}
