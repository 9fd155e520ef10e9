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
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// DataAccessError reports a generic data access failure: connectivity,
// statement execution, commit or rollback, or an unexpected affected-row count.
type DataAccessError struct {
	Op  string
	Msg string
	Err error
}

func (e *DataAccessError) Error() string { return formatError(e.Op, e.Msg, e.Err) }

func (e *DataAccessError) Unwrap() error { return e.Err }

// IntegrityError reports an operation refused by a referential integrity
// constraint, such as deleting a department that still has sellers.
type IntegrityError struct {
	Op  string
	Msg string
	Err error
}

func (e *IntegrityError) Error() string { return formatError(e.Op, e.Msg, e.Err) }

func (e *IntegrityError) Unwrap() error { return e.Err }

func formatError(op, msg string, err error) string {
	var b strings.Builder
	if op != "" {
		b.WriteString(op)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// NewDataAccessError returns a DataAccessError for op.
func NewDataAccessError(op, msg string, cause error) *DataAccessError {
	return &DataAccessError{Op: op, Msg: msg, Err: cause}
}

// NewIntegrityError returns an IntegrityError for op.
func NewIntegrityError(op, msg string, cause error) *IntegrityError {
	return &IntegrityError{Op: op, Msg: msg, Err: cause}
}

// IsDataAccessError reports whether err carries a DataAccessError.
func IsDataAccessError(err error) bool {
	var target *DataAccessError
	return errors.As(err, &target)
}

// IsIntegrityError reports whether err carries an IntegrityError.
func IsIntegrityError(err error) bool {
	var target *IntegrityError
	return errors.As(err, &target)
}

// Translate converts a driver error into one of the two error kinds.
// It returns nil for nil and leaves already translated errors untouched.
func Translate(op string, err error) error {
	return TranslateMsg(op, "statement failed", err)
}

// TranslateMsg is Translate with the message used for a DataAccessError.
func TranslateMsg(op, msg string, err error) error {
	if err == nil {
		return nil
	}
	if IsDataAccessError(err) || IsIntegrityError(err) {
		return err
	}
	if _, kind := IsSqlError(err); kind == ForeignKeyViolationErr {
		return NewIntegrityError(op, "referential integrity violation", err)
	}
	return NewDataAccessError(op, msg, err)
}

type SQLError int

const (
	UnknownErr SQLError = iota
	NoTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
)

func (e SQLError) String() string {
	switch e {
	case NoTableErr:
		return "no_table"
	case DuplicateKeyErr:
		return "duplicate_key"
	case NotNullViolationErr:
		return "not_null_violation"
	case ForeignKeyViolationErr:
		return "foreign_key_violation"
	case CheckConstraintViolationErr:
		return "check_violation"
	case DataTruncatedErr:
		return "data_truncated"
	default:
		return "unknown"
	}
}

// IsSqlError classifies err. The first result is true when the error came
// from a recognised driver or message pattern.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1146:
			return true, NoTableErr
		case 1062:
			return true, DuplicateKeyErr
		case 1048:
			return true, NotNullViolationErr
		case 1216, 1217, 1451, 1452:
			return true, ForeignKeyViolationErr
		case 3819:
			return true, CheckConstraintViolationErr
		case 1265, 1406:
			return true, DataTruncatedErr
		default:
			return true, UnknownErr
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true, classifySQLState(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return true, classifySQLState(string(pqErr.Code))
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "sqlstate 23503"):
		return true, ForeignKeyViolationErr
	case strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "sqlstate 23505"):
		return true, DuplicateKeyErr
	case strings.Contains(s, "not null constraint failed"),
		strings.Contains(s, "sqlstate 23502"):
		return true, NotNullViolationErr
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return true, CheckConstraintViolationErr
	case strings.Contains(s, "no such table"),
		strings.Contains(s, "sqlstate 42p01"):
		return true, NoTableErr
	}
	return false, UnknownErr
}

func classifySQLState(code string) SQLError {
	switch code {
	case pgerrcode.ForeignKeyViolation:
		return ForeignKeyViolationErr
	case pgerrcode.UniqueViolation:
		return DuplicateKeyErr
	case pgerrcode.NotNullViolation:
		return NotNullViolationErr
	case pgerrcode.CheckViolation:
		return CheckConstraintViolationErr
	case pgerrcode.StringDataRightTruncationDataException:
		return DataTruncatedErr
	case pgerrcode.UndefinedTable:
		return NoTableErr
	default:
		return UnknownErr
	}
}

// wrapf is shorthand for the DataAccessError returned by provider code.
func wrapf(op string, err error, format string, args ...interface{}) error {
	return NewDataAccessError(op, fmt.Sprintf(format, args...), err)
}
