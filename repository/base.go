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

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tomoncle/salesdb/database"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

// ErrNoRowsAffected is the cause carried by the DataAccessError returned when
// an insert or update changed nothing.
var ErrNoRowsAffected = errors.New("no rows affected")

// crudBase implements the row level operations for one bun model type.
// db is either a *bun.DB or a bun.Tx.
type crudBase[T any] struct {
	db    bun.IDB
	name  string
	order []string
}

func newCrudBase[T any](db bun.IDB, name string, order ...string) crudBase[T] {
	return crudBase[T]{db: db, name: name, order: order}
}

func (r crudBase[T]) op(action string) string {
	return r.name + "." + action
}

func (r crudBase[T]) insert(ctx context.Context, model *T) error {
	op := r.op("insert")
	query := r.db.NewInsert().Model(model)
	if r.db.Dialect().Features().Has(feature.InsertReturning) {
		query = query.Returning("id")
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return database.Translate(op, err)
	}
	return requireAffected(op, res)
}

func (r crudBase[T]) update(ctx context.Context, model *T) error {
	op := r.op("update")
	res, err := r.db.NewUpdate().Model(model).WherePK().Exec(ctx)
	if err != nil {
		return database.Translate(op, err)
	}
	return requireAffected(op, res)
}

func (r crudBase[T]) deleteByID(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	return database.Translate(r.op("deleteById"), err)
}

func (r crudBase[T]) findByID(ctx context.Context, id int64) (*T, error) {
	var model T
	err := r.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Translate(r.op("findById"), err)
	}
	return &model, nil
}

func (r crudBase[T]) findAll(ctx context.Context) ([]*T, error) {
	models := make([]*T, 0)
	err := r.db.NewSelect().Model(&models).Order(r.order...).Scan(ctx)
	if err != nil {
		return nil, database.Translate(r.op("findAll"), err)
	}
	return models, nil
}

// requireAffected turns a zero affected-row count into a DataAccessError.
func requireAffected(op string, res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return database.Translate(op, err)
	}
	if rows == 0 {
		return database.NewDataAccessError(op, "unexpected result", ErrNoRowsAffected)
	}
	return nil
}
