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

// Package salesdb builds repositories bound to a database.Provider.
package salesdb

import (
	"context"

	"github.com/tomoncle/salesdb/database"
	"github.com/tomoncle/salesdb/repository"
	"github.com/uptrace/bun"
)

// Repositories groups the repositories that share one handle.
type Repositories struct {
	Departments repository.DepartmentRepository
	Sellers     repository.SellerRepository
}

// NewRepositories binds both repositories to db, which may be a *bun.DB or
// a bun.Tx.
func NewRepositories(db bun.IDB) *Repositories {
	return &Repositories{
		Departments: repository.NewDepartmentRepository(db),
		Sellers:     repository.NewSellerRepository(db),
	}
}

// Open opens p if needed and returns repositories bound to its handle.
func Open(ctx context.Context, p *database.Provider) (*Repositories, error) {
	db, err := open(ctx, p)
	if err != nil {
		return nil, err
	}
	return NewRepositories(db), nil
}

// WithTx returns repositories that run on tx.
func (r *Repositories) WithTx(tx bun.Tx) *Repositories {
	return NewRepositories(tx)
}

// NewDepartmentRepository opens p if needed and returns a department
// repository bound to its handle.
func NewDepartmentRepository(ctx context.Context, p *database.Provider) (repository.DepartmentRepository, error) {
	db, err := open(ctx, p)
	if err != nil {
		return nil, err
	}
	return repository.NewDepartmentRepository(db), nil
}

// NewSellerRepository opens p if needed and returns a seller repository
// bound to its handle.
func NewSellerRepository(ctx context.Context, p *database.Provider) (repository.SellerRepository, error) {
	db, err := open(ctx, p)
	if err != nil {
		return nil, err
	}
	return repository.NewSellerRepository(db), nil
}

func open(ctx context.Context, p *database.Provider) (*bun.DB, error) {
	if p == nil {
		p = database.GetProvider()
	}
	if p == nil {
		return nil, database.NewDataAccessError("open connection", "database not initialized", nil)
	}
	return p.Open(ctx)
}
