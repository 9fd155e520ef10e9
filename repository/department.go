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

	"github.com/tomoncle/salesdb/entity"
	"github.com/uptrace/bun"
)

type departmentRepository struct {
	base crudBase[entity.Department]
}

// NewDepartmentRepository returns a DepartmentRepository over db.
func NewDepartmentRepository(db bun.IDB) DepartmentRepository {
	return &departmentRepository{
		base: newCrudBase[entity.Department](db, "department", "name ASC"),
	}
}

func (r *departmentRepository) Insert(ctx context.Context, dept *entity.Department) error {
	return r.base.insert(ctx, dept)
}

func (r *departmentRepository) Update(ctx context.Context, dept *entity.Department) error {
	return r.base.update(ctx, dept)
}

func (r *departmentRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.base.deleteByID(ctx, id)
}

func (r *departmentRepository) FindByID(ctx context.Context, id int64) (*entity.Department, error) {
	return r.base.findByID(ctx, id)
}

func (r *departmentRepository) FindAll(ctx context.Context) ([]*entity.Department, error) {
	return r.base.findAll(ctx)
}
