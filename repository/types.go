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
)

// CrudRepository is the capability set shared by all repositories.
//
// FindByID returns (nil, nil) when no row matches. Update fails when no row
// has the entity id, DeleteByID does not.
type CrudRepository[T any] interface {
	// Insert persists a new entity and writes the generated id back into it.
	Insert(ctx context.Context, model *T) error

	// Update writes every column of a persisted entity.
	Update(ctx context.Context, model *T) error

	// DeleteByID removes the row with id, if any.
	DeleteByID(ctx context.Context, id int64) error

	// FindByID loads a fresh entity from the row with id.
	FindByID(ctx context.Context, id int64) (*T, error)

	// FindAll returns every entity ordered by name.
	FindAll(ctx context.Context) ([]*T, error)
}

// DepartmentRepository reads and writes departments.
type DepartmentRepository interface {
	CrudRepository[entity.Department]
}

// SellerRepository reads and writes sellers together with their department.
type SellerRepository interface {
	CrudRepository[entity.Seller]

	// FindByDepartment returns the sellers of dept ordered by name.
	FindByDepartment(ctx context.Context, dept *entity.Department) ([]*entity.Seller, error)
}
