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
	"github.com/tomoncle/salesdb/entity"
	"github.com/uptrace/bun"
)

// sellerRecord is the seller table row written by Insert and Update.
type sellerRecord struct {
	bun.BaseModel `bun:"table:seller,alias:seller"`

	ID           int64   `bun:"id,pk,autoincrement"`
	Name         string  `bun:"name"`
	Email        string  `bun:"email"`
	BirthDate    int64   `bun:"birthdate"`
	BaseSalary   float64 `bun:"basesalary"`
	DepartmentID int64   `bun:"departmentid"`
}

func newSellerRecord(s *entity.Seller) *sellerRecord {
	return &sellerRecord{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		BirthDate:    entity.ToEpochSeconds(s.BirthDate),
		BaseSalary:   s.BaseSalary,
		DepartmentID: s.Department.ID,
	}
}

// sellerJoinRow is one row of seller joined with its department.
type sellerJoinRow struct {
	ID           int64   `bun:"id"`
	Name         string  `bun:"name"`
	Email        string  `bun:"email"`
	BirthDate    int64   `bun:"birthdate"`
	BaseSalary   float64 `bun:"basesalary"`
	DepartmentID int64   `bun:"departmentid"`
	DepName      string  `bun:"depname"`
}

func (row *sellerJoinRow) department() *entity.Department {
	return &entity.Department{ID: row.DepartmentID, Name: row.DepName}
}

func (row *sellerJoinRow) seller(dept *entity.Department) *entity.Seller {
	return &entity.Seller{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		BirthDate:  entity.FromEpochSeconds(row.BirthDate),
		BaseSalary: row.BaseSalary,
		Department: dept,
	}
}

type sellerRepository struct {
	db   bun.IDB
	base crudBase[sellerRecord]
}

// NewSellerRepository returns a SellerRepository over db.
func NewSellerRepository(db bun.IDB) SellerRepository {
	return &sellerRepository{
		db:   db,
		base: newCrudBase[sellerRecord](db, "seller", "name ASC"),
	}
}

func (r *sellerRepository) Insert(ctx context.Context, s *entity.Seller) error {
	if err := requireDepartment(r.base.op("insert"), s); err != nil {
		return err
	}
	record := newSellerRecord(s)
	if err := r.base.insert(ctx, record); err != nil {
		return err
	}
	s.ID = record.ID
	return nil
}

func (r *sellerRepository) Update(ctx context.Context, s *entity.Seller) error {
	if err := requireDepartment(r.base.op("update"), s); err != nil {
		return err
	}
	return r.base.update(ctx, newSellerRecord(s))
}

func (r *sellerRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.base.deleteByID(ctx, id)
}

func (r *sellerRepository) FindByID(ctx context.Context, id int64) (*entity.Seller, error) {
	var row sellerJoinRow
	err := r.selectJoined().Where("seller.id = ?", id).Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Translate(r.base.op("findById"), err)
	}
	return row.seller(row.department()), nil
}

func (r *sellerRepository) FindAll(ctx context.Context) ([]*entity.Seller, error) {
	rows := make([]sellerJoinRow, 0)
	err := r.selectJoined().OrderExpr("seller.name ASC").Scan(ctx, &rows)
	if err != nil {
		return nil, database.Translate(r.base.op("findAll"), err)
	}
	return materialize(rows), nil
}

func (r *sellerRepository) FindByDepartment(ctx context.Context, dept *entity.Department) ([]*entity.Seller, error) {
	op := r.base.op("findByDepartment")
	if dept.IsNew() {
		return nil, database.NewDataAccessError(op, "department must be persisted", nil)
	}
	rows := make([]sellerJoinRow, 0)
	err := r.selectJoined().
		Where("seller.departmentid = ?", dept.ID).
		OrderExpr("seller.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, database.Translate(op, err)
	}
	return materialize(rows), nil
}

func (r *sellerRepository) selectJoined() *bun.SelectQuery {
	return r.db.NewSelect().
		TableExpr("seller").
		ColumnExpr("seller.id, seller.name, seller.email, seller.birthdate, seller.basesalary, seller.departmentid").
		ColumnExpr("department.name AS depname").
		Join("INNER JOIN department ON seller.departmentid = department.id")
}

// materialize builds sellers in row order. Sellers of the same department
// share one *entity.Department; the lookup map lives for this call only.
func materialize(rows []sellerJoinRow) []*entity.Seller {
	departments := make(map[int64]*entity.Department)
	sellers := make([]*entity.Seller, 0, len(rows))
	for i := range rows {
		dept, ok := departments[rows[i].DepartmentID]
		if !ok {
			dept = rows[i].department()
			departments[dept.ID] = dept
		}
		sellers = append(sellers, rows[i].seller(dept))
	}
	return sellers
}

func requireDepartment(op string, s *entity.Seller) error {
	if s.Department.IsNew() {
		return database.NewDataAccessError(op, "seller department must be persisted", nil)
	}
	return nil
}
