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

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/salesdb/database"
	"github.com/tomoncle/salesdb/entity"
	"github.com/tomoncle/salesdb/internal/dbtest"
	"github.com/tomoncle/salesdb/repository"
)

func setupDepartmentTest(t *testing.T) (context.Context, repository.DepartmentRepository) {
	t.Helper()
	_, db := dbtest.OpenSeeded(t)
	return context.Background(), repository.NewDepartmentRepository(db)
}

func TestDepartmentRepository_Insert(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	dept := entity.NewDepartment("Sport")
	require.NoError(t, repo.Insert(ctx, dept))
	assert.Greater(t, dept.ID, int64(0))

	found, err := repo.FindByID(ctx, dept.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, dept.ID, found.ID)
	assert.Equal(t, "Sport", found.Name)
	assert.NotSame(t, dept, found)
}

func TestDepartmentRepository_InsertAssignsDistinctIDs(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	a := entity.NewDepartment("Garden")
	b := entity.NewDepartment("Garden")
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDepartmentRepository_FindByID_NotFound(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	found, err := repo.FindByID(ctx, 1000)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDepartmentRepository_FindAll(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	list, err := repo.FindAll(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(list))
	for _, d := range list {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Books", "Computers", "Electronics", "Fashion"}, names)
}

func TestDepartmentRepository_FindAll_Empty(t *testing.T) {
	_, db := dbtest.Open(t)
	repo := repository.NewDepartmentRepository(db)

	list, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDepartmentRepository_Update(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	dept, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, dept)

	dept.Name = "FASHION"
	require.NoError(t, repo.Update(ctx, dept))

	found, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "FASHION", found.Name)

	require.NoError(t, repo.Update(ctx, dept), "writing unchanged values still matches the row")
}

func TestDepartmentRepository_Update_NotFound(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	err := repo.Update(ctx, &entity.Department{ID: 1000, Name: "Ghost"})
	require.Error(t, err)
	assert.True(t, database.IsDataAccessError(err))
	assert.ErrorIs(t, err, repository.ErrNoRowsAffected)

	list, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestDepartmentRepository_DeleteByID(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	require.NoError(t, repo.DeleteByID(ctx, 3))

	found, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDepartmentRepository_DeleteByID_NotFoundIsNoop(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	require.NoError(t, repo.DeleteByID(ctx, 1000))
	require.NoError(t, repo.DeleteByID(ctx, 1000))

	list, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestDepartmentRepository_DeleteByID_Referenced(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	err := repo.DeleteByID(ctx, 1)
	require.Error(t, err)
	assert.True(t, database.IsIntegrityError(err))
	assert.False(t, database.IsDataAccessError(err))

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestDepartmentRepository_SportLifecycle(t *testing.T) {
	ctx, repo := setupDepartmentTest(t)

	sport := entity.NewDepartment("Sport")
	require.NoError(t, repo.Insert(ctx, sport))
	id := sport.ID

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, sport.SameRow(found))
	assert.Equal(t, "Sport", found.Name)

	require.NoError(t, repo.DeleteByID(ctx, id))
	assert.Equal(t, id, sport.ID, "delete keeps the in-memory id")

	found, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDepartmentRepository_ClosedConnection(t *testing.T) {
	p, db := dbtest.OpenSeeded(t)
	repo := repository.NewDepartmentRepository(db)
	require.NoError(t, p.Close())

	_, err := repo.FindAll(context.Background())
	require.Error(t, err)
	assert.True(t, database.IsDataAccessError(err))
}
