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

	"github.com/uptrace/bun"
)

const adjustSalaryQuery = "UPDATE seller SET basesalary = ? WHERE departmentid = ?"

// SalaryAdjustment sets the base salary of every seller in one department.
type SalaryAdjustment struct {
	DepartmentID int64
	BaseSalary   float64
}

// AdjustSalaries applies all adjustments in one transaction. Either every
// department gets its new salary or none does.
func AdjustSalaries(ctx context.Context, db *bun.DB, adjustments ...SalaryAdjustment) ([]int64, error) {
	stmts := make([]Statement, 0, len(adjustments))
	for _, a := range adjustments {
		stmts = append(stmts, NewStatement(adjustSalaryQuery, a.BaseSalary, a.DepartmentID))
	}
	return ExecAtomic(ctx, FromBun(db), stmts...)
}
