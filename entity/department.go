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

package entity

import (
	"fmt"

	"github.com/uptrace/bun"
)

// Department is a row of the department table. A zero ID means the value
// has never been persisted.
type Department struct {
	bun.BaseModel `bun:"table:department,alias:department"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name" json:"name"`
}

// NewDepartment returns an unsaved department.
func NewDepartment(name string) *Department {
	return &Department{Name: name}
}

// IsNew reports whether the store has not assigned an id yet.
func (d *Department) IsNew() bool {
	return d == nil || d.ID == 0
}

// SameRow reports whether both values identify the same persisted row.
func (d *Department) SameRow(other *Department) bool {
	if d.IsNew() || other.IsNew() {
		return false
	}
	return d.ID == other.ID
}

func (d *Department) String() string {
	if d == nil {
		return "Department<nil>"
	}
	return fmt.Sprintf("Department [id=%d, name=%s]", d.ID, d.Name)
}
