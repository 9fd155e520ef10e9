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
	"time"
)

// Seller belongs to exactly one Department. The Department pointer must be
// set before the seller is written.
type Seller struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	BirthDate  time.Time   `json:"birth_date"`
	BaseSalary float64     `json:"base_salary"`
	Department *Department `json:"department"`
}

// NewSeller returns an unsaved seller attached to dept.
func NewSeller(name, email string, birthDate time.Time, baseSalary float64, dept *Department) *Seller {
	return &Seller{
		Name:       name,
		Email:      email,
		BirthDate:  birthDate,
		BaseSalary: baseSalary,
		Department: dept,
	}
}

// IsNew reports whether the store has not assigned an id yet.
func (s *Seller) IsNew() bool {
	return s == nil || s.ID == 0
}

func (s *Seller) String() string {
	if s == nil {
		return "Seller<nil>"
	}
	return fmt.Sprintf("Seller [id=%d, name=%s, email=%s, birthDate=%s, baseSalary=%.2f, department=%v]",
		s.ID, s.Name, s.Email, s.BirthDate.Format(time.RFC3339), s.BaseSalary, s.Department)
}

// ToEpochSeconds converts t to the integer stored in seller.birthdate.
// The millisecond remainder is dropped by truncating toward zero.
func ToEpochSeconds(t time.Time) int64 {
	return t.UnixMilli() / 1000
}

// FromEpochSeconds is the inverse of ToEpochSeconds.
func FromEpochSeconds(sec int64) time.Time {
	return time.Unix(sec, 0)
}

// TruncateBirthDate returns t exactly as it will read back from the store.
func TruncateBirthDate(t time.Time) time.Time {
	return FromEpochSeconds(ToEpochSeconds(t))
}
