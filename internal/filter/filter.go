// Package filter narrows denormalized view rows by foreign-key criteria.
package filter

import (
	"errors"
	"fmt"

	"github.com/JPauldo/dept-builder/internal/apperror"
)

type Dimension string

const (
	Manager    Dimension = "Manager"
	Department Dimension = "Department"
	Role       Dimension = "Role"
	Employee   Dimension = "Employee"
)

var ErrUnknownDimension = errors.New("unknown filter dimension")

// Criterion selects rows whose key for Dimension equals ID. A nil ID
// selects rows whose key is nil.
type Criterion struct {
	Dimension Dimension
	ID        *uint
}

func (c Criterion) String() string {
	if c.ID == nil {
		return fmt.Sprintf("%s=null", c.Dimension)
	}
	return fmt.Sprintf("%s=%d", c.Dimension, *c.ID)
}

func ByManager(id uint) Criterion    { return Criterion{Dimension: Manager, ID: &id} }
func ByDepartment(id uint) Criterion { return Criterion{Dimension: Department, ID: &id} }
func ByRole(id uint) Criterion       { return Criterion{Dimension: Role, ID: &id} }
func ByEmployee(id uint) Criterion   { return Criterion{Dimension: Employee, ID: &id} }

// Unmanaged selects root-level employees, those without a manager.
func Unmanaged() Criterion { return Criterion{Dimension: Manager} }

// Keyed is implemented by rows that can be filtered. ok is false when the
// row type does not carry the dimension at all.
type Keyed interface {
	Key(d Dimension) (id *uint, ok bool)
}

// Apply narrows rows by each criterion in turn. Criteria compose
// conjunctively, so their order does not change the result. Neither rows
// nor criteria are modified.
func Apply[T Keyed](rows []T, criteria []Criterion) ([]T, error) {
	result := rows
	for _, c := range criteria {
		narrowed, err := narrow(result, c)
		if err != nil {
			return nil, err
		}
		result = narrowed
	}
	return result, nil
}

func narrow[T Keyed](rows []T, c Criterion) ([]T, error) {
	switch c.Dimension {
	case Manager, Department, Role, Employee:
	default:
		return nil, apperror.Wrap(apperror.CodeValidation, fmt.Sprintf("filter by %q", c.Dimension), ErrUnknownDimension)
	}

	filtered := make([]T, 0, len(rows))
	for _, row := range rows {
		key, ok := row.Key(c.Dimension)
		if !ok {
			return nil, apperror.Wrap(apperror.CodeValidation, fmt.Sprintf("rows have no %s key", c.Dimension), ErrUnknownDimension)
		}
		if equalID(key, c.ID) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

func equalID(a *uint, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
