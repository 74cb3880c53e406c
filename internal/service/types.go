package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JPauldo/dept-builder/internal/filter"
)

type AddDepartmentInput struct {
	Name string
}

type AddRoleInput struct {
	Title        string
	Salary       decimal.Decimal
	DepartmentID uint
}

// AddEmployeeInput.ManagerID set to nil or zero stores no manager.
type AddEmployeeInput struct {
	FirstName string
	LastName  string
	RoleID    uint
	ManagerID *uint
}

type UpdateEmployeeRoleInput struct {
	EmployeeID uint
	RoleID     uint
}

type DepartmentView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type RoleView struct {
	RoleID         uint   `json:"role_id"`
	Title          string `json:"title"`
	DepartmentName string `json:"department_name"`
	Salary         string `json:"salary"`
}

type EmployeeView struct {
	EmployeeID   uint    `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Role         string  `json:"role"`
	Income       string  `json:"income"`
	Department   string  `json:"department"`
	ManagerName  *string `json:"manager_name"`
}

type ManagerChoice struct {
	ManagerID   uint   `json:"manager_id"`
	ManagerName string `json:"manager_name"`
}

type RoleChoice struct {
	RoleID   uint   `json:"role_id"`
	RoleName string `json:"role_name"`
}

type Viewer interface {
	Departments(ctx context.Context) ([]DepartmentView, error)
	Roles(ctx context.Context, scope ...filter.Criterion) ([]RoleView, error)
	Employees(ctx context.Context, scope ...filter.Criterion) ([]EmployeeView, error)
	ManagersByDepartment(ctx context.Context, departmentID uint) ([]ManagerChoice, error)
	RolesByDepartment(ctx context.Context, departmentID uint) ([]RoleChoice, error)
}

// Mutator applies a change and returns the affected view as it reads
// afterwards. The rows are returned even when the change itself failed.
type Mutator interface {
	AddDepartment(ctx context.Context, input AddDepartmentInput) ([]DepartmentView, error)
	AddRole(ctx context.Context, input AddRoleInput) ([]RoleView, error)
	AddEmployee(ctx context.Context, input AddEmployeeInput) ([]EmployeeView, error)
	UpdateEmployeeRole(ctx context.Context, input UpdateEmployeeRoleInput) ([]EmployeeView, error)
}
