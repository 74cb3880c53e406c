package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JPauldo/dept-builder/internal/apperror"
	"github.com/JPauldo/dept-builder/internal/filter"
)

const (
	departmentsQuery = `SELECT id,
       name
  FROM department
 ORDER BY id`

	rolesQuery = `SELECT R.id AS role_id,
       D.id AS department_id,
       R.title,
       D.name AS department_name,
       R.salary
  FROM role R
  JOIN department D
    ON R.department_id = D.id
 ORDER BY D.id, R.salary DESC, R.id`

	employeesQuery = `SELECT E.id AS employee_id,
       R.id AS role_id,
       D.id AS department_id,
       M.id AS manager_id,
       E.first_name,
       E.last_name,
       R.title AS role,
       R.salary AS income,
       D.name AS department,
       M.first_name AS manager_first_name,
       M.last_name AS manager_last_name
  FROM employee E
  JOIN role R
    ON E.role_id = R.id
  JOIN department D
    ON R.department_id = D.id
  LEFT JOIN employee M
    ON E.manager_id = M.id
 ORDER BY D.id, R.salary DESC, E.id`
)

// roleRow and employeeRow are the unfiltered projections. They keep the
// foreign-key ids the filter needs; the exported views drop them.
type roleRow struct {
	RoleID         uint
	DepartmentID   uint
	Title          string
	DepartmentName string
	Salary         decimal.Decimal
}

func (r roleRow) Key(d filter.Dimension) (*uint, bool) {
	switch d {
	case filter.Role:
		return &r.RoleID, true
	case filter.Department:
		return &r.DepartmentID, true
	}
	return nil, false
}

type employeeRow struct {
	EmployeeID       uint
	RoleID           uint
	DepartmentID     uint
	ManagerID        *uint
	FirstName        string
	LastName         string
	Role             string
	Income           decimal.Decimal
	Department       string
	ManagerFirstName *string
	ManagerLastName  *string
}

func (r employeeRow) Key(d filter.Dimension) (*uint, bool) {
	switch d {
	case filter.Manager:
		return r.ManagerID, true
	case filter.Department:
		return &r.DepartmentID, true
	case filter.Role:
		return &r.RoleID, true
	case filter.Employee:
		return &r.EmployeeID, true
	}
	return nil, false
}

func (r employeeRow) name() string {
	return r.FirstName + " " + r.LastName
}

func (r employeeRow) managerName() *string {
	if r.ManagerID == nil || r.ManagerFirstName == nil || r.ManagerLastName == nil {
		return nil
	}
	name := *r.ManagerFirstName + " " + *r.ManagerLastName
	return &name
}

type ViewService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewViewService(db *gorm.DB, logger *zap.Logger) *ViewService {
	return &ViewService{db: db, logger: logger}
}

func (s *ViewService) Departments(ctx context.Context) ([]DepartmentView, error) {
	var departments []DepartmentView
	if err := s.db.WithContext(ctx).Raw(departmentsQuery).Scan(&departments).Error; err != nil {
		return []DepartmentView{}, s.queryFailure("departments", err)
	}
	if departments == nil {
		departments = []DepartmentView{}
	}
	return departments, nil
}

func (s *ViewService) Roles(ctx context.Context, scope ...filter.Criterion) ([]RoleView, error) {
	rows, err := s.roleRows(ctx, scope)
	if err != nil {
		return []RoleView{}, err
	}

	roles := make([]RoleView, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, RoleView{
			RoleID:         row.RoleID,
			Title:          row.Title,
			DepartmentName: row.DepartmentName,
			Salary:         formatSalary(row.Salary),
		})
	}
	return roles, nil
}

func (s *ViewService) Employees(ctx context.Context, scope ...filter.Criterion) ([]EmployeeView, error) {
	rows, err := s.employeeRows(ctx, scope)
	if err != nil {
		return []EmployeeView{}, err
	}

	employees := make([]EmployeeView, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, EmployeeView{
			EmployeeID:   row.EmployeeID,
			EmployeeName: row.name(),
			Role:         row.Role,
			Income:       formatSalary(row.Income),
			Department:   row.Department,
			ManagerName:  row.managerName(),
		})
	}
	return employees, nil
}

// ManagersByDepartment lists the department's root-level employees, the
// ones without a manager of their own.
func (s *ViewService) ManagersByDepartment(ctx context.Context, departmentID uint) ([]ManagerChoice, error) {
	rows, err := s.employeeRows(ctx, []filter.Criterion{filter.Unmanaged(), filter.ByDepartment(departmentID)})
	if err != nil {
		return []ManagerChoice{}, err
	}

	managers := make([]ManagerChoice, 0, len(rows))
	for _, row := range rows {
		managers = append(managers, ManagerChoice{ManagerID: row.EmployeeID, ManagerName: row.name()})
	}
	return managers, nil
}

func (s *ViewService) RolesByDepartment(ctx context.Context, departmentID uint) ([]RoleChoice, error) {
	rows, err := s.roleRows(ctx, []filter.Criterion{filter.ByDepartment(departmentID)})
	if err != nil {
		return []RoleChoice{}, err
	}

	roles := make([]RoleChoice, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, RoleChoice{RoleID: row.RoleID, RoleName: row.Title})
	}
	return roles, nil
}

func (s *ViewService) roleRows(ctx context.Context, scope []filter.Criterion) ([]roleRow, error) {
	var rows []roleRow
	if err := s.db.WithContext(ctx).Raw(rolesQuery).Scan(&rows).Error; err != nil {
		return nil, s.queryFailure("roles", err)
	}
	return applyScope(s.logger, "roles", rows, scope)
}

func (s *ViewService) employeeRows(ctx context.Context, scope []filter.Criterion) ([]employeeRow, error) {
	var rows []employeeRow
	if err := s.db.WithContext(ctx).Raw(employeesQuery).Scan(&rows).Error; err != nil {
		return nil, s.queryFailure("employees", err)
	}
	return applyScope(s.logger, "employees", rows, scope)
}

func applyScope[T filter.Keyed](logger *zap.Logger, view string, rows []T, scope []filter.Criterion) ([]T, error) {
	filtered, err := filter.Apply(rows, scope)
	if err != nil {
		logger.Error("filter view", zap.String("view", view), zap.Stringers("scope", scope), zap.Error(err))
		return nil, fmt.Errorf("filter %s: %w", view, err)
	}
	return filtered, nil
}

func (s *ViewService) queryFailure(view string, err error) error {
	s.logger.Error("view query failed", zap.String("view", view), zap.Error(err))
	return apperror.Wrap(apperror.CodeQueryFailure, fmt.Sprintf("load %s", view), err)
}
