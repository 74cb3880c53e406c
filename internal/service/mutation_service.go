package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JPauldo/dept-builder/internal/apperror"
	"github.com/JPauldo/dept-builder/internal/filter"
	"github.com/JPauldo/dept-builder/internal/models"
)

// MutationService applies inserts and the employee role update. Failures are
// logged and returned, but never stop the affected view from being re-read.
type MutationService struct {
	db     *gorm.DB
	views  Viewer
	logger *zap.Logger
}

func NewMutationService(db *gorm.DB, views Viewer, logger *zap.Logger) *MutationService {
	return &MutationService{
		db:     db,
		views:  views,
		logger: logger,
	}
}

func (s *MutationService) AddDepartment(ctx context.Context, input AddDepartmentInput) ([]DepartmentView, error) {
	department := models.Department{Name: input.Name}

	mutationErr := s.create(ctx, "department", &department)
	if mutationErr == nil {
		s.logger.Info("department added", zap.Uint("id", department.ID), zap.String("name", department.Name))
	}

	departments, viewErr := s.views.Departments(ctx)
	return departments, errors.Join(mutationErr, viewErr)
}

func (s *MutationService) AddRole(ctx context.Context, input AddRoleInput) ([]RoleView, error) {
	role := models.Role{
		Title:        input.Title,
		Salary:       input.Salary,
		DepartmentID: input.DepartmentID,
	}

	mutationErr := s.create(ctx, "role", &role)
	if mutationErr == nil {
		s.logger.Info("role added", zap.Uint("id", role.ID), zap.String("title", role.Title), zap.Uint("department_id", role.DepartmentID))
	}

	roles, viewErr := s.views.Roles(ctx)
	return roles, errors.Join(mutationErr, viewErr)
}

func (s *MutationService) AddEmployee(ctx context.Context, input AddEmployeeInput) ([]EmployeeView, error) {
	employee := models.Employee{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		RoleID:    input.RoleID,
	}
	if input.ManagerID != nil && *input.ManagerID != 0 {
		managerID := *input.ManagerID
		employee.ManagerID = &managerID
	}

	mutationErr := s.create(ctx, "employee", &employee)
	if mutationErr == nil {
		s.logger.Info("employee added", zap.Uint("id", employee.ID), zap.Uint("role_id", employee.RoleID), zap.Uintp("manager_id", employee.ManagerID))
	}

	employees, viewErr := s.views.Employees(ctx)
	return employees, errors.Join(mutationErr, viewErr)
}

// UpdateEmployeeRole reassigns the employee's role and returns that
// employee's row from a fresh employee view.
func (s *MutationService) UpdateEmployeeRole(ctx context.Context, input UpdateEmployeeRoleInput) ([]EmployeeView, error) {
	var mutationErr error

	result := s.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", input.EmployeeID).
		Update("role_id", input.RoleID)
	switch {
	case result.Error != nil:
		mutationErr = s.mutationFailure("update employee role", result.Error)
	case result.RowsAffected == 0:
		s.logger.Warn("employee role update matched no rows", zap.Uint("employee_id", input.EmployeeID))
	default:
		s.logger.Info("employee role updated", zap.Uint("employee_id", input.EmployeeID), zap.Uint("role_id", input.RoleID))
	}

	employees, viewErr := s.views.Employees(ctx, filter.ByEmployee(input.EmployeeID))
	return employees, errors.Join(mutationErr, viewErr)
}

func (s *MutationService) create(ctx context.Context, entity string, value any) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error; err != nil {
		return s.mutationFailure("add "+entity, err)
	}
	return nil
}

func (s *MutationService) mutationFailure(action string, err error) error {
	mapped := mapDatabaseError(err)
	s.logger.Error("mutation failed", zap.String("action", action), zap.String("code", string(apperror.GetCode(mapped))), zap.Error(err))
	return fmt.Errorf("%s: %w", action, mapped)
}

func mapDatabaseError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return apperror.Wrap(apperror.CodeConflict, "resource with the same unique attributes already exists", err)
		}
		if pgErr.Code == "23503" {
			return apperror.Wrap(apperror.CodeValidation, "invalid foreign key reference", err)
		}
	}
	return apperror.Wrap(apperror.CodeQueryFailure, "write rejected", err)
}
