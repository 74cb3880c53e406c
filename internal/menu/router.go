// Package menu drives the interactive main menu and its add/update flows.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JPauldo/dept-builder/internal/apperror"
	"github.com/JPauldo/dept-builder/internal/prompt"
	"github.com/JPauldo/dept-builder/internal/render"
	"github.com/JPauldo/dept-builder/internal/service"
)

type State int

const (
	StateMain State = iota
	StateAddDepartment
	StateAddRole
	StateAddEmployee
	StateUpdateEmployeeRole
	StateExit
)

func (s State) String() string {
	switch s {
	case StateMain:
		return "main"
	case StateAddDepartment:
		return "add_department"
	case StateAddRole:
		return "add_role"
	case StateAddEmployee:
		return "add_employee"
	case StateUpdateEmployeeRole:
		return "update_employee_role"
	case StateExit:
		return "exit"
	}
	return "unknown"
}

// Main menu values. The prefix selects the branch: view, add, upd.
const (
	ActionViewDepartments    = "viewDept"
	ActionViewRoles          = "viewRole"
	ActionViewEmployees      = "viewEmp"
	ActionAddDepartment      = "addDept"
	ActionAddRole            = "addRole"
	ActionAddEmployee        = "addEmp"
	ActionUpdateEmployeeRole = "updEmpRole"
	ActionExit               = "Exit"
)

// Question keys used across the flows.
const (
	KeyMain       = "main"
	KeyDeptName   = "deptName"
	KeyTitle      = "title"
	KeySalary     = "salary"
	KeyDepartment = "deptId"
	KeyFirstName  = "firstName"
	KeyLastName   = "lastName"
	KeyRole       = "roleId"
	KeyManager    = "managerId"
	KeyEmployee   = "empId"
)

var mainQuestion = prompt.Question{
	Kind:  prompt.KindList,
	Key:   KeyMain,
	Label: "What would you like to do?",
	Choices: []prompt.Choice{
		{Label: "View All Departments", Value: ActionViewDepartments},
		{Label: "View All Roles", Value: ActionViewRoles},
		{Label: "View All Employees", Value: ActionViewEmployees},
		{Label: "Add a Department", Value: ActionAddDepartment},
		{Label: "Add a Role", Value: ActionAddRole},
		{Label: "Add an Employee", Value: ActionAddEmployee},
		{Label: "Update an Employee Role", Value: ActionUpdateEmployeeRole},
		{Label: "Exit", Value: ActionExit},
	},
}

type Router struct {
	views     service.Viewer
	mutations service.Mutator
	prompter  prompt.Prompter
	printer   *render.Printer
	logger    *zap.Logger
}

func NewRouter(views service.Viewer, mutations service.Mutator, prompter prompt.Prompter, printer *render.Printer, logger *zap.Logger) *Router {
	return &Router{
		views:     views,
		mutations: mutations,
		prompter:  prompter,
		printer:   printer,
		logger:    logger,
	}
}

// Run loops over the menu until the user exits. Service failures never end
// the loop; only prompt I/O errors are returned.
func (r *Router) Run(ctx context.Context) error {
	state := StateMain
	for state != StateExit {
		next, err := r.Step(ctx, state)
		if errors.Is(err, prompt.ErrAborted) {
			next, err = StateExit, nil
		}
		if err != nil {
			return err
		}
		r.logger.Debug("menu transition", zap.Stringer("from", state), zap.Stringer("to", next))
		state = next
	}

	return r.printer.Notice("Exiting...")
}

// Step runs one state and returns the next.
func (r *Router) Step(ctx context.Context, state State) (State, error) {
	switch state {
	case StateMain:
		return r.main(ctx)
	case StateAddDepartment:
		return StateMain, r.addDepartment(ctx)
	case StateAddRole:
		return StateMain, r.addRole(ctx)
	case StateAddEmployee:
		return StateMain, r.addEmployee(ctx)
	case StateUpdateEmployeeRole:
		return StateMain, r.updateEmployeeRole(ctx)
	case StateExit:
		return StateExit, nil
	}
	return StateExit, fmt.Errorf("unknown menu state %d", state)
}

func (r *Router) main(ctx context.Context) (State, error) {
	answers, err := r.prompter.Ask(ctx, mainQuestion)
	if err != nil {
		return StateExit, err
	}

	action := answers[KeyMain]
	switch {
	case strings.HasPrefix(action, "view"):
		return StateMain, r.showView(ctx, action)
	case action == ActionAddDepartment:
		return StateAddDepartment, nil
	case action == ActionAddRole:
		return StateAddRole, nil
	case action == ActionAddEmployee:
		return StateAddEmployee, nil
	case action == ActionUpdateEmployeeRole:
		return StateUpdateEmployeeRole, nil
	case action == ActionExit:
		return StateExit, nil
	}

	r.logger.Warn("unknown menu action", zap.String("action", action))
	return StateMain, nil
}

func (r *Router) showView(ctx context.Context, action string) error {
	switch action {
	case ActionViewDepartments:
		departments, err := r.views.Departments(ctx)
		r.reportFailure(action, err)
		return r.printer.Print(render.Departments(departments))
	case ActionViewRoles:
		roles, err := r.views.Roles(ctx)
		r.reportFailure(action, err)
		return r.printer.Print(render.Roles(roles))
	case ActionViewEmployees:
		employees, err := r.views.Employees(ctx)
		r.reportFailure(action, err)
		return r.printer.Print(render.Employees(employees))
	}

	r.logger.Warn("unknown view", zap.String("action", action))
	return nil
}

func (r *Router) addDepartment(ctx context.Context) error {
	answers, err := r.prompter.Ask(ctx, prompt.Question{
		Kind:     prompt.KindInput,
		Key:      KeyDeptName,
		Label:    "What is the name of the department?",
		Validate: prompt.Required("department name"),
	})
	if err != nil {
		return err
	}

	departments, err := r.mutations.AddDepartment(ctx, service.AddDepartmentInput{Name: answers[KeyDeptName]})
	r.reportFailure(ActionAddDepartment, err)
	return r.printer.Print(render.Departments(departments))
}

func (r *Router) addRole(ctx context.Context) error {
	departments, err := r.views.Departments(ctx)
	r.reportFailure(ActionAddRole, err)
	if len(departments) == 0 {
		return r.printer.Notice("Add a department before adding roles.")
	}

	answers, err := r.prompter.Ask(ctx,
		prompt.Question{
			Kind:     prompt.KindInput,
			Key:      KeyTitle,
			Label:    "What is the title of the role?",
			Validate: prompt.Required("title"),
		},
		prompt.Question{
			Kind:     prompt.KindInput,
			Key:      KeySalary,
			Label:    "What is the salary of the role?",
			Validate: validateSalary,
		},
		prompt.Question{
			Kind:    prompt.KindList,
			Key:     KeyDepartment,
			Label:   "Which department does the role belong to?",
			Choices: departmentChoices(departments),
		},
	)
	if err != nil {
		return err
	}

	salary, err := decimal.NewFromString(answers[KeySalary])
	if err != nil {
		return fmt.Errorf("parse salary: %w", err)
	}
	departmentID, err := parseID(answers[KeyDepartment])
	if err != nil {
		return err
	}

	roles, err := r.mutations.AddRole(ctx, service.AddRoleInput{
		Title:        answers[KeyTitle],
		Salary:       salary,
		DepartmentID: departmentID,
	})
	r.reportFailure(ActionAddRole, err)
	return r.printer.Print(render.Roles(roles))
}

// addEmployee asks in two rounds: the role and manager choices depend on the
// department picked in the first round.
func (r *Router) addEmployee(ctx context.Context) error {
	departments, err := r.views.Departments(ctx)
	r.reportFailure(ActionAddEmployee, err)
	if len(departments) == 0 {
		return r.printer.Notice("Add a department before adding employees.")
	}

	first, err := r.prompter.Ask(ctx,
		prompt.Question{
			Kind:     prompt.KindInput,
			Key:      KeyFirstName,
			Label:    "What is the employee's first name?",
			Validate: prompt.Required("first name"),
		},
		prompt.Question{
			Kind:     prompt.KindInput,
			Key:      KeyLastName,
			Label:    "What is the employee's last name?",
			Validate: prompt.Required("last name"),
		},
		prompt.Question{
			Kind:    prompt.KindList,
			Key:     KeyDepartment,
			Label:   "Which department will the employee work in?",
			Choices: departmentChoices(departments),
		},
	)
	if err != nil {
		return err
	}

	departmentID, err := parseID(first[KeyDepartment])
	if err != nil {
		return err
	}

	roles, err := r.views.RolesByDepartment(ctx, departmentID)
	r.reportFailure(ActionAddEmployee, err)
	if len(roles) == 0 {
		return r.printer.Notice("The chosen department has no roles; add a role first.")
	}

	managers, err := r.views.ManagersByDepartment(ctx, departmentID)
	r.reportFailure(ActionAddEmployee, err)

	second, err := r.prompter.Ask(ctx,
		prompt.Question{
			Kind:    prompt.KindList,
			Key:     KeyRole,
			Label:   "What is the employee's role?",
			Choices: roleChoices(roles),
		},
		prompt.Question{
			Kind:    prompt.KindList,
			Key:     KeyManager,
			Label:   "Who is the employee's manager?",
			Choices: managerChoices(managers),
			Visible: func(prompt.Answers) bool { return len(managers) > 0 },
		},
	)
	if err != nil {
		return err
	}

	roleID, err := parseID(second[KeyRole])
	if err != nil {
		return err
	}

	input := service.AddEmployeeInput{
		FirstName: first[KeyFirstName],
		LastName:  first[KeyLastName],
		RoleID:    roleID,
	}
	if raw := second[KeyManager]; raw != "" {
		managerID, err := parseID(raw)
		if err != nil {
			return err
		}
		input.ManagerID = &managerID
	}

	employees, err := r.mutations.AddEmployee(ctx, input)
	r.reportFailure(ActionAddEmployee, err)
	return r.printer.Print(render.Employees(employees))
}

func (r *Router) updateEmployeeRole(ctx context.Context) error {
	employees, err := r.views.Employees(ctx)
	r.reportFailure(ActionUpdateEmployeeRole, err)
	roles, err := r.views.Roles(ctx)
	r.reportFailure(ActionUpdateEmployeeRole, err)
	if len(employees) == 0 || len(roles) == 0 {
		return r.printer.Notice("There are no employees or roles to update.")
	}

	answers, err := r.prompter.Ask(ctx,
		prompt.Question{
			Kind:    prompt.KindList,
			Key:     KeyEmployee,
			Label:   "Which employee's role do you want to update?",
			Choices: employeeChoices(employees),
		},
		prompt.Question{
			Kind:    prompt.KindList,
			Key:     KeyRole,
			Label:   "Which role do you want to assign the selected employee?",
			Choices: allRoleChoices(roles),
		},
	)
	if err != nil {
		return err
	}

	employeeID, err := parseID(answers[KeyEmployee])
	if err != nil {
		return err
	}
	roleID, err := parseID(answers[KeyRole])
	if err != nil {
		return err
	}

	updated, err := r.mutations.UpdateEmployeeRole(ctx, service.UpdateEmployeeRoleInput{
		EmployeeID: employeeID,
		RoleID:     roleID,
	})
	r.reportFailure(ActionUpdateEmployeeRole, err)
	return r.printer.Print(render.Employees(updated))
}

// reportFailure logs a service error. The user only sees whatever rows came
// back, possibly none.
func (r *Router) reportFailure(action string, err error) {
	if err == nil {
		return
	}
	r.logger.Error("menu action failed",
		zap.String("action", action),
		zap.String("code", string(apperror.GetCode(err))),
		zap.Error(err),
	)
}

func validateSalary(value string) error {
	salary, err := decimal.NewFromString(value)
	if err != nil {
		return errors.New("salary must be a number")
	}
	if salary.IsNegative() {
		return errors.New("salary must not be negative")
	}
	return nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
