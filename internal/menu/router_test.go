package menu

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/JPauldo/dept-builder/internal/filter"
	"github.com/JPauldo/dept-builder/internal/prompt"
	"github.com/JPauldo/dept-builder/internal/render"
	"github.com/JPauldo/dept-builder/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubViewer struct {
	departmentsFn          func(ctx context.Context) ([]service.DepartmentView, error)
	rolesFn                func(ctx context.Context, scope ...filter.Criterion) ([]service.RoleView, error)
	employeesFn            func(ctx context.Context, scope ...filter.Criterion) ([]service.EmployeeView, error)
	managersByDepartmentFn func(ctx context.Context, departmentID uint) ([]service.ManagerChoice, error)
	rolesByDepartmentFn    func(ctx context.Context, departmentID uint) ([]service.RoleChoice, error)
}

func (s stubViewer) Departments(ctx context.Context) ([]service.DepartmentView, error) {
	if s.departmentsFn == nil {
		return []service.DepartmentView{}, nil
	}
	return s.departmentsFn(ctx)
}

func (s stubViewer) Roles(ctx context.Context, scope ...filter.Criterion) ([]service.RoleView, error) {
	if s.rolesFn == nil {
		return []service.RoleView{}, nil
	}
	return s.rolesFn(ctx, scope...)
}

func (s stubViewer) Employees(ctx context.Context, scope ...filter.Criterion) ([]service.EmployeeView, error) {
	if s.employeesFn == nil {
		return []service.EmployeeView{}, nil
	}
	return s.employeesFn(ctx, scope...)
}

func (s stubViewer) ManagersByDepartment(ctx context.Context, departmentID uint) ([]service.ManagerChoice, error) {
	if s.managersByDepartmentFn == nil {
		return []service.ManagerChoice{}, nil
	}
	return s.managersByDepartmentFn(ctx, departmentID)
}

func (s stubViewer) RolesByDepartment(ctx context.Context, departmentID uint) ([]service.RoleChoice, error) {
	if s.rolesByDepartmentFn == nil {
		return []service.RoleChoice{}, nil
	}
	return s.rolesByDepartmentFn(ctx, departmentID)
}

type stubMutator struct {
	addDepartmentFn      func(ctx context.Context, input service.AddDepartmentInput) ([]service.DepartmentView, error)
	addRoleFn            func(ctx context.Context, input service.AddRoleInput) ([]service.RoleView, error)
	addEmployeeFn        func(ctx context.Context, input service.AddEmployeeInput) ([]service.EmployeeView, error)
	updateEmployeeRoleFn func(ctx context.Context, input service.UpdateEmployeeRoleInput) ([]service.EmployeeView, error)
}

func (s stubMutator) AddDepartment(ctx context.Context, input service.AddDepartmentInput) ([]service.DepartmentView, error) {
	if s.addDepartmentFn == nil {
		return []service.DepartmentView{}, nil
	}
	return s.addDepartmentFn(ctx, input)
}

func (s stubMutator) AddRole(ctx context.Context, input service.AddRoleInput) ([]service.RoleView, error) {
	if s.addRoleFn == nil {
		return []service.RoleView{}, nil
	}
	return s.addRoleFn(ctx, input)
}

func (s stubMutator) AddEmployee(ctx context.Context, input service.AddEmployeeInput) ([]service.EmployeeView, error) {
	if s.addEmployeeFn == nil {
		return []service.EmployeeView{}, nil
	}
	return s.addEmployeeFn(ctx, input)
}

func (s stubMutator) UpdateEmployeeRole(ctx context.Context, input service.UpdateEmployeeRoleInput) ([]service.EmployeeView, error) {
	if s.updateEmployeeRoleFn == nil {
		return []service.EmployeeView{}, nil
	}
	return s.updateEmployeeRoleFn(ctx, input)
}

// scriptedPrompter answers questions from a queue of per-key answers and
// records every question it was shown.
type scriptedPrompter struct {
	t       *testing.T
	answers map[string][]string
	asked   []prompt.Question
}

func newScriptedPrompter(t *testing.T, script ...[2]string) *scriptedPrompter {
	p := &scriptedPrompter{t: t, answers: map[string][]string{}}
	for _, step := range script {
		p.answers[step[0]] = append(p.answers[step[0]], step[1])
	}
	return p
}

func (p *scriptedPrompter) Ask(ctx context.Context, questions ...prompt.Question) (prompt.Answers, error) {
	return prompt.Collect(ctx, func(ctx context.Context, q prompt.Question) (string, error) {
		p.asked = append(p.asked, q)
		queue := p.answers[q.Key]
		if len(queue) == 0 {
			p.t.Fatalf("unexpected question %q", q.Key)
		}
		p.answers[q.Key] = queue[1:]
		if q.Validate != nil {
			if err := q.Validate(queue[0]); err != nil {
				p.t.Fatalf("answer %q rejected for %q: %v", queue[0], q.Key, err)
			}
		}
		return queue[0], nil
	}, questions...)
}

func (p *scriptedPrompter) question(key string) (prompt.Question, bool) {
	for _, q := range p.asked {
		if q.Key == key {
			return q, true
		}
	}
	return prompt.Question{}, false
}

func newTestRouter(views service.Viewer, mutations service.Mutator, p prompt.Prompter) (*Router, *bytes.Buffer) {
	var out bytes.Buffer
	return NewRouter(views, mutations, p, render.NewPrinter(&out), zap.NewNop()), &out
}

func gymDepartments(ctx context.Context) ([]service.DepartmentView, error) {
	return []service.DepartmentView{{ID: 1, Name: "Gym"}, {ID: 2, Name: "Elite Four"}}, nil
}

func TestRunViewThenExit(t *testing.T) {
	p := newScriptedPrompter(t, [2]string{KeyMain, ActionViewDepartments}, [2]string{KeyMain, ActionExit})
	router, out := newTestRouter(stubViewer{departmentsFn: gymDepartments}, stubMutator{}, p)

	require.NoError(t, router.Run(context.Background()))
	require.Contains(t, out.String(), "Elite Four")
	require.Contains(t, out.String(), "Exiting...")
	require.Len(t, p.asked, 2)
}

func TestRunViewFailureShowsEmptyTable(t *testing.T) {
	p := newScriptedPrompter(t, [2]string{KeyMain, ActionViewEmployees}, [2]string{KeyMain, ActionExit})
	views := stubViewer{
		employeesFn: func(ctx context.Context, scope ...filter.Criterion) ([]service.EmployeeView, error) {
			return []service.EmployeeView{}, errors.New("connection refused")
		},
	}
	router, out := newTestRouter(views, stubMutator{}, p)

	require.NoError(t, router.Run(context.Background()))
	require.Contains(t, out.String(), "employee_name")
	require.NotContains(t, out.String(), "connection refused")
}

func TestRunAbortExits(t *testing.T) {
	aborting := promptFunc(func(ctx context.Context, questions ...prompt.Question) (prompt.Answers, error) {
		return nil, prompt.ErrAborted
	})
	router, out := newTestRouter(stubViewer{}, stubMutator{}, aborting)

	require.NoError(t, router.Run(context.Background()))
	require.Contains(t, out.String(), "Exiting...")
}

type promptFunc func(ctx context.Context, questions ...prompt.Question) (prompt.Answers, error)

func (f promptFunc) Ask(ctx context.Context, questions ...prompt.Question) (prompt.Answers, error) {
	return f(ctx, questions...)
}

func TestMainTransitions(t *testing.T) {
	tests := map[string]State{
		ActionAddDepartment:      StateAddDepartment,
		ActionAddRole:            StateAddRole,
		ActionAddEmployee:        StateAddEmployee,
		ActionUpdateEmployeeRole: StateUpdateEmployeeRole,
		ActionExit:               StateExit,
		ActionViewRoles:          StateMain,
	}

	for action, want := range tests {
		t.Run(action, func(t *testing.T) {
			p := newScriptedPrompter(t, [2]string{KeyMain, action})
			router, _ := newTestRouter(stubViewer{}, stubMutator{}, p)

			next, err := router.Step(context.Background(), StateMain)
			require.NoError(t, err)
			require.Equal(t, want, next)
		})
	}
}

func TestAddDepartmentFlow(t *testing.T) {
	var got service.AddDepartmentInput
	mutations := stubMutator{
		addDepartmentFn: func(ctx context.Context, input service.AddDepartmentInput) ([]service.DepartmentView, error) {
			got = input
			return []service.DepartmentView{{ID: 1, Name: "Gym"}, {ID: 2, Name: input.Name}}, nil
		},
	}
	p := newScriptedPrompter(t, [2]string{KeyDeptName, "Safari Zone"})
	router, out := newTestRouter(stubViewer{}, mutations, p)

	next, err := router.Step(context.Background(), StateAddDepartment)
	require.NoError(t, err)
	require.Equal(t, StateMain, next)
	require.Equal(t, "Safari Zone", got.Name)
	require.Contains(t, out.String(), "Safari Zone")
}

func TestAddRoleFlow(t *testing.T) {
	var got service.AddRoleInput
	mutations := stubMutator{
		addRoleFn: func(ctx context.Context, input service.AddRoleInput) ([]service.RoleView, error) {
			got = input
			return []service.RoleView{{RoleID: 1, Title: input.Title, DepartmentName: "Elite Four", Salary: "$95,000.00"}}, nil
		},
	}
	p := newScriptedPrompter(t,
		[2]string{KeyTitle, "Elite Member"},
		[2]string{KeySalary, "95000"},
		[2]string{KeyDepartment, "2"},
	)
	router, out := newTestRouter(stubViewer{departmentsFn: gymDepartments}, mutations, p)

	_, err := router.Step(context.Background(), StateAddRole)
	require.NoError(t, err)
	require.Equal(t, "Elite Member", got.Title)
	require.True(t, decimal.RequireFromString("95000").Equal(got.Salary))
	require.Equal(t, uint(2), got.DepartmentID)
	require.Contains(t, out.String(), "$95,000.00")

	department, ok := p.question(KeyDepartment)
	require.True(t, ok)
	require.Equal(t, []prompt.Choice{{Label: "Gym", Value: "1"}, {Label: "Elite Four", Value: "2"}}, department.Choices)
}

func TestAddEmployeeScopesChoicesToDepartment(t *testing.T) {
	var rolesFor, managersFor uint
	var got service.AddEmployeeInput
	views := stubViewer{
		departmentsFn: gymDepartments,
		rolesByDepartmentFn: func(ctx context.Context, departmentID uint) ([]service.RoleChoice, error) {
			rolesFor = departmentID
			return []service.RoleChoice{{RoleID: 1, RoleName: "Leader"}}, nil
		},
		managersByDepartmentFn: func(ctx context.Context, departmentID uint) ([]service.ManagerChoice, error) {
			managersFor = departmentID
			return []service.ManagerChoice{{ManagerID: 1, ManagerName: "Ash K"}}, nil
		},
	}
	mutations := stubMutator{
		addEmployeeFn: func(ctx context.Context, input service.AddEmployeeInput) ([]service.EmployeeView, error) {
			got = input
			ash := "Ash K"
			return []service.EmployeeView{
				{EmployeeID: 1, EmployeeName: "Ash K", Role: "Leader", Income: "$50,000.00", Department: "Gym"},
				{EmployeeID: 2, EmployeeName: "Misty W", Role: "Leader", Income: "$50,000.00", Department: "Gym", ManagerName: &ash},
			}, nil
		},
	}
	p := newScriptedPrompter(t,
		[2]string{KeyFirstName, "Misty"},
		[2]string{KeyLastName, "W"},
		[2]string{KeyDepartment, "1"},
		[2]string{KeyRole, "1"},
		[2]string{KeyManager, "1"},
	)
	router, out := newTestRouter(views, mutations, p)

	_, err := router.Step(context.Background(), StateAddEmployee)
	require.NoError(t, err)
	require.Equal(t, uint(1), rolesFor)
	require.Equal(t, uint(1), managersFor)
	require.Equal(t, "Misty", got.FirstName)
	require.Equal(t, "W", got.LastName)
	require.Equal(t, uint(1), got.RoleID)
	require.NotNil(t, got.ManagerID)
	require.Equal(t, uint(1), *got.ManagerID)
	require.Contains(t, out.String(), "Misty W")

	manager, ok := p.question(KeyManager)
	require.True(t, ok)
	require.Equal(t, "None", manager.Choices[0].Label)
}

func TestAddEmployeeSkipsManagerPromptWithoutManagers(t *testing.T) {
	var got service.AddEmployeeInput
	views := stubViewer{
		departmentsFn: gymDepartments,
		rolesByDepartmentFn: func(ctx context.Context, departmentID uint) ([]service.RoleChoice, error) {
			return []service.RoleChoice{{RoleID: 3, RoleName: "Champion"}}, nil
		},
	}
	mutations := stubMutator{
		addEmployeeFn: func(ctx context.Context, input service.AddEmployeeInput) ([]service.EmployeeView, error) {
			got = input
			return []service.EmployeeView{}, nil
		},
	}
	p := newScriptedPrompter(t,
		[2]string{KeyFirstName, "Lance"},
		[2]string{KeyLastName, "W"},
		[2]string{KeyDepartment, "2"},
		[2]string{KeyRole, "3"},
	)
	router, _ := newTestRouter(views, mutations, p)

	_, err := router.Step(context.Background(), StateAddEmployee)
	require.NoError(t, err)
	_, asked := p.question(KeyManager)
	require.False(t, asked, "manager prompt must be skipped")
	require.Nil(t, got.ManagerID)
	require.Equal(t, uint(3), got.RoleID)
}

func TestAddEmployeeWithoutRolesReturnsToMain(t *testing.T) {
	called := false
	mutations := stubMutator{
		addEmployeeFn: func(ctx context.Context, input service.AddEmployeeInput) ([]service.EmployeeView, error) {
			called = true
			return nil, nil
		},
	}
	p := newScriptedPrompter(t,
		[2]string{KeyFirstName, "Lance"},
		[2]string{KeyLastName, "W"},
		[2]string{KeyDepartment, "2"},
	)
	router, out := newTestRouter(stubViewer{departmentsFn: gymDepartments}, mutations, p)

	next, err := router.Step(context.Background(), StateAddEmployee)
	require.NoError(t, err)
	require.Equal(t, StateMain, next)
	require.False(t, called)
	require.Contains(t, out.String(), "no roles")
}

func TestUpdateEmployeeRoleFlow(t *testing.T) {
	var got service.UpdateEmployeeRoleInput
	views := stubViewer{
		employeesFn: func(ctx context.Context, scope ...filter.Criterion) ([]service.EmployeeView, error) {
			return []service.EmployeeView{{EmployeeID: 1, EmployeeName: "Ash K"}, {EmployeeID: 2, EmployeeName: "Misty W"}}, nil
		},
		rolesFn: func(ctx context.Context, scope ...filter.Criterion) ([]service.RoleView, error) {
			require.Empty(t, scope, "role choices are not scoped")
			return []service.RoleView{{RoleID: 1, Title: "Leader", DepartmentName: "Gym"}, {RoleID: 2, Title: "Trainer", DepartmentName: "Gym"}}, nil
		},
	}
	mutations := stubMutator{
		updateEmployeeRoleFn: func(ctx context.Context, input service.UpdateEmployeeRoleInput) ([]service.EmployeeView, error) {
			got = input
			return []service.EmployeeView{{EmployeeID: 2, EmployeeName: "Misty W", Role: "Trainer"}}, nil
		},
	}
	p := newScriptedPrompter(t, [2]string{KeyEmployee, "2"}, [2]string{KeyRole, "2"})
	router, out := newTestRouter(views, mutations, p)

	_, err := router.Step(context.Background(), StateUpdateEmployeeRole)
	require.NoError(t, err)
	require.Equal(t, service.UpdateEmployeeRoleInput{EmployeeID: 2, RoleID: 2}, got)
	require.Contains(t, out.String(), "Trainer")

	role, ok := p.question(KeyRole)
	require.True(t, ok)
	require.Equal(t, "Trainer (Gym)", role.Choices[1].Label)
}

func TestMutationFailureStillDisplaysView(t *testing.T) {
	mutations := stubMutator{
		addDepartmentFn: func(ctx context.Context, input service.AddDepartmentInput) ([]service.DepartmentView, error) {
			return []service.DepartmentView{{ID: 1, Name: "Gym"}}, errors.New("insert rejected")
		},
	}
	p := newScriptedPrompter(t, [2]string{KeyDeptName, "Gym"})
	router, out := newTestRouter(stubViewer{}, mutations, p)

	next, err := router.Step(context.Background(), StateAddDepartment)
	require.NoError(t, err)
	require.Equal(t, StateMain, next)
	require.Contains(t, out.String(), "Gym")
}

func TestValidateSalary(t *testing.T) {
	require.NoError(t, validateSalary("50000.25"))
	require.Error(t, validateSalary("lots"))
	require.Error(t, validateSalary("-1"))
}
