package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JPauldo/dept-builder/internal/filter"
	"github.com/JPauldo/dept-builder/internal/render"
	"github.com/JPauldo/dept-builder/internal/service"
)

const (
	viewDepartments = "departments"
	viewRoles       = "roles"
	viewEmployees   = "employees"
)

func newViewCmd(opts *globalOptions) *cobra.Command {
	var (
		departmentID uint
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:       "view departments|roles|employees",
		Short:     "Print one view and exit",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{viewDepartments, viewRoles, viewEmployees},
		RunE: func(cmd *cobra.Command, args []string) error {
			var scope []filter.Criterion
			if cmd.Flags().Changed("department") {
				if args[0] == viewDepartments {
					return errors.New("--department applies to roles and employees only")
				}
				scope = append(scope, filter.ByDepartment(departmentID))
			}

			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			views := service.NewViewService(a.db, a.logger)
			return printView(cmd, views, args[0], scope, asJSON)
		},
	}

	cmd.Flags().UintVar(&departmentID, "department", 0, "Only show rows of this department id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printView(cmd *cobra.Command, views service.Viewer, kind string, scope []filter.Criterion, asJSON bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var (
		rows  any
		table *render.Table
		err   error
	)
	switch kind {
	case viewDepartments:
		var departments []service.DepartmentView
		departments, err = views.Departments(ctx)
		rows, table = departments, render.Departments(departments)
	case viewRoles:
		var roles []service.RoleView
		roles, err = views.Roles(ctx, scope...)
		rows, table = roles, render.Roles(roles)
	case viewEmployees:
		var employees []service.EmployeeView
		employees, err = views.Employees(ctx, scope...)
		rows, table = employees, render.Employees(employees)
	default:
		return fmt.Errorf("unknown view %q", kind)
	}
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, rows)
	}
	return render.NewPrinter(out).Print(table)
}
