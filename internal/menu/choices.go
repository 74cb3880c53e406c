package menu

import (
	"fmt"
	"strconv"

	"github.com/JPauldo/dept-builder/internal/prompt"
	"github.com/JPauldo/dept-builder/internal/service"
)

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func departmentChoices(departments []service.DepartmentView) []prompt.Choice {
	choices := make([]prompt.Choice, 0, len(departments))
	for _, d := range departments {
		choices = append(choices, prompt.Choice{Label: d.Name, Value: id(d.ID)})
	}
	return choices
}

func roleChoices(roles []service.RoleChoice) []prompt.Choice {
	choices := make([]prompt.Choice, 0, len(roles))
	for _, r := range roles {
		choices = append(choices, prompt.Choice{Label: r.RoleName, Value: id(r.RoleID)})
	}
	return choices
}

func allRoleChoices(roles []service.RoleView) []prompt.Choice {
	choices := make([]prompt.Choice, 0, len(roles))
	for _, r := range roles {
		choices = append(choices, prompt.Choice{
			Label: fmt.Sprintf("%s (%s)", r.Title, r.DepartmentName),
			Value: id(r.RoleID),
		})
	}
	return choices
}

// managerChoices offers "None" first so a new root-level manager can be added.
func managerChoices(managers []service.ManagerChoice) []prompt.Choice {
	if len(managers) == 0 {
		return nil
	}
	choices := make([]prompt.Choice, 0, len(managers)+1)
	choices = append(choices, prompt.Choice{Label: "None", Value: ""})
	for _, m := range managers {
		choices = append(choices, prompt.Choice{Label: m.ManagerName, Value: id(m.ManagerID)})
	}
	return choices
}

func employeeChoices(employees []service.EmployeeView) []prompt.Choice {
	choices := make([]prompt.Choice, 0, len(employees))
	for _, e := range employees {
		choices = append(choices, prompt.Choice{Label: e.EmployeeName, Value: id(e.EmployeeID)})
	}
	return choices
}
