// Package render prints views as terminal tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JPauldo/dept-builder/internal/service"
)

const null = "null"

type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func NewTable(title string, headers ...string) *Table {
	return &Table{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

func (t *Table) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

func Departments(departments []service.DepartmentView) *Table {
	t := NewTable("Departments", "id", "name")
	for _, d := range departments {
		t.AddRow(formatID(d.ID), d.Name)
	}
	return t
}

func Roles(roles []service.RoleView) *Table {
	t := NewTable("Roles", "role_id", "title", "department_name", "salary")
	for _, r := range roles {
		t.AddRow(formatID(r.RoleID), r.Title, r.DepartmentName, r.Salary)
	}
	return t
}

func Employees(employees []service.EmployeeView) *Table {
	t := NewTable("Employees", "employee_id", "employee_name", "role", "income", "department", "manager_name")
	for _, e := range employees {
		manager := null
		if e.ManagerName != nil {
			manager = *e.ManagerName
		}
		t.AddRow(formatID(e.EmployeeID), e.EmployeeName, e.Role, e.Income, e.Department, manager)
	}
	return t
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Muted  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#2a3850")),
	}
}

// View renders the table. An empty table still renders its header row.
func (t *Table) View(styles Styles) string {
	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	// lipgloss widths include the horizontal padding
	for i := range widths {
		widths[i] += 2
	}

	sep := styles.Muted.Render("|")
	writeRow := func(style lipgloss.Style, cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(widths)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	writeRow(styles.Header, t.Headers)

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", max(total, 0))))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		writeRow(styles.Cell, row)
	}
	sb.WriteString("\n")

	return sb.String()
}

type Printer struct {
	w      io.Writer
	styles Styles
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: DefaultStyles()}
}

func (p *Printer) Print(t *Table) error {
	_, err := io.WriteString(p.w, t.View(p.styles))
	return err
}

// Notice prints a one-line message outside any table.
func (p *Printer) Notice(format string, args ...any) error {
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}
