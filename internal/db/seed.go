package db

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JPauldo/dept-builder/internal/models"
)

//go:embed seeds.yaml
var defaultSeed []byte

// Seed is the on-disk seed format. Roles reference departments by name;
// employees reference roles by title and managers by "First Last".
type Seed struct {
	Departments []SeedDepartment `yaml:"departments"`
	Roles       []SeedRole       `yaml:"roles"`
	Employees   []SeedEmployee   `yaml:"employees"`
}

type SeedDepartment struct {
	Name string `yaml:"name"`
}

type SeedRole struct {
	Title      string          `yaml:"title"`
	Salary     decimal.Decimal `yaml:"salary"`
	Department string          `yaml:"department"`
}

type SeedEmployee struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
	Manager   string `yaml:"manager"`
}

func DefaultSeed() (Seed, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

func LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return seed, nil
}

// ApplySeed inserts the seed in one transaction. Employees are inserted in
// file order, so a manager must appear before the employees reporting to it.
func ApplySeed(ctx context.Context, database *gorm.DB, seed Seed) error {
	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		departmentIDs := make(map[string]uint, len(seed.Departments))
		for _, d := range seed.Departments {
			department := models.Department{Name: d.Name}
			if err := tx.Omit(clause.Associations).Create(&department).Error; err != nil {
				return fmt.Errorf("seed department %q: %w", d.Name, err)
			}
			departmentIDs[d.Name] = department.ID
		}

		roleIDs := make(map[string]uint, len(seed.Roles))
		for _, r := range seed.Roles {
			departmentID, ok := departmentIDs[r.Department]
			if !ok {
				return fmt.Errorf("seed role %q: unknown department %q", r.Title, r.Department)
			}
			role := models.Role{Title: r.Title, Salary: r.Salary, DepartmentID: departmentID}
			if err := tx.Omit(clause.Associations).Create(&role).Error; err != nil {
				return fmt.Errorf("seed role %q: %w", r.Title, err)
			}
			roleIDs[r.Title] = role.ID
		}

		employeeIDs := make(map[string]uint, len(seed.Employees))
		for _, e := range seed.Employees {
			fullName := e.FirstName + " " + e.LastName
			roleID, ok := roleIDs[e.Role]
			if !ok {
				return fmt.Errorf("seed employee %q: unknown role %q", fullName, e.Role)
			}

			employee := models.Employee{FirstName: e.FirstName, LastName: e.LastName, RoleID: roleID}
			if e.Manager != "" {
				managerID, ok := employeeIDs[e.Manager]
				if !ok {
					return fmt.Errorf("seed employee %q: unknown manager %q", fullName, e.Manager)
				}
				employee.ManagerID = &managerID
			}
			if err := tx.Omit(clause.Associations).Create(&employee).Error; err != nil {
				return fmt.Errorf("seed employee %q: %w", fullName, err)
			}
			employeeIDs[fullName] = employee.ID
		}

		return nil
	})
}
