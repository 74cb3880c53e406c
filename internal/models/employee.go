package models

// Employee.ManagerID is nil for root-level managers. Chains are allowed but
// not checked for cycles.
type Employee struct {
	ID        uint      `gorm:"primaryKey"`
	FirstName string    `gorm:"type:varchar(30);not null"`
	LastName  string    `gorm:"type:varchar(30);not null"`
	RoleID    uint      `gorm:"not null;index"`
	Role      Role      `gorm:"foreignKey:RoleID"`
	ManagerID *uint     `gorm:"index"`
	Manager   *Employee `gorm:"foreignKey:ManagerID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Employee) TableName() string {
	return "employee"
}

// All lists the models in dependency order.
func All() []any {
	return []any{&Department{}, &Role{}, &Employee{}}
}
