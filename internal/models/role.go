package models

import "github.com/shopspring/decimal"

type Role struct {
	ID           uint            `gorm:"primaryKey"`
	Title        string          `gorm:"type:varchar(30);not null"`
	Salary       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DepartmentID uint            `gorm:"not null;index"`
	Department   Department      `gorm:"foreignKey:DepartmentID"`
}

func (Role) TableName() string {
	return "role"
}
