package service

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatSalary renders an amount as US dollars, e.g. "$50,000.00".
func formatSalary(amount decimal.Decimal) string {
	cents := amount.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
