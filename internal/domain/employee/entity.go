package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                   string
	SupervisorAdminID    *string
	FullName             string
	Nationality          string
	DailyWage            decimal.Decimal
	PaymentCycle         PaymentCycle
	WaterAddress         *string
	ElectricAddress      *string
	SavingsMonthlyAmount decimal.Decimal
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type PaymentCycle string

const (
	PaymentCycleMonthly     PaymentCycle = "monthly"
	PaymentCycleSemiMonthly PaymentCycle = "semi-monthly"
)

func (c PaymentCycle) IsValid() bool {
	return c == PaymentCycleMonthly || c == PaymentCycleSemiMonthly
}

// Scope restricts employee lookups to the ones owned by an admin.
// A superuser scope sees every employee.
type Scope struct {
	AdminID     string
	IsSuperuser bool
}

// Allows reports whether the scope covers the given employee.
func (s Scope) Allows(e Employee) bool {
	if s.IsSuperuser {
		return true
	}
	return e.SupervisorAdminID != nil && *e.SupervisorAdminID == s.AdminID
}
