package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/deduction"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/domain/utility"
)

var hundred = decimal.NewFromInt(100)

// DeductionCalculator computes live utility shares and percentage deductions.
// Occupant counts and bills are read at call time.
type DeductionCalculator struct {
	employeeRepo  employee.EmployeeRepository
	utilityRepo   utility.UtilityRepository
	deductionRepo deduction.DeductionTypeRepository
	rates         payroll.Rates
}

func NewDeductionCalculator(
	employeeRepo employee.EmployeeRepository,
	utilityRepo utility.UtilityRepository,
	deductionRepo deduction.DeductionTypeRepository,
	rates payroll.Rates,
) *DeductionCalculator {
	return &DeductionCalculator{
		employeeRepo:  employeeRepo,
		utilityRepo:   utilityRepo,
		deductionRepo: deductionRepo,
		rates:         rates,
	}
}

// WaterShare = charge / (occupants + offset). No address or no bill is zero.
func (c *DeductionCalculator) WaterShare(ctx context.Context, emp employee.Employee, billMonth time.Time) (decimal.Decimal, error) {
	if emp.WaterAddress == nil || *emp.WaterAddress == "" {
		return decimal.Zero, nil
	}
	address := *emp.WaterAddress

	bill, err := c.utilityRepo.GetWaterBill(ctx, address, billMonth)
	if err != nil {
		if errors.Is(err, utility.ErrBillNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get water bill for %s: %w", address, err)
	}
	if bill.WaterCharge.IsNegative() {
		slog.Warn("ignoring malformed water bill",
			"employee_id", emp.ID, "address", address, "bill_id", bill.ID, "error", utility.ErrMalformedBill)
		return decimal.Zero, nil
	}

	count, err := c.employeeRepo.CountByWaterAddress(ctx, address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("count water occupants for %s: %w", address, err)
	}

	divisor := decimal.NewFromInt(int64(count + c.rates.WaterOccupantOffset))
	if !divisor.IsPositive() {
		return decimal.Zero, nil
	}
	return payroll.Round(bill.WaterCharge.Div(divisor)), nil
}

// ElectricShare = (current - last) * unit rate / occupants. Zero occupants is zero.
func (c *DeductionCalculator) ElectricShare(ctx context.Context, emp employee.Employee, billMonth time.Time) (decimal.Decimal, error) {
	if emp.ElectricAddress == nil || *emp.ElectricAddress == "" {
		return decimal.Zero, nil
	}
	address := *emp.ElectricAddress

	bill, err := c.utilityRepo.GetElectricBill(ctx, address, billMonth)
	if err != nil {
		if errors.Is(err, utility.ErrBillNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get electric bill for %s: %w", address, err)
	}
	usage := bill.Usage()
	if usage.IsNegative() {
		slog.Warn("ignoring malformed electric bill",
			"employee_id", emp.ID, "address", address, "bill_id", bill.ID, "error", utility.ErrMalformedBill)
		return decimal.Zero, nil
	}

	count, err := c.employeeRepo.CountByElectricAddress(ctx, address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("count electric occupants for %s: %w", address, err)
	}
	if count <= 0 {
		return decimal.Zero, nil
	}

	charge := usage.Mul(c.rates.ElectricUnitRate)
	return payroll.Round(charge.Div(decimal.NewFromInt(int64(count)))), nil
}

func (c *DeductionCalculator) ActiveTypes(ctx context.Context) ([]deduction.DeductionType, error) {
	types, err := c.deductionRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active deduction types: %w", err)
	}
	return types, nil
}

// PercentDeductions applies every active rate to base. Inactive types are skipped.
func PercentDeductions(types []deduction.DeductionType, base decimal.Decimal) ([]payroll.DeductionLine, decimal.Decimal) {
	lines := make([]payroll.DeductionLine, 0, len(types))
	total := decimal.Zero
	for _, t := range types {
		if !t.IsActive {
			continue
		}
		amount := payroll.Round(base.Mul(t.Rate).Div(hundred))
		lines = append(lines, payroll.DeductionLine{
			DeductionTypeID: t.ID,
			Name:            t.Name,
			Rate:            t.Rate,
			Amount:          amount,
		})
		total = total.Add(amount)
	}
	return lines, total
}

// recomputePercentDeductions reapplies the rates stored on a record's lines to a new base.
func recomputePercentDeductions(lines []payroll.DeductionLine, base decimal.Decimal) ([]payroll.DeductionLine, decimal.Decimal) {
	out := make([]payroll.DeductionLine, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		l.Amount = payroll.Round(base.Mul(l.Rate).Div(hundred))
		out = append(out, l)
		total = total.Add(l.Amount)
	}
	return out, total
}
