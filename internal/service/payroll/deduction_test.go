package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/sitework/workforce-backend-go/internal/domain/deduction"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/domain/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(s *memState) *DeductionCalculator {
	return NewDeductionCalculator(fakeEmployeeRepo{s: s}, fakeUtilityRepo{s: s}, fakeDeductionRepo{s: s}, payroll.DefaultRates())
}

func TestDeductionCalculator_WaterShare(t *testing.T) {
	ctx := context.Background()
	s := seedPayrollFixture()
	calc := newTestCalculator(s)
	jan := date(2024, time.January, 1)

	// Act
	share, err := calc.WaterShare(ctx, s.employees["e1"], jan)

	// Assert: 100 / (2 occupants + 3)
	require.NoError(t, err)
	assertDecimal(t, "20", share)
}

func TestDeductionCalculator_ElectricShare(t *testing.T) {
	ctx := context.Background()
	s := seedPayrollFixture()
	calc := newTestCalculator(s)
	jan := date(2024, time.January, 1)

	// Act
	share, err := calc.ElectricShare(ctx, s.employees["e1"], jan)

	// Assert: (150 - 100) * 5 / 2
	require.NoError(t, err)
	assertDecimal(t, "125", share)
}

func TestDeductionCalculator_OccupancyIsLive(t *testing.T) {
	ctx := context.Background()
	s := seedPayrollFixture()
	calc := newTestCalculator(s)
	jan := date(2024, time.January, 1)

	camp := "Camp A"
	e4 := s.employees["e4"]
	e4.WaterAddress = &camp
	e4.ElectricAddress = &camp
	s.employees["e4"] = e4

	water, err := calc.WaterShare(ctx, s.employees["e1"], jan)
	require.NoError(t, err)
	assertDecimal(t, "16.67", water)

	electric, err := calc.ElectricShare(ctx, s.employees["e1"], jan)
	require.NoError(t, err)
	assertDecimal(t, "83.33", electric)
}

func TestDeductionCalculator_MissingInputsAreZero(t *testing.T) {
	ctx := context.Background()
	s := seedPayrollFixture()
	calc := newTestCalculator(s)

	t.Run("no address", func(t *testing.T) {
		water, err := calc.WaterShare(ctx, s.employees["e4"], date(2024, time.January, 1))
		require.NoError(t, err)
		assertDecimal(t, "0", water)
	})

	t.Run("no bill for month", func(t *testing.T) {
		electric, err := calc.ElectricShare(ctx, s.employees["e1"], date(2024, time.March, 1))
		require.NoError(t, err)
		assertDecimal(t, "0", electric)
	})

	t.Run("no occupants", func(t *testing.T) {
		ghostAddress := "Camp Z"
		s.electricBills[billKey(ghostAddress, date(2024, time.January, 1))] = utility.ElectricBill{
			ID: "eb-z", AddressName: ghostAddress, LastUnit: dec("0"), CurrentUnit: dec("10"),
		}
		ghost := employee.Employee{ID: "ghost", ElectricAddress: &ghostAddress}
		electric, err := calc.ElectricShare(ctx, ghost, date(2024, time.January, 1))
		require.NoError(t, err)
		assertDecimal(t, "0", electric)
	})

	t.Run("malformed bill", func(t *testing.T) {
		camp := "Camp A"
		feb := date(2024, time.February, 1)
		s.electricBills[billKey(camp, feb)] = utility.ElectricBill{
			ID: "eb-bad", AddressName: camp, LastUnit: dec("200"), CurrentUnit: dec("150"),
		}
		electric, err := calc.ElectricShare(ctx, s.employees["e1"], feb)
		require.NoError(t, err)
		assertDecimal(t, "0", electric)
	})
}

func TestDeductionCalculator_StoreErrorPropagates(t *testing.T) {
	s := seedPayrollFixture()
	s.failWaterAddress = "Camp A"
	calc := newTestCalculator(s)

	_, err := calc.WaterShare(context.Background(), s.employees["e1"], date(2024, time.January, 1))
	assert.Error(t, err)
}

func TestPercentDeductions(t *testing.T) {
	types := []deduction.DeductionType{
		{ID: "dt-1", Name: "Social security", Rate: dec("5"), IsActive: true},
		{ID: "dt-2", Name: "Withholding", Rate: dec("3"), IsActive: true},
		{ID: "dt-3", Name: "Retired", Rate: dec("50"), IsActive: false},
	}

	lines, total := PercentDeductions(types, dec("1000"))

	require.Len(t, lines, 2)
	assert.Equal(t, "Social security", lines[0].Name)
	assertDecimal(t, "50", lines[0].Amount)
	assertDecimal(t, "30", lines[1].Amount)
	assertDecimal(t, "80", total)
}
