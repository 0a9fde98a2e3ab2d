package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(employeeID string, month time.Time) payroll.PayrollRecord {
	d := decimal.RequireFromString
	return payroll.PayrollRecord{
		EmployeeID:  employeeID,
		PayMonth:    month,
		DailyWage:   d("300"),
		Days:        d("2"),
		Hours:       d("0"),
		Bonus:       2,
		OTHours:     d("2"),
		BasePay:     d("700"),
		OTPay:       d("112.5"),
		TotalIncome: d("812.5"),
		PercentBase: d("812.5"),
		PercentDeductions: []payroll.DeductionLine{
			{DeductionTypeID: "dt-1", Name: "Social security", Rate: d("10"), Amount: d("81.25")},
		},
		NetPay:  d("731.25"),
		Version: 1,
	}
}

func TestPayrollRepository_CreateIsUniquePerPeriod(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	empID := setup.insertEmployee(t, "Ali", "admin-1", "monthly", "300")
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	// Act
	created, err := repo.Create(ctx, sampleRecord(empID, jan))
	require.NoError(t, err)
	_, dupErr := repo.Create(ctx, sampleRecord(empID, jan))

	// Assert
	assert.NotEmpty(t, created.ID)
	assert.ErrorIs(t, dupErr, payroll.ErrAlreadyRecorded)

	exists, err := repo.ExistsForPeriod(ctx, empID, jan, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.PercentDeductions, 1)
	assert.True(t, got.PercentDeductions[0].Amount.Equal(decimal.RequireFromString("81.25")))
	assert.Empty(t, got.AdvanceDeductions)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Ali", *got.EmployeeName)
}

func TestPayrollRepository_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	empID := setup.insertEmployee(t, "Ali", "admin-1", "monthly", "300")
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, sampleRecord(empID, jan))
	require.NoError(t, err)

	created.NetPay = decimal.NewFromInt(700)
	updated, err := repo.Update(ctx, created, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	_, err = repo.Update(ctx, created, 1)
	assert.ErrorIs(t, err, payroll.ErrRecordVersionConflict)
}

func TestPayrollRepository_ListByPeriodIsScoped(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	mine := setup.insertEmployee(t, "Ali", "admin-1", "monthly", "300")
	theirs := setup.insertEmployee(t, "Budi", "admin-2", "monthly", "350")
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, id := range []string{mine, theirs} {
		_, err := repo.Create(ctx, sampleRecord(id, jan))
		require.NoError(t, err)
	}

	scoped, err := repo.ListByPeriod(ctx, jan, 0, employee.Scope{AdminID: "admin-1"})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, mine, scoped[0].EmployeeID)

	all, err := repo.ListByPeriod(ctx, jan, 0, employee.Scope{IsSuperuser: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ids, err := repo.ListRecordedEmployeeIDs(ctx, jan, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{mine, theirs}, ids)
}

func TestEmployeeRepository_CountsLiveOccupants(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewEmployeeRepository(setup.DB)
	setup.insertEmployee(t, "Ali", "admin-1", "monthly", "300")
	setup.insertEmployee(t, "Budi", "admin-1", "semi-monthly", "400")

	water, err := repo.CountByWaterAddress(ctx, "Camp A")
	require.NoError(t, err)
	assert.Equal(t, 2, water)

	monthly, err := repo.ListByPaymentCycle(ctx, employee.PaymentCycleMonthly, employee.Scope{AdminID: "admin-1"})
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "Ali", monthly[0].FullName)
}

func TestSavingsAndTransactor_RollbackDiscardsLedgerEntries(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	empID := setup.insertEmployee(t, "Ali", "admin-1", "monthly", "300")
	repo := postgresql.NewSavingsRepository(setup.DB)
	tm := postgresql.NewTransactor(setup.DB)

	_, err := repo.Create(ctx, savingsDeposit(empID, "200"))
	require.NoError(t, err)

	err = tm.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, savingsDeposit(empID, "50")); err != nil {
			return err
		}
		return payroll.ErrAlreadyRecorded
	})
	require.ErrorIs(t, err, payroll.ErrAlreadyRecorded)

	balance, err := repo.Balance(ctx, empID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(200)), "got %s", balance)
}
