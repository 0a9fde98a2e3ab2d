package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
)

const payrollPeriodConstraint = "uk_payroll_employee_period"

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollRecordColumns = `
	r.id, r.employee_id, r.pay_month, r.period, r.daily_wage,
	r.days, r.hours, r.bonus, r.ot_hours, r.sun_days,
	r.base_pay, r.ot_pay, r.sunday_pay, r.total_income,
	r.water_share, r.electric_share, r.percent_base, r.percent_deductions, r.advance_deductions, r.advance_total,
	r.savings_deposit, r.savings_withdrawal, r.savings_bonus, r.savings_remark,
	r.other_deductions, r.deductions_total, r.net_pay,
	r.version, r.recorded_by, r.created_at, r.updated_at, e.full_name
`

const payrollRecordFrom = `
	FROM payroll_records r
	LEFT JOIN employees e ON e.id = r.employee_id
`

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var (
		rec                      payroll.PayrollRecord
		percentJSON, advanceJSON []byte
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PayMonth, &rec.Period, &rec.DailyWage,
		&rec.Days, &rec.Hours, &rec.Bonus, &rec.OTHours, &rec.SunDays,
		&rec.BasePay, &rec.OTPay, &rec.SundayPay, &rec.TotalIncome,
		&rec.WaterShare, &rec.ElectricShare, &rec.PercentBase, &percentJSON, &advanceJSON, &rec.AdvanceTotal,
		&rec.SavingsDeposit, &rec.SavingsWithdrawal, &rec.SavingsBonus, &rec.SavingsRemark,
		&rec.OtherDeductions, &rec.DeductionsTotal, &rec.NetPay,
		&rec.Version, &rec.RecordedBy, &rec.CreatedAt, &rec.UpdatedAt, &rec.EmployeeName,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	if err := json.Unmarshal(percentJSON, &rec.PercentDeductions); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("decode percent deductions of payroll record %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(advanceJSON, &rec.AdvanceDeductions); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("decode advance deductions of payroll record %s: %w", rec.ID, err)
	}
	return rec, nil
}

func marshalLines(rec payroll.PayrollRecord) ([]byte, []byte, error) {
	percent := rec.PercentDeductions
	if percent == nil {
		percent = []payroll.DeductionLine{}
	}
	advances := rec.AdvanceDeductions
	if advances == nil {
		advances = []payroll.AdvanceDeductionLine{}
	}

	percentJSON, err := json.Marshal(percent)
	if err != nil {
		return nil, nil, err
	}
	advanceJSON, err := json.Marshal(advances)
	if err != nil {
		return nil, nil, err
	}
	return percentJSON, advanceJSON, nil
}

// Create implements payroll.PayrollRepository.
func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	percentJSON, advanceJSON, err := marshalLines(record)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("encode payroll record lines: %w", err)
	}

	query := `
		INSERT INTO payroll_records (
			employee_id, pay_month, period, daily_wage,
			days, hours, bonus, ot_hours, sun_days,
			base_pay, ot_pay, sunday_pay, total_income,
			water_share, electric_share, percent_base, percent_deductions, advance_deductions, advance_total,
			savings_deposit, savings_withdrawal, savings_bonus, savings_remark,
			other_deductions, deductions_total, net_pay,
			version, recorded_by
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23,
			$24, $25, $26,
			$27, $28
		)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		record.EmployeeID, record.PayMonth, record.Period, record.DailyWage,
		record.Days, record.Hours, record.Bonus, record.OTHours, record.SunDays,
		record.BasePay, record.OTPay, record.SundayPay, record.TotalIncome,
		record.WaterShare, record.ElectricShare, record.PercentBase, percentJSON, advanceJSON, record.AdvanceTotal,
		record.SavingsDeposit, record.SavingsWithdrawal, record.SavingsBonus, record.SavingsRemark,
		record.OtherDeductions, record.DeductionsTotal, record.NetPay,
		record.Version, record.RecordedBy,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, payrollPeriodConstraint) {
			return payroll.PayrollRecord{}, payroll.ErrAlreadyRecorded
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return record, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate implements payroll.PayrollRepository.
func (r *payrollRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	return r.getByID(ctx, id, "FOR UPDATE OF r")
}

func (r *payrollRepository) getByID(ctx context.Context, id string, lock string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRecordColumns + payrollRecordFrom + ` WHERE r.id = $1 ` + lock

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record with id %s: %w", id, err)
	}
	return rec, nil
}

// GetForPeriodForUpdate implements payroll.PayrollRepository.
func (r *payrollRepository) GetForPeriodForUpdate(ctx context.Context, employeeID string, payMonth time.Time, period int) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRecordColumns + payrollRecordFrom + `
		WHERE r.employee_id = $1 AND r.pay_month = $2 AND r.period = $3
		FOR UPDATE OF r
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, payMonth, period))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to lock payroll record of employee %s: %w", employeeID, err)
	}
	return rec, nil
}

// ExistsForPeriod implements payroll.PayrollRepository.
func (r *payrollRepository) ExistsForPeriod(ctx context.Context, employeeID string, payMonth time.Time, period int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM payroll_records
			WHERE employee_id = $1 AND pay_month = $2 AND period = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, payMonth, period).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payroll record of employee %s: %w", employeeID, err)
	}
	return exists, nil
}

// ListRecordedEmployeeIDs implements payroll.PayrollRepository.
func (r *payrollRepository) ListRecordedEmployeeIDs(ctx context.Context, payMonth time.Time, period int) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT employee_id FROM payroll_records WHERE pay_month = $1 AND period = $2`

	rows, err := q.Query(ctx, query, payMonth, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list recorded employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// ListByPeriod implements payroll.PayrollRepository.
func (r *payrollRepository) ListByPeriod(ctx context.Context, payMonth time.Time, period int, scope employee.Scope) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRecordColumns + payrollRecordFrom + `
		WHERE r.pay_month = $1 AND r.period = $2
			AND ($3 OR e.supervisor_admin_id = $4)
		ORDER BY e.full_name ASC, r.id ASC
	`

	rows, err := q.Query(ctx, query, payMonth, period, scope.IsSuperuser, scope.AdminID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Update implements payroll.PayrollRepository.
func (r *payrollRepository) Update(ctx context.Context, record payroll.PayrollRecord, expectedVersion int) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	percentJSON, advanceJSON, err := marshalLines(record)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("encode payroll record lines: %w", err)
	}

	query := `
		UPDATE payroll_records SET
			days = $3, hours = $4, bonus = $5, ot_hours = $6, sun_days = $7,
			base_pay = $8, ot_pay = $9, sunday_pay = $10, total_income = $11,
			percent_base = $12, percent_deductions = $13, advance_deductions = $14, advance_total = $15,
			savings_deposit = $16, savings_withdrawal = $17, savings_bonus = $18, savings_remark = $19,
			other_deductions = $20, deductions_total = $21, net_pay = $22,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`

	err = q.QueryRow(ctx, query,
		record.ID, expectedVersion,
		record.Days, record.Hours, record.Bonus, record.OTHours, record.SunDays,
		record.BasePay, record.OTPay, record.SundayPay, record.TotalIncome,
		record.PercentBase, percentJSON, advanceJSON, record.AdvanceTotal,
		record.SavingsDeposit, record.SavingsWithdrawal, record.SavingsBonus, record.SavingsRemark,
		record.OtherDeductions, record.DeductionsTotal, record.NetPay,
	).Scan(&record.Version, &record.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrRecordVersionConflict
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll record with id %s: %w", record.ID, err)
	}

	return record, nil
}
