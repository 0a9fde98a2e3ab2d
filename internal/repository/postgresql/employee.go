package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, supervisor_admin_id, full_name, nationality, daily_wage, payment_cycle,
	water_address, electric_address, savings_monthly_amount, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.SupervisorAdminID, &emp.FullName, &emp.Nationality, &emp.DailyWage, &emp.PaymentCycle,
		&emp.WaterAddress, &emp.ElectricAddress, &emp.SavingsMonthlyAmount, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// GetByIDForUpdate implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 FOR UPDATE`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to lock employee with id %s: %w", id, err)
	}
	return emp, nil
}

// ListByPaymentCycle implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListByPaymentCycle(ctx context.Context, cycle employee.PaymentCycle, scope employee.Scope) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE payment_cycle = $1
			AND ($2 OR supervisor_admin_id = $3)
		ORDER BY full_name ASC, id ASC
	`

	rows, err := q.Query(ctx, query, cycle, scope.IsSuperuser, scope.AdminID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s employees: %w", cycle, err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// CountByWaterAddress implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) CountByWaterAddress(ctx context.Context, address string) (int, error) {
	return e.countBy(ctx, "water_address", address)
}

// CountByElectricAddress implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) CountByElectricAddress(ctx context.Context, address string) (int, error) {
	return e.countBy(ctx, "electric_address", address)
}

// column is one of the two address columns, never user input.
func (e *employeeRepositoryImpl) countBy(ctx context.Context, column, address string) (int, error) {
	q := GetQuerier(ctx, e.db)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM employees WHERE %s = $1`, column)

	var count int
	if err := q.QueryRow(ctx, query, address).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees by %s %q: %w", column, address, err)
	}
	return count, nil
}
