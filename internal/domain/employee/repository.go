package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByIDForUpdate locks the employee row for the rest of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Employee, error)

	ListByPaymentCycle(ctx context.Context, cycle PaymentCycle, scope Scope) ([]Employee, error)

	// Occupant counts are live: they reflect the employees at the address right now.
	CountByWaterAddress(ctx context.Context, address string) (int, error)
	CountByElectricAddress(ctx context.Context, address string) (int, error)
}
