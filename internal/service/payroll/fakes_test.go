package payroll

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/advance"
	"github.com/sitework/workforce-backend-go/internal/domain/attendance"
	"github.com/sitework/workforce-backend-go/internal/domain/deduction"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/outbox"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/domain/savings"
	"github.com/sitework/workforce-backend-go/internal/domain/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memState backs every fake repository. The fake transactor snapshots it
// before a unit of work and restores it when the work fails.
type memState struct {
	mu sync.Mutex

	employees      map[string]employee.Employee
	days           map[string][]attendance.VerifiedDay
	waterBills     map[string]utility.WaterBill
	electricBills  map[string]utility.ElectricBill
	deductionTypes []deduction.DeductionType
	advances       map[string]advance.AdvanceLoan
	advanceTxs     []advance.AdvanceTransaction
	savingsTxs     []savings.SavingsTransaction
	records        map[string]payroll.PayrollRecord
	events         []outbox.Event
	nextID         int

	// locks lists row locks in the order they were taken.
	locks []string

	// failure injection
	failAdjustBalance error
	failWaterAddress  string
}

type memSnapshot struct {
	employees  map[string]employee.Employee
	advances   map[string]advance.AdvanceLoan
	advanceTxs []advance.AdvanceTransaction
	savingsTxs []savings.SavingsTransaction
	records    map[string]payroll.PayrollRecord
	events     []outbox.Event
	nextID     int
}

func newMemState() *memState {
	return &memState{
		employees:     map[string]employee.Employee{},
		days:          map[string][]attendance.VerifiedDay{},
		waterBills:    map[string]utility.WaterBill{},
		electricBills: map[string]utility.ElectricBill{},
		advances:      map[string]advance.AdvanceLoan{},
		records:       map[string]payroll.PayrollRecord{},
	}
}

func (s *memState) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		employees:  make(map[string]employee.Employee, len(s.employees)),
		advances:   make(map[string]advance.AdvanceLoan, len(s.advances)),
		advanceTxs: append([]advance.AdvanceTransaction(nil), s.advanceTxs...),
		savingsTxs: append([]savings.SavingsTransaction(nil), s.savingsTxs...),
		records:    make(map[string]payroll.PayrollRecord, len(s.records)),
		events:     append([]outbox.Event(nil), s.events...),
		nextID:     s.nextID,
	}
	for k, v := range s.employees {
		snap.employees[k] = v
	}
	for k, v := range s.advances {
		snap.advances[k] = v
	}
	for k, v := range s.records {
		snap.records[k] = v
	}
	return snap
}

func (s *memState) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees = snap.employees
	s.advances = snap.advances
	s.advanceTxs = snap.advanceTxs
	s.savingsTxs = snap.savingsTxs
	s.records = snap.records
	s.events = snap.events
	s.nextID = snap.nextID
}

func (s *memState) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func billKey(address string, month time.Time) string {
	return address + "|" + month.Format("2006-01")
}

// ===== transactor =====

type fakeTransactor struct{ s *memState }

func (t fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.s.snapshot()
	if err := fn(ctx); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ===== employees =====

type fakeEmployeeRepo struct{ s *memState }

func (r fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	emp, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r fakeEmployeeRepo) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	r.s.locks = append(r.s.locks, "employee:"+id)
	r.s.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r fakeEmployeeRepo) ListByPaymentCycle(ctx context.Context, cycle employee.PaymentCycle, scope employee.Scope) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []employee.Employee
	for _, emp := range r.s.employees {
		if emp.PaymentCycle == cycle && scope.Allows(emp) {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeEmployeeRepo) CountByWaterAddress(ctx context.Context, address string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, emp := range r.s.employees {
		if emp.WaterAddress != nil && *emp.WaterAddress == address {
			n++
		}
	}
	return n, nil
}

func (r fakeEmployeeRepo) CountByElectricAddress(ctx context.Context, address string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, emp := range r.s.employees {
		if emp.ElectricAddress != nil && *emp.ElectricAddress == address {
			n++
		}
	}
	return n, nil
}

// ===== attendance =====

type fakeAttendanceRepo struct{ s *memState }

func (r fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
}

func (r fakeAttendanceRepo) ListVerifiedDays(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.VerifiedDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []attendance.VerifiedDay
	for _, d := range r.s.days[employeeID] {
		if !d.Date.Before(start) && d.Date.Before(end) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r fakeAttendanceRepo) SetVerified(ctx context.Context, id string, isBonus bool) error {
	return attendance.ErrAttendanceNotFound
}

// ===== utility =====

type fakeUtilityRepo struct{ s *memState }

func (r fakeUtilityRepo) GetWaterBill(ctx context.Context, address string, billMonth time.Time) (utility.WaterBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if address == r.s.failWaterAddress {
		return utility.WaterBill{}, fmt.Errorf("read water bill: connection refused")
	}
	bill, ok := r.s.waterBills[billKey(address, billMonth)]
	if !ok {
		return utility.WaterBill{}, utility.ErrBillNotFound
	}
	return bill, nil
}

func (r fakeUtilityRepo) GetElectricBill(ctx context.Context, address string, billMonth time.Time) (utility.ElectricBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bill, ok := r.s.electricBills[billKey(address, billMonth)]
	if !ok {
		return utility.ElectricBill{}, utility.ErrBillNotFound
	}
	return bill, nil
}

// ===== deduction types =====

type fakeDeductionRepo struct{ s *memState }

func (r fakeDeductionRepo) ListActive(ctx context.Context) ([]deduction.DeductionType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []deduction.DeductionType
	for _, t := range r.s.deductionTypes {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

// ===== advances =====

type fakeAdvanceRepo struct{ s *memState }

func (r fakeAdvanceRepo) ListOutstanding(ctx context.Context, employeeID string) ([]advance.AdvanceLoan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []advance.AdvanceLoan
	for _, l := range r.s.advances {
		if l.EmployeeID == employeeID && l.TotalAmount.IsPositive() {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeAdvanceRepo) GetByIDForUpdate(ctx context.Context, id string) (advance.AdvanceLoan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.advances[id]
	if !ok {
		return advance.AdvanceLoan{}, advance.ErrAdvanceNotFound
	}
	return l, nil
}

func (r fakeAdvanceRepo) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAdjustBalance != nil {
		return decimal.Zero, r.s.failAdjustBalance
	}
	l, ok := r.s.advances[id]
	if !ok {
		return decimal.Zero, advance.ErrAdvanceNotFound
	}
	l.TotalAmount = l.TotalAmount.Add(delta)
	r.s.advances[id] = l
	return l.TotalAmount, nil
}

func (r fakeAdvanceRepo) CreateTransaction(ctx context.Context, tx advance.AdvanceTransaction) (advance.AdvanceTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx.ID = r.s.newID("atx")
	r.s.advanceTxs = append(r.s.advanceTxs, tx)
	return tx, nil
}

// ===== savings =====

type fakeSavingsRepo struct{ s *memState }

func (r fakeSavingsRepo) Balance(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, t := range r.s.savingsTxs {
		if t.EmployeeID == employeeID {
			total = total.Add(t.Signed())
		}
	}
	return total, nil
}

func (r fakeSavingsRepo) Create(ctx context.Context, tx savings.SavingsTransaction) (savings.SavingsTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx.ID = r.s.newID("stx")
	r.s.savingsTxs = append(r.s.savingsTxs, tx)
	return tx, nil
}

// ===== payroll records =====

type fakePayrollRepo struct{ s *memState }

func (r fakePayrollRepo) Create(ctx context.Context, rec payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.records {
		if existing.EmployeeID == rec.EmployeeID && existing.PayMonth.Equal(rec.PayMonth) && existing.Period == rec.Period {
			return payroll.PayrollRecord{}, payroll.ErrAlreadyRecorded
		}
	}
	rec.ID = r.s.newID("rec")
	rec.CreatedAt = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	rec.UpdatedAt = rec.CreatedAt
	r.s.records[rec.ID] = rec
	return rec, nil
}

func (r fakePayrollRepo) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return rec, nil
}

func (r fakePayrollRepo) GetByIDForUpdate(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	r.s.locks = append(r.s.locks, "record:"+id)
	r.s.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r fakePayrollRepo) GetForPeriodForUpdate(ctx context.Context, employeeID string, payMonth time.Time, period int) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.records {
		if rec.EmployeeID == employeeID && rec.PayMonth.Equal(payMonth) && rec.Period == period {
			r.s.locks = append(r.s.locks, "record:"+rec.ID)
			return rec, nil
		}
	}
	return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
}

func (r fakePayrollRepo) ExistsForPeriod(ctx context.Context, employeeID string, payMonth time.Time, period int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.records {
		if rec.EmployeeID == employeeID && rec.PayMonth.Equal(payMonth) && rec.Period == period {
			return true, nil
		}
	}
	return false, nil
}

func (r fakePayrollRepo) ListRecordedEmployeeIDs(ctx context.Context, payMonth time.Time, period int) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for _, rec := range r.s.records {
		if rec.PayMonth.Equal(payMonth) && rec.Period == period {
			ids = append(ids, rec.EmployeeID)
		}
	}
	return ids, nil
}

func (r fakePayrollRepo) ListByPeriod(ctx context.Context, payMonth time.Time, period int, scope employee.Scope) ([]payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.PayrollRecord
	for _, rec := range r.s.records {
		emp := r.s.employees[rec.EmployeeID]
		if rec.PayMonth.Equal(payMonth) && rec.Period == period && scope.Allows(emp) {
			name := emp.FullName
			rec.EmployeeName = &name
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r fakePayrollRepo) Update(ctx context.Context, rec payroll.PayrollRecord, expectedVersion int) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.records[rec.ID]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	if stored.Version != expectedVersion {
		return payroll.PayrollRecord{}, payroll.ErrRecordVersionConflict
	}
	rec.Version = expectedVersion + 1
	r.s.records[rec.ID] = rec
	return rec, nil
}

// ===== outbox =====

type fakeOutboxRepo struct{ s *memState }

func (r fakeOutboxRepo) Create(ctx context.Context, event outbox.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, event)
	return nil
}

func (r fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]outbox.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []outbox.Event
	for _, e := range r.s.events {
		if e.Status == outbox.StatusPending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r fakeOutboxRepo) MarkSent(ctx context.Context, id string) error { return nil }
func (r fakeOutboxRepo) MarkFailed(ctx context.Context, id, reason string) error { return nil }

// ===== helpers =====

func newTestService(s *memState) payroll.PayrollService {
	return NewPayrollService(fakeTransactor{s: s}, Repositories{
		Employee:   fakeEmployeeRepo{s: s},
		Attendance: fakeAttendanceRepo{s: s},
		Utility:    fakeUtilityRepo{s: s},
		Deduction:  fakeDeductionRepo{s: s},
		Advance:    fakeAdvanceRepo{s: s},
		Savings:    fakeSavingsRepo{s: s},
		Payroll:    fakePayrollRepo{s: s},
		Outbox:     fakeOutboxRepo{s: s},
	}, Options{Rates: payroll.DefaultRates(), EventTopic: "payroll-events", Workers: 4})
}

func adminCtx(t *testing.T, adminID string, superuser bool) context.Context {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Claim("admin_id", adminID).
		Claim("is_superuser", superuser).
		Build()
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), tok, nil)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func workerDay(d time.Time, in, out string, ot string) attendance.VerifiedDay {
	return attendance.VerifiedDay{
		AttendanceID: "att-" + d.Format("0102"),
		SiteName:     "Tower A",
		Date:         d,
		IsSunday:     attendance.IsSundayDate(d),
		Worker:       &attendance.Shift{CheckIn: strPtr(in), CheckOut: strPtr(out), OTHours: dec(ot)},
	}
}

// seedPayrollFixture builds two sites' worth of employees for January 2024.
//
//	e1 admin-1 monthly      wage 300, water+electric "Camp A", savings 200, advance adv-1 = 500
//	e2 admin-2 monthly      wage 350, water+electric "Camp A"
//	e3 admin-1 semi-monthly wage 400, savings 100
//	e4 admin-1 monthly      wage 100
func seedPayrollFixture() *memState {
	s := newMemState()
	camp := "Camp A"
	admin1, admin2 := "admin-1", "admin-2"

	s.employees["e1"] = employee.Employee{
		ID: "e1", SupervisorAdminID: &admin1, FullName: "Somchai", DailyWage: dec("300"),
		PaymentCycle: employee.PaymentCycleMonthly, WaterAddress: &camp, ElectricAddress: &camp,
		SavingsMonthlyAmount: dec("200"),
	}
	s.employees["e2"] = employee.Employee{
		ID: "e2", SupervisorAdminID: &admin2, FullName: "Aung", DailyWage: dec("350"),
		PaymentCycle: employee.PaymentCycleMonthly, WaterAddress: &camp, ElectricAddress: &camp,
		SavingsMonthlyAmount: decimal.Zero,
	}
	s.employees["e3"] = employee.Employee{
		ID: "e3", SupervisorAdminID: &admin1, FullName: "Nita", DailyWage: dec("400"),
		PaymentCycle: employee.PaymentCycleSemiMonthly, SavingsMonthlyAmount: dec("100"),
	}
	s.employees["e4"] = employee.Employee{
		ID: "e4", SupervisorAdminID: &admin1, FullName: "Kyaw", DailyWage: dec("100"),
		PaymentCycle: employee.PaymentCycleMonthly, SavingsMonthlyAmount: decimal.Zero,
	}

	jan := date(2024, time.January, 1)
	s.waterBills[billKey(camp, jan)] = utility.WaterBill{ID: "wb-1", AddressName: camp, BillMonth: jan, WaterCharge: dec("100")}
	s.electricBills[billKey(camp, jan)] = utility.ElectricBill{ID: "eb-1", AddressName: camp, BillMonth: jan, LastUnit: dec("100"), CurrentUnit: dec("150")}

	s.deductionTypes = []deduction.DeductionType{
		{ID: "dt-1", Name: "Social security", Rate: dec("10"), IsActive: true},
		{ID: "dt-2", Name: "Retired levy", Rate: dec("3"), IsActive: false},
	}

	s.advances["adv-1"] = advance.AdvanceLoan{ID: "adv-1", EmployeeID: "e1", Name: "Motorbike", TotalAmount: dec("500")}

	s.days["e1"] = []attendance.VerifiedDay{
		workerDay(date(2024, time.January, 2), "08:00", "17:00", "0"),
		workerDay(date(2024, time.January, 3), "08:00", "17:00", "2"),
		workerDay(date(2024, time.January, 7), "08:00", "17:00", "0"), // Sunday
	}
	s.days["e3"] = []attendance.VerifiedDay{
		workerDay(date(2024, time.January, 2), "08:00", "17:00", "0"),
		workerDay(date(2024, time.January, 17), "08:00", "17:00", "0"),
	}

	return s
}
