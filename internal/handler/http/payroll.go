package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PayrollHandler interface {
	// Work time
	ComputeWorkTime(w http.ResponseWriter, r *http.Request)

	// Utility shares
	GetUtilityShares(w http.ResponseWriter, r *http.Request)

	// Projections
	RunMonthlyPayroll(w http.ResponseWriter, r *http.Request)
	RunSemiMonthlyPayroll(w http.ResponseWriter, r *http.Request)

	// Recording
	RecordMonthlyPayroll(w http.ResponseWriter, r *http.Request)
	RecordSemiMonthlyPayroll(w http.ResponseWriter, r *http.Request)

	// History
	GetPayrollHistory(w http.ResponseWriter, r *http.Request)
	ExportPayrollHistory(w http.ResponseWriter, r *http.Request)

	UpdatePayrollRecord(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== WORK TIME ==========

func (h *payrollHandlerImpl) ComputeWorkTime(w http.ResponseWriter, r *http.Request) {
	var req payroll.ComputeWorkTimeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ComputeWorkTime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== UTILITY ==========

func (h *payrollHandlerImpl) GetUtilityShares(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.payrollService.UtilityShares(r.Context(), q.Get("employee_id"), q.Get("month"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PROJECTIONS ==========

func (h *payrollHandlerImpl) RunMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	query := payroll.RunPayrollQuery{Month: r.URL.Query().Get("month")}

	result, err := h.payrollService.RunMonthlyPayroll(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) RunSemiMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	period, err := optionalIntQuery(r, "period")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	query := payroll.RunPayrollQuery{Month: r.URL.Query().Get("month")}
	if period != nil {
		query.Period = *period
	}

	result, err := h.payrollService.RunSemiMonthlyPayroll(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== RECORDING ==========

func (h *payrollHandlerImpl) RecordMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.RecordPayrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.RecordMonthlyPayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll recorded", result)
}

func (h *payrollHandlerImpl) RecordSemiMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.RecordPayrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.RecordSemiMonthlyPayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll recorded", result)
}

// ========== HISTORY ==========

func historyQuery(r *http.Request) (payroll.HistoryQuery, error) {
	period, err := optionalIntQuery(r, "period")
	if err != nil {
		return payroll.HistoryQuery{}, err
	}
	return payroll.HistoryQuery{Month: r.URL.Query().Get("month"), Period: period}, nil
}

func (h *payrollHandlerImpl) GetPayrollHistory(w http.ResponseWriter, r *http.Request) {
	query, err := historyQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetPayrollHistory(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportPayrollHistory(w http.ResponseWriter, r *http.Request) {
	query, err := historyQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Render fully before writing so a failure can still be sent as JSON.
	var buf bytes.Buffer
	if err := h.payrollService.ExportPayrollHistory(r.Context(), query, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := "payroll-" + query.Month
	if query.Period != nil {
		filename += fmt.Sprintf("-%d", *query.Period)
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ========== EDIT ==========

func (h *payrollHandlerImpl) UpdatePayrollRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	var req payroll.UpdatePayrollRecordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.UpdateRecordedPayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll record updated", result)
}
