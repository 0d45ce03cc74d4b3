package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/services/settlement"
	"github.com/markethub/settlement-service/pkg/timeutil"
	"go.uber.org/zap"
)

// SettlementHandler serves the read-only admin API over settlements and
// job executions
type SettlementHandler struct {
	queries *settlement.QueryService
	logger  *zap.Logger
}

// NewSettlementHandler creates a new admin settlement handler
func NewSettlementHandler(queries *settlement.QueryService, logger *zap.Logger) *SettlementHandler {
	return &SettlementHandler{
		queries: queries,
		logger:  logger,
	}
}

// Routes mounts the admin settlement endpoints on a chi router
func (h *SettlementHandler) Routes(r chi.Router) {
	r.Get("/settlements/{id}", h.GetSettlement)
	r.Get("/sellers/{sellerID}/settlements", h.ListSellerSettlements)
	r.Get("/settlements", h.ListByDate)
	r.Get("/settlements/statistics", h.Statistics)
	r.Get("/jobs/daily-settlement", h.GetJobExecution)
}

// SettlementResponse is the JSON shape of one settlement
type SettlementResponse struct {
	ID               string                   `json:"id"`
	SellerID         string                   `json:"seller_id"`
	CycleType        string                   `json:"cycle_type"`
	PeriodStart      string                   `json:"period_start"`
	PeriodEnd        string                   `json:"period_end"`
	GrossSalesAmount string                   `json:"gross_sales_amount"`
	RefundAmount     string                   `json:"refund_amount"`
	CommissionRate   string                   `json:"commission_rate"`
	CommissionAmount string                   `json:"commission_amount"`
	TaxAmount        string                   `json:"tax_amount"`
	AdjustmentAmount string                   `json:"adjustment_amount"`
	PayoutAmount     string                   `json:"payout_amount"`
	Status           string                   `json:"status"`
	ConfirmedAt      *string                  `json:"confirmed_at,omitempty"`
	PaidAt           *string                  `json:"paid_at,omitempty"`
	CancelledAt      *string                  `json:"cancelled_at,omitempty"`
	CancelReason     string                   `json:"cancel_reason,omitempty"`
	Version          int64                    `json:"version"`
	Items            []SettlementItemResponse `json:"items,omitempty"`
	CreatedAt        string                   `json:"created_at"`
}

// SettlementItemResponse is the JSON shape of one settlement line
type SettlementItemResponse struct {
	ID               string `json:"id"`
	ItemType         string `json:"item_type"`
	SourceType       string `json:"source_type"`
	SourceID         string `json:"source_id,omitempty"`
	GrossAmount      string `json:"gross_amount"`
	CommissionRate   string `json:"commission_rate"`
	CommissionAmount string `json:"commission_amount"`
	NetAmount        string `json:"net_amount"`
	Description      string `json:"description,omitempty"`
}

// StatisticsResponse is the JSON shape of per-date settlement aggregates
type StatisticsResponse struct {
	Date            string `json:"date"`
	TotalCount      int64  `json:"total_count"`
	PendingCount    int64  `json:"pending_count"`
	ConfirmedCount  int64  `json:"confirmed_count"`
	PaidCount       int64  `json:"paid_count"`
	CancelledCount  int64  `json:"cancelled_count"`
	TotalGrossSales string `json:"total_gross_sales"`
	TotalRefund     string `json:"total_refund"`
	TotalCommission string `json:"total_commission"`
	TotalTax        string `json:"total_tax"`
	TotalPayout     string `json:"total_payout"`
}

// JobExecutionResponse is the JSON shape of one batch run record
type JobExecutionResponse struct {
	ID            string  `json:"id"`
	JobName       string  `json:"job_name"`
	ExecutionDate string  `json:"execution_date"`
	Status        string  `json:"status"`
	TotalSellers  int     `json:"total_sellers"`
	SuccessCount  int     `json:"success_count"`
	FailureCount  int     `json:"failure_count"`
	SuccessRate   float64 `json:"success_rate"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	StartedAt     string  `json:"started_at"`
	CompletedAt   *string `json:"completed_at,omitempty"`
}

// GetSettlement handles GET /admin/settlements/{id}
func (h *SettlementHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stl, err := h.queries.GetSettlement(r.Context(), id)
	if err != nil {
		h.respondQueryError(w, err, "settlement not found")
		return
	}
	h.respondJSON(w, http.StatusOK, toSettlementResponse(stl, true))
}

// ListSellerSettlements handles GET /admin/sellers/{sellerID}/settlements
func (h *SettlementHandler) ListSellerSettlements(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerID")
	limit, offset := pagination(r)

	settlements, err := h.queries.ListSellerSettlements(r.Context(), sellerID, limit, offset)
	if err != nil {
		h.respondQueryError(w, err, "seller settlements unavailable")
		return
	}
	h.respondJSON(w, http.StatusOK, toSettlementList(settlements))
}

// ListByDate handles GET /admin/settlements?date=YYYY-MM-DD[&status=PENDING]
func (h *SettlementHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	status, ok := h.statusParam(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)

	settlements, err := h.queries.ListByDate(r.Context(), date, status, limit, offset)
	if err != nil {
		h.respondQueryError(w, err, "settlements unavailable")
		return
	}
	h.respondJSON(w, http.StatusOK, toSettlementList(settlements))
}

// Statistics handles GET /admin/settlements/statistics?date=YYYY-MM-DD
func (h *SettlementHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	stats, err := h.queries.Statistics(r.Context(), date)
	if err != nil {
		h.respondQueryError(w, err, "statistics unavailable")
		return
	}

	h.respondJSON(w, http.StatusOK, StatisticsResponse{
		Date:            timeutil.FormatDate(date),
		TotalCount:      stats.TotalCount,
		PendingCount:    stats.PendingCount,
		ConfirmedCount:  stats.ConfirmedCount,
		PaidCount:       stats.PaidCount,
		CancelledCount:  stats.CancelledCount,
		TotalGrossSales: stats.TotalGrossSales.StringFixed(2),
		TotalRefund:     stats.TotalRefund.StringFixed(2),
		TotalCommission: stats.TotalCommission.StringFixed(2),
		TotalTax:        stats.TotalTax.StringFixed(2),
		TotalPayout:     stats.TotalPayout.StringFixed(2),
	})
}

// GetJobExecution handles GET /admin/jobs/daily-settlement?date=YYYY-MM-DD
func (h *SettlementHandler) GetJobExecution(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	exec, err := h.queries.GetJobExecution(r.Context(), date)
	if err != nil {
		h.respondQueryError(w, err, "job execution not found")
		return
	}

	resp := JobExecutionResponse{
		ID:            exec.ID,
		JobName:       exec.JobName,
		ExecutionDate: timeutil.FormatDate(exec.ExecutionDate),
		Status:        string(exec.Status),
		TotalSellers:  exec.TotalSellers,
		SuccessCount:  exec.SuccessCount,
		FailureCount:  exec.FailureCount,
		SuccessRate:   exec.SuccessRate(),
		ErrorMessage:  exec.ErrorMessage,
		StartedAt:     exec.StartedAt.Format(time.RFC3339),
	}
	if exec.CompletedAt != nil {
		s := exec.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *SettlementHandler) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		h.respondError(w, http.StatusBadRequest, "date query parameter is required")
		return time.Time{}, false
	}
	date, err := timeutil.ParseDate(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func (h *SettlementHandler) statusParam(w http.ResponseWriter, r *http.Request) (models.SettlementStatus, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", true
	}
	status := models.SettlementStatus(raw)
	switch status {
	case models.SettlementPending, models.SettlementConfirmed, models.SettlementPaid, models.SettlementCancelled:
		return status, true
	}
	h.respondError(w, http.StatusBadRequest, "invalid status, expected PENDING, CONFIRMED, PAID or CANCELLED")
	return "", false
}

func (h *SettlementHandler) respondQueryError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, domain.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	h.logger.Error("Admin query failed", zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "internal error")
}

func (h *SettlementHandler) respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *SettlementHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func pagination(r *http.Request) (limit, offset int32) {
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = int32(parsed)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = int32(parsed)
		}
	}
	return limit, offset
}

func toSettlementList(settlements []models.Settlement) []SettlementResponse {
	out := make([]SettlementResponse, 0, len(settlements))
	for i := range settlements {
		out = append(out, toSettlementResponse(&settlements[i], false))
	}
	return out
}

func toSettlementResponse(stl *models.Settlement, includeItems bool) SettlementResponse {
	resp := SettlementResponse{
		ID:               stl.ID,
		SellerID:         stl.SellerID,
		CycleType:        string(stl.CycleType),
		PeriodStart:      timeutil.FormatDate(stl.PeriodStart),
		PeriodEnd:        timeutil.FormatDate(stl.PeriodEnd),
		GrossSalesAmount: stl.GrossSalesAmount.StringFixed(2),
		RefundAmount:     stl.RefundAmount.StringFixed(2),
		CommissionRate:   stl.CommissionRate.String(),
		CommissionAmount: stl.CommissionAmount.StringFixed(2),
		TaxAmount:        stl.TaxAmount.StringFixed(2),
		AdjustmentAmount: stl.AdjustmentAmount.StringFixed(2),
		PayoutAmount:     stl.PayoutAmount.StringFixed(2),
		Status:           string(stl.Status),
		CancelReason:     stl.CancelReason,
		Version:          stl.Version,
		CreatedAt:        stl.CreatedAt.Format(time.RFC3339),
	}
	resp.ConfirmedAt = formatTimePtr(stl.ConfirmedAt)
	resp.PaidAt = formatTimePtr(stl.PaidAt)
	resp.CancelledAt = formatTimePtr(stl.CancelledAt)

	if includeItems {
		for i := range stl.Items {
			item := &stl.Items[i]
			resp.Items = append(resp.Items, SettlementItemResponse{
				ID:               item.ID,
				ItemType:         string(item.ItemType),
				SourceType:       string(item.SourceType),
				SourceID:         item.SourceID,
				GrossAmount:      item.GrossAmount.StringFixed(2),
				CommissionRate:   item.CommissionRate.String(),
				CommissionAmount: item.CommissionAmount.StringFixed(2),
				NetAmount:        item.NetAmount.StringFixed(2),
				Description:      item.Description,
			})
		}
	}
	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
