package cron

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/markethub/settlement-service/internal/services/settlement"
	"github.com/markethub/settlement-service/pkg/timeutil"
	"go.uber.org/zap"
)

// SettlementHandler handles cron job endpoints for the daily settlement batch
type SettlementHandler struct {
	trigger    *settlement.Trigger
	logger     *zap.Logger
	cronSecret string // Secret token for authenticating cron requests
}

// NewSettlementHandler creates a new settlement cron handler
func NewSettlementHandler(
	trigger *settlement.Trigger,
	logger *zap.Logger,
	cronSecret string,
) *SettlementHandler {
	return &SettlementHandler{
		trigger:    trigger,
		logger:     logger,
		cronSecret: cronSecret,
	}
}

// RunSettlementRequest represents the request body for a settlement run
type RunSettlementRequest struct {
	TargetDate *string `json:"target_date"` // Optional: ISO date string, defaults to yesterday
}

// RunSettlementResponse represents the response from a settlement run
type RunSettlementResponse struct {
	Success          bool     `json:"success"`
	JobName          string   `json:"job_name"`
	TargetDate       string   `json:"target_date"`
	Status           string   `json:"status"`
	TotalSellers     int      `json:"total_sellers"`
	SuccessCount     int      `json:"success_count"`
	FailureCount     int      `json:"failure_count"`
	SkippedCount     int      `json:"skipped_count"`
	AlreadyCompleted bool     `json:"already_completed"`
	DurationSeconds  float64  `json:"duration_seconds"`
	Errors           []string `json:"errors,omitempty"`
	ProcessedAt      string   `json:"processed_at"`
}

// RunSettlement handles the POST /cron/settlements/run endpoint.
// An external scheduler calls this once a day after midnight to settle
// the previous day; operators call it manually with an explicit date to
// re-run a failed one.
func (h *SettlementHandler) RunSettlement(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Settlement cron job triggered",
		zap.String("method", r.Method),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()),
	)

	if r.Method != http.MethodPost {
		h.respondError(w, http.StatusMethodNotAllowed, "only POST method is allowed")
		return
	}

	if !h.authenticateRequest(r) {
		h.logger.Warn("Unauthorized cron request",
			zap.String("remote_addr", r.RemoteAddr),
		)
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Parse request body (optional parameters)
	var req RunSettlementRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Failed to parse request body",
				zap.Error(err),
			)
			// Continue with defaults if parsing fails
		}
	}

	// Scheduled runs settle yesterday; manual runs may name any past date.
	targetDate := timeutil.Yesterday()
	if req.TargetDate != nil {
		parsed, err := timeutil.ParseDate(*req.TargetDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid target_date format, expected YYYY-MM-DD")
			return
		}
		targetDate = parsed
	}

	summary, err := h.trigger.Run(r.Context(), targetDate)
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrRunInProgress):
			h.respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, settlement.ErrFutureDate):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Settlement run failed",
				zap.String("target_date", timeutil.FormatDate(targetDate)),
				zap.Error(err),
			)
			h.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	resp := RunSettlementResponse{
		Success:          summary.FailureCount == 0,
		JobName:          summary.JobName,
		TargetDate:       timeutil.FormatDate(summary.TargetDate),
		Status:           string(summary.Status),
		TotalSellers:     summary.TotalSellers,
		SuccessCount:     summary.SuccessCount,
		FailureCount:     summary.FailureCount,
		SkippedCount:     len(summary.SkippedEvents),
		AlreadyCompleted: summary.AlreadyCompleted,
		DurationSeconds:  summary.Duration.Seconds(),
		ProcessedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	for _, ev := range summary.SkippedEvents {
		resp.Errors = append(resp.Errors, ev.Message)
	}

	h.logger.Info("Settlement run completed",
		zap.String("status", resp.Status),
		zap.Int("success", resp.SuccessCount),
		zap.Int("failure", resp.FailureCount),
	)

	w.Header().Set("Content-Type", "application/json")
	if resp.Success {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusPartialContent) // 206 indicates partial success
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// authenticateRequest verifies the cron request is authorized
func (h *SettlementHandler) authenticateRequest(r *http.Request) bool {
	// Check X-Cron-Secret header
	cronSecret := r.Header.Get("X-Cron-Secret")
	if cronSecret != "" && cronSecret == h.cronSecret {
		return true
	}

	// Check Authorization header (Bearer token)
	authHeader := r.Header.Get("Authorization")
	if authHeader == "Bearer "+h.cronSecret {
		return true
	}

	return false
}

// respondError sends an error response
func (h *SettlementHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := map[string]interface{}{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// HealthCheck handles GET /cron/health for monitoring
func (h *SettlementHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	resp := map[string]interface{}{
		"status":  "healthy",
		"running": h.trigger.IsRunning(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	json.NewEncoder(w).Encode(resp)
}
