package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// DashboardHandler serves the admin statistics panel. Each statistic is
// advisory: a failed count logs a warning and degrades to zero instead of
// blocking the page.
type DashboardHandler struct {
	store storage.Store
	log   *zap.Logger
}

func NewDashboardHandler(store storage.Store, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{store: store, log: log}
}

type dashboardStats struct {
	TotalBooks     int `json:"totalBooks"`
	TotalBorrowers int `json:"totalBorrowers"`
	PendingLoans   int `json:"pendingLoans"`
	ActiveLoans    int `json:"activeLoans"`
	ReturnedLoans  int `json:"returnedLoans"`
}

// Stats returns the dashboard counters (GET /dashboard, admin).
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var stats dashboardStats

	if n, err := h.store.CountBooks(ctx); err == nil {
		stats.TotalBooks = n
	} else {
		h.log.Warn("counting books failed", zap.Error(err))
	}
	if n, err := h.store.CountBorrowers(ctx); err == nil {
		stats.TotalBorrowers = n
	} else {
		h.log.Warn("counting borrowers failed", zap.Error(err))
	}
	if n, err := h.store.CountLoansByStatus(ctx, models.LoanStatusPending); err == nil {
		stats.PendingLoans = n
	} else {
		h.log.Warn("counting pending loans failed", zap.Error(err))
	}
	if n, err := h.store.CountLoansByStatus(ctx, models.LoanStatusActive); err == nil {
		stats.ActiveLoans = n
	} else {
		h.log.Warn("counting active loans failed", zap.Error(err))
	}
	if n, err := h.store.CountLoansByStatus(ctx, models.LoanStatusReturned); err == nil {
		stats.ReturnedLoans = n
	} else {
		h.log.Warn("counting returned loans failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, stats)
}
