package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"library-loan-tracker/internal/identity"
	"library-loan-tracker/internal/loans"
)

// LoansHandler serves the loan lifecycle.
type LoansHandler struct {
	svc *loans.Service
	log *zap.Logger
}

func NewLoansHandler(svc *loans.Service, log *zap.Logger) *LoansHandler {
	return &LoansHandler{svc: svc, log: log}
}

// Request submits a loan request (POST /loans). Borrowers request for
// themselves; a missing borrowerId defaults to the caller.
func (h *LoansHandler) Request(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())

	var in loans.RequestInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, h.log, err)
		return
	}
	if in.BorrowerID == "" {
		in.BorrowerID = caller.BorrowerID
	}

	view, err := h.svc.Request(r.Context(), caller, in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// List returns loans (GET /loans): all of them for an admin, the caller's
// own for a borrower.
func (h *LoansHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())

	var (
		views []loans.View
		err   error
	)
	if caller.IsAdmin() {
		views, err = h.svc.ListAll(r.Context(), caller)
	} else {
		views, err = h.svc.ListForBorrower(r.Context(), caller, caller.BorrowerID)
	}
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if views == nil {
		views = []loans.View{}
	}
	respondJSON(w, http.StatusOK, views)
}

// ListOverdue returns loans overdue right now (GET /loans/overdue, admin).
func (h *LoansHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())

	views, err := h.svc.ListOverdue(r.Context(), caller)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if views == nil {
		views = []loans.View{}
	}
	respondJSON(w, http.StatusOK, views)
}

// Get returns one loan (GET /loans/{code}).
func (h *LoansHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())

	view, err := h.svc.Get(r.Context(), caller, chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Accept approves a pending loan (POST /loans/{code}/accept, admin).
func (h *LoansHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Accept)
}

// Reject removes a pending loan (POST /loans/{code}/reject, admin).
func (h *LoansHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Reject)
}

// Return registers the books as back (POST /loans/{code}/return, admin).
func (h *LoansHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Return)
}

func (h *LoansHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller identity.Identity, code string) error) {
	caller, _ := identity.FromContext(r.Context())

	if err := op(r.Context(), caller, chi.URLParam(r, "code")); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
