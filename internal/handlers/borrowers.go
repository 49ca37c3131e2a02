package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/identity"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// BorrowersHandler serves the patron records.
type BorrowersHandler struct {
	store storage.Store
	log   *zap.Logger
}

func NewBorrowersHandler(store storage.Store, log *zap.Logger) *BorrowersHandler {
	return &BorrowersHandler{store: store, log: log}
}

// List returns all borrowers (GET /borrowers, admin).
func (h *BorrowersHandler) List(w http.ResponseWriter, r *http.Request) {
	borrowers, err := h.store.ListBorrowers(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if borrowers == nil {
		borrowers = []*models.Borrower{}
	}
	respondJSON(w, http.StatusOK, borrowers)
}

// Get returns one borrower (GET /borrowers/{id}). Borrowers can only fetch
// themselves; admins can fetch anyone.
func (h *BorrowersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	caller, _ := identity.FromContext(r.Context())
	if !caller.IsAdmin() && caller.BorrowerID != id {
		respondError(w, h.log, apperr.NewPermissionDenied("not your record"))
		return
	}

	borrower, err := h.store.GetBorrower(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, borrower)
}

type photoRequest struct {
	PhotoURL *string `json:"photoUrl"`
}

// UpdatePhoto sets or clears a borrower's photo URL (PUT
// /borrowers/{id}/photo). The image bytes themselves are handled by the
// upload service outside this backend; only the resulting URL is stored.
func (h *BorrowersHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	caller, _ := identity.FromContext(r.Context())
	if !caller.IsAdmin() && caller.BorrowerID != id {
		respondError(w, h.log, apperr.NewPermissionDenied("not your record"))
		return
	}

	var req photoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.store.UpdateBorrower(r.Context(), id, storage.Fields{
		storage.FieldPhotoURL: req.PhotoURL,
	}); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("borrower photo updated", zap.String("borrowerId", id))
	w.WriteHeader(http.StatusNoContent)
}

type activeRequest struct {
	Active bool `json:"active"`
}

// SetActive toggles a borrower account (PUT /borrowers/{id}/active, admin).
// Borrowers are never hard-deleted; deactivation is the retirement path.
func (h *BorrowersHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req activeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.store.UpdateBorrower(r.Context(), id, storage.Fields{
		storage.FieldActive: req.Active,
	}); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("borrower active flag updated", zap.String("borrowerId", id), zap.Bool("active", req.Active))
	w.WriteHeader(http.StatusNoContent)
}
