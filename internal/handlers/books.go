package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// BooksHandler serves the catalog. Reads are public; writes sit behind the
// admin middleware.
type BooksHandler struct {
	store storage.Store
	log   *zap.Logger
}

func NewBooksHandler(store storage.Store, log *zap.Logger) *BooksHandler {
	return &BooksHandler{store: store, log: log}
}

type bookRequest struct {
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Publisher   *string    `json:"publisher"`
	PublishDate *time.Time `json:"publishDate"`
}

func (b bookRequest) validate() error {
	if b.Title == "" || b.Author == "" {
		return apperr.NewValidation("title and author are required")
	}
	return nil
}

// List returns the whole catalog (GET /books).
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.ListBooks(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if books == nil {
		books = []*models.Book{}
	}
	respondJSON(w, http.StatusOK, books)
}

// Get returns one book (GET /books/{id}).
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.store.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, book)
}

// Create adds a catalog entry (POST /books, admin).
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, h.log, err)
		return
	}

	book := &models.Book{
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		PublishDate: req.PublishDate,
	}
	if _, err := h.store.CreateBook(r.Context(), book); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("book created", zap.String("id", book.ID), zap.String("title", book.Title))
	respondJSON(w, http.StatusCreated, book)
}

// Update merge-patches a catalog entry (PUT /books/{id}, admin).
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, h.log, err)
		return
	}

	fields := storage.Fields{
		storage.FieldTitle:       req.Title,
		storage.FieldAuthor:      req.Author,
		storage.FieldPublisher:   req.Publisher,
		storage.FieldPublishDate: req.PublishDate,
	}
	if err := h.store.UpdateBook(r.Context(), id, fields); err != nil {
		respondError(w, h.log, err)
		return
	}

	book, err := h.store.GetBook(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, book)
}

// Delete removes a catalog entry (DELETE /books/{id}, admin). Idempotent.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteBook(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
