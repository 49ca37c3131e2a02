package handlers

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"library-loan-tracker/internal/identity"
	"library-loan-tracker/internal/loans"
	authmw "library-loan-tracker/internal/middleware"
	"library-loan-tracker/internal/storage"
)

// NewRouter assembles the full HTTP surface. Reads on the catalog are public;
// everything touching loans or borrowers needs a caller, and the management
// operations need the admin role.
func NewRouter(gate *identity.Gate, store storage.Store, loanSvc *loans.Service, log *zap.Logger) chi.Router {
	authHandler := NewAuthHandler(gate, log)
	booksHandler := NewBooksHandler(store, log)
	borrowersHandler := NewBorrowersHandler(store, log)
	loansHandler := NewLoansHandler(loanSvc, log)
	dashboardHandler := NewDashboardHandler(store, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(authmw.Authenticate(gate))

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/logout", authHandler.Logout)
	r.Get("/auth/me", authHandler.Me)

	r.Route("/books", func(r chi.Router) {
		r.Get("/", booksHandler.List)
		r.Get("/{id}", booksHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAdmin)
			r.Post("/", booksHandler.Create)
			r.Put("/{id}", booksHandler.Update)
			r.Delete("/{id}", booksHandler.Delete)
		})
	})

	r.Route("/loans", func(r chi.Router) {
		r.Use(authmw.RequireAuth)
		r.Post("/", loansHandler.Request)
		r.Get("/", loansHandler.List)
		r.Get("/{code}", loansHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAdmin)
			r.Get("/overdue", loansHandler.ListOverdue)
			r.Post("/{code}/accept", loansHandler.Accept)
			r.Post("/{code}/reject", loansHandler.Reject)
			r.Post("/{code}/return", loansHandler.Return)
		})
	})

	r.Route("/borrowers", func(r chi.Router) {
		r.Use(authmw.RequireAuth)
		r.Get("/{id}", borrowersHandler.Get)
		r.Put("/{id}/photo", borrowersHandler.UpdatePhoto)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAdmin)
			r.Get("/", borrowersHandler.List)
			r.Put("/{id}/active", borrowersHandler.SetActive)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAdmin)
		r.Get("/dashboard", dashboardHandler.Stats)
	})

	return r
}
