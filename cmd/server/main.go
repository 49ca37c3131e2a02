package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"library-loan-tracker/internal/config"
	"library-loan-tracker/internal/firebase"
	"library-loan-tracker/internal/handlers"
	"library-loan-tracker/internal/identity"
	"library-loan-tracker/internal/loans"
	"library-loan-tracker/internal/logger"
	"library-loan-tracker/internal/storage"
	"library-loan-tracker/internal/storage/memory"
)

func main() {
	cfg := config.Load()
	log := logger.New("library-loan-tracker", cfg.LogLevel)
	defer log.Sync()

	ctx := context.Background()

	// Pick the backing services: Firestore + Firebase Auth when credentials
	// are configured, otherwise the in-memory fallback for local development.
	var (
		store    storage.Store
		verifier identity.TokenVerifier
		accounts identity.Accounts
	)
	if cfg.HasFirebase() {
		client, err := firebase.New(ctx)
		if err != nil {
			log.Fatal("initializing Firebase", zap.Error(err))
		}
		defer client.Close()
		store, verifier, accounts = client, client, client
		log.Info("using Firestore document store")
	} else {
		mem := memory.New()
		store = mem
		memAccounts := memory.NewAccounts()
		verifier, accounts = memAccounts, memAccounts
		log.Warn("no Firebase credentials configured, using in-memory store")
	}

	gate := identity.NewGate(verifier, accounts, store, log)
	loanSvc := loans.NewService(store, log)

	r := handlers.NewRouter(gate, store, loanSvc, log)

	log.Info("server listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
