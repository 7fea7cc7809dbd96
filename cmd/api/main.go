package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dealdesk/dealdesk/internal/config"
	"github.com/dealdesk/dealdesk/internal/database"
	dealdeskHttp "github.com/dealdesk/dealdesk/internal/http"
	txHandler "github.com/dealdesk/dealdesk/internal/http/transaction"
	"github.com/dealdesk/dealdesk/internal/transaction"
	txStore "github.com/dealdesk/dealdesk/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transactionService := transaction.NewService(txStore.New(db))
	transactionH := txHandler.NewHandler(transactionService)

	router := dealdeskHttp.New(transactionH, []byte(cfg.Auth.JWTSecret), cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
