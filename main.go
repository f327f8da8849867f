package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/username/fintrack/backend/src/config"
	"github.com/username/fintrack/backend/src/currency"
	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/handlers"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/optimistic"
	"github.com/username/fintrack/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Fintrack backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing currency converter...",
		"cachePath", config.Cfg.ExchangeCachePath,
		"cacheTTL", config.Cfg.ExchangeCacheTTL.String())
	converter := currency.NewConverter(config.Cfg.ExchangeCacheTTL, config.Cfg.ExchangeCachePath, config.Cfg.PreferredBase)
	fxService := services.NewFXService(converter)

	// Fill normalized amounts for rows imported or written while rates
	// were unavailable.
	if updated, err := database.BackfillNormalizedAmounts(fxService.SharedRates()); err != nil {
		logger.L.Error("Startup backfill of normalized amounts failed", "error", err)
	} else if updated > 0 {
		logger.L.Info("Backfilled normalized amounts", "updated", updated)
	}

	settingsService := services.NewSettingsService(config.Cfg.SettingsPath)
	buffer := optimistic.NewBuffer()

	logger.L.Info("Initializing handlers...")
	transactionHandler := handlers.NewTransactionHandler(fxService, buffer, config.Cfg.RecentWindowSize)
	summaryHandler := handlers.NewSummaryHandler(fxService, settingsService, buffer, config.Cfg.RecentWindowSize)
	reportsHandler := handlers.NewReportsHandler(fxService, settingsService, buffer, config.Cfg.RecentWindowSize)
	ratesHandler := handlers.NewRatesHandler(fxService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	exportHandler := handlers.NewExportHandler(fxService, config.Cfg.MaxImportSizeBytes)
	maintenanceHandler := handlers.NewMaintenanceHandler(buffer)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/transactions", transactionHandler.HandleListTransactions)
	mux.HandleFunc("POST /api/transactions", transactionHandler.HandleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions", transactionHandler.HandleClearTransactions)
	mux.HandleFunc("GET /api/transactions/export", exportHandler.HandleExport)
	mux.HandleFunc("POST /api/transactions/import", exportHandler.HandleImport)
	mux.HandleFunc("GET /api/summary", summaryHandler.HandleGetSummary)
	mux.HandleFunc("GET /api/reports", reportsHandler.HandleGetReports)
	mux.HandleFunc("GET /api/rates", ratesHandler.HandleGetRates)
	mux.HandleFunc("GET /api/rates/convert", ratesHandler.HandleConvert)
	mux.HandleFunc("GET /api/settings", settingsHandler.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings", settingsHandler.HandleUpdateSettings)
	mux.HandleFunc("POST /api/maintenance/reset", maintenanceHandler.HandleResetDatabase)
	mux.HandleFunc("POST /api/maintenance/vacuum", maintenanceHandler.HandleVacuum)

	handler := enableCORS(rateLimitMiddleware(mux))

	addr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L.Info("Server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L.Error("Server failed", "error", err)
			stdlog.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.L.Info("Shutdown signal received, draining connections...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
		return
	}
	logger.L.Info("Server stopped gracefully.")
}
