package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sankofatravel/booking-engine/internal/application/services"
	"github.com/sankofatravel/booking-engine/internal/config"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/gateway"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/persistence/postgres"
	"github.com/sankofatravel/booking-engine/internal/interfaces/rest/handlers"
	"github.com/sankofatravel/booking-engine/internal/interfaces/rest/middleware"
	"github.com/sankofatravel/booking-engine/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting booking engine",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	paymentRepo := postgres.NewPaymentRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	txCoordinator := postgres.NewTransactionCoordinator(db)

	gatewayClient := gateway.NewGatewayClient(cfg.Gateway)

	reconciler := services.NewReconciliationService(txCoordinator, logger)
	completionService := services.NewCompletionService(txCoordinator, gatewayClient, reconciler, logger)
	checkoutService := services.NewCheckoutService(paymentRepo, scheduleRepo, gatewayClient, cfg.Simulator, logger)
	ticketService := services.NewTicketService(txCoordinator, logger)
	bookingService := services.NewBookingService(bookingRepo, txCoordinator, logger)

	h := handlers.NewHandlers(
		checkoutService,
		completionService,
		ticketService,
		bookingService,
		logger,
	)

	mux := http.NewServeMux()
	h.Register(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	simulator := worker.NewSimulator(
		scheduleRepo,
		completionService,
		cfg.Simulator.Interval,
		cfg.Simulator.BatchSize,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go simulator.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
