package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nurpe/marketplace-service/internal/auth"
	"github.com/nurpe/marketplace-service/internal/config"
	"github.com/nurpe/marketplace-service/internal/db"
	"github.com/nurpe/marketplace-service/internal/excel"
	httphandler "github.com/nurpe/marketplace-service/internal/http"
	"github.com/nurpe/marketplace-service/internal/http/middleware"
	"github.com/nurpe/marketplace-service/internal/logger"
	"github.com/nurpe/marketplace-service/internal/pdf"
	"github.com/nurpe/marketplace-service/internal/repository"
	"github.com/nurpe/marketplace-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	ledgerRepo := repository.NewLedgerRepository(database)
	contractRepo := repository.NewContractRepository(database)
	reportRepo := repository.NewReportRepository(database)

	contractService := service.NewContractService(contractRepo)
	paymentService := service.NewPaymentService(ledgerRepo, cfg.DB.TxTimeout, log)
	depositService := service.NewDepositService(ledgerRepo, cfg.DB.TxTimeout, log)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), pdf.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, paymentService, depositService, reportService, log)
	authMiddleware := middleware.Auth(tokenParser, contractRepo)
	router := httphandler.NewRouter(handler, authMiddleware, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Msg("starting marketplace service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("marketplace service stopped")
}
