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

	"github.com/iwvelando/finance-advisor/internal/advisor"
	"github.com/iwvelando/finance-advisor/internal/server"
	"github.com/iwvelando/finance-advisor/internal/storage"
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(address)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Listen address; overrides server.address")
	return cmd
}

func (a *app) runServe(addressOverride string) error {
	logger := a.logger

	serverCfg, err := server.NewConfig(a.cfg.Server)
	if err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}
	if addressOverride != "" {
		serverCfg.Address = addressOverride
	}

	repo, err := storage.Open(a.cfg.Storage.Path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close storage", zap.String("op", "main.serve"), zap.Error(err))
		}
	}()

	service := advisor.NewService(repo, logger, tax.Options{UsdToInr: a.cfg.Tax.UsdToInr})

	srv := &http.Server{
		Addr:           serverCfg.Address,
		Handler:        server.NewHandler(logger, service, serverCfg.BodySizeBytes(), version),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received",
			zap.String("op", "main.serve"),
			zap.String("signal", sig.String()),
		)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.String("op", "main.serve"), zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("op", "main.serve"),
		zap.String("address", serverCfg.Address),
		zap.String("storage", a.cfg.Storage.Path),
		zap.Int64("max_body_bytes", serverCfg.BodySizeBytes()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-shutdownDone
	logger.Info("server stopped", zap.String("op", "main.serve"))
	return nil
}
