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

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/example/commerce-service/internal/adapter/natsstan"
	"github.com/example/commerce-service/internal/adapter/repo"
	"github.com/example/commerce-service/internal/config"
	"github.com/example/commerce-service/internal/logging"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "commerce-service",
		Short:         "orders, customers, suppliers and specific prices",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(serveCommand(), migrateCommand())
	return root
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API and the order intake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations all the way up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)
			if err := repo.Migrate(cfg.DatabaseURL); err != nil {
				log.Error("migrate failed", "err", err)
				return err
			}
			log.Info("migrated up")
			return nil
		},
	}
}

func serve(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return err
	}
	log := logging.New(cfg.LogLevel)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		return err
	}
	defer app.Close()

	if cfg.Stan.IntakeEnabled {
		sub := &natsstan.Subscriber{
			ClusterID:  cfg.Stan.ClusterID,
			ClientID:   cfg.Stan.ClientID,
			URL:        cfg.Stan.URL,
			Subject:    cfg.Stan.IntakeSubject,
			QueueGroup: cfg.Stan.QueueGroup,
			Durable:    cfg.Stan.Durable,
			AckWait:    cfg.Stan.AckWait,
			Log:        log,
		}
		if err := sub.Subscribe(ctx, app.Intake.Execute); err != nil {
			log.Error("stan subscribe failed", "err", err)
			return err
		}
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("http server error", "err", err)
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	log.Info("shutdown complete")
	return nil
}
