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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"heritage_tree/internal/handler"
	"heritage_tree/internal/service"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 0, "listen port")
	_ = a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	metrics := service.NewMetrics(&service.MetricConfig{Namespace: "heritage", Enabled: true})

	people, closeStore, err := a.openPeople(ctx, metrics)
	if err != nil {
		return err
	}
	defer closeStore()

	auth, err := service.NewAuth(cfg.AuthConfig(), a.logger)
	if err != nil {
		return err
	}

	uploads, err := service.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxSize)
	if err != nil {
		return err
	}

	limiter := service.NewRateLimiter(&service.RateLimitConfig{
		Rate:  cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	}, a.logger)
	defer limiter.Stop()

	deps := handler.Deps{
		People:        people,
		Auth:          auth,
		Publisher:     service.NewGitHubPublisher(a.logger),
		PublishTarget: cfg.Publish,
		Uploads:       uploads,
		MaxImportSize: cfg.Upload.MaxImportSize,
		Inflight:      service.NewInflight(metrics, service.ActionBio, service.ActionIngest, service.ActionPublish),
		Limiter:       limiter,
		Metrics:       metrics,
		View:          cfg.ViewConfig(),
		Logger:        a.logger,
	}
	ai, err := a.newAI()
	if err != nil {
		return err
	}
	if ai != nil {
		deps.Bio = ai
		deps.Parser = ai
	} else {
		a.logger.Warn("AI api key not set, bio and ingest are disabled")
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	handler.New(deps).Register(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server is running on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
