package main

import (
	"context"
	"errors"
	"km-report-service/internal/adapters/status"
	"km-report-service/internal/api"
	"km-report-service/internal/app"
	"km-report-service/internal/config"
	"km-report-service/internal/platform/logger"
	"km-report-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// main serves the local control panel: start a month run and poll its status.
func main() {
	envErr := godotenv.Load()
	env := app.EnvFromOS()
	log := logger.New(env.LogLevel, env.LogFormat)
	if envErr != nil {
		log.Info("no .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := status.NewTracker(status.NewLogSink(log))
	pipeline := app.NewPipeline(cfg, env, tracker, log)
	runner := services.NewRunner(ctx, pipeline, tracker, log)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(runner, tracker, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped")
	}

	// Let a running report observe the cancellation and close the device and browser.
	stop()
	runner.Wait()
}
