package api

import (
	"km-report-service/internal/api/handlers"
	"net/http"

	"github.com/sirupsen/logrus"
)

// NewRouter wires the control panel handlers and returns an http.Handler.
func NewRouter(runner handlers.ReportStarter, tracker handlers.StatusReader, log logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()

	reports := &handlers.ReportHandler{Runner: runner, Tracker: tracker, Log: log}

	mux.HandleFunc("/health", handlers.Health(log))
	mux.HandleFunc("/reports", reports.Start)
	mux.HandleFunc("/status", reports.Status)

	return loggingMiddleware(log, mux)
}
