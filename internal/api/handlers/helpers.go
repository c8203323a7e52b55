package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

func writeJSON(log logrus.FieldLogger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).WithError(err).Warn("encode failed")
	}
}

func writeError(log logrus.FieldLogger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(log, w, r, status, map[string]string{"error": msg})
}

func allowOnly(log logrus.FieldLogger, w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(log, w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}
