package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Health returns a liveness handler.
func Health(log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowOnly(log, w, r, http.MethodGet) {
			return
		}
		writeJSON(log, w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
