package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/scoutline/scout-client/internal/app"
	"github.com/scoutline/scout-client/internal/http/middleware"
	"github.com/scoutline/scout-client/internal/logging"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeErrorBody(w, r, status, map[string]string{"error": message}, logger)
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, body map[string]string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeIntentError maps a controller error onto a response. Validation
// errors are the user's to fix; anything else is ours.
func writeIntentError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var verr *app.ValidationError
	if errors.As(err, &verr) {
		body := map[string]string{"error": verr.Message}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		writeErrorBody(w, r, http.StatusBadRequest, body, logger)
		return
	}
	logging.Error(loggerFromContext(r, logger), "request failed", err)
	writeError(w, r, http.StatusInternalServerError, "internal error", logger)
}

// decodeBody reads a JSON body into dest. An empty body leaves dest untouched.
func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
