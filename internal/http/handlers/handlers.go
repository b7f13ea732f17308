// Package handlers exposes the client controller over JSON/HTTP. Every
// request other than the health checks is scoped to one client by X-Client-ID.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"

	"github.com/scoutline/scout-client/internal/app"
	"github.com/scoutline/scout-client/internal/http/middleware"
	"github.com/scoutline/scout-client/internal/poller"
	"github.com/scoutline/scout-client/internal/storage"
)

// Controllers resolves the controller for a client id.
type Controllers interface {
	Get(ctx context.Context, clientID string) (*app.Controller, error)
}

// Handler wires HTTP routes to per-client controllers.
type Handler struct {
	clients  Controllers
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. statusFn may be nil when no outbox poller runs.
func NewHandler(clients Controllers, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		clients:  clients,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic. With an outbox poller configured it
// follows the poller's flush health.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.statusFn == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

// controller resolves the request's client. It writes the error response and
// returns nil when that is not possible.
func (h *Handler) controller(w nethttp.ResponseWriter, r *nethttp.Request) *app.Controller {
	id := middleware.ClientIDFromContext(r.Context())
	if id == "" {
		writeErrorBody(w, r, nethttp.StatusBadRequest, map[string]string{
			"error": "missing " + middleware.ClientHeader + " header",
			"field": "client",
		}, h.logger)
		return nil
	}
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidClient) {
			writeErrorBody(w, r, nethttp.StatusBadRequest, map[string]string{
				"error": "invalid client id",
				"field": "client",
			}, h.logger)
			return nil
		}
		writeIntentError(w, r, err, h.logger)
		return nil
	}
	return c
}

// decode reads the request body into dest or writes a 400.
func (h *Handler) decode(w nethttp.ResponseWriter, r *nethttp.Request, dest any) bool {
	if err := decodeBody(r, dest); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid JSON body", h.logger)
		return false
	}
	return true
}

// State returns everything the client view renders.
func (h *Handler) State(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	writeJSON(w, nethttp.StatusOK, c.State(), h.logger)
}
