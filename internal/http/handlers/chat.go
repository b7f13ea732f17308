package handlers

import (
	nethttp "net/http"

	"github.com/scoutline/scout-client/internal/app"
	"github.com/scoutline/scout-client/internal/domain/chat"
)

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply chat.Message `json:"reply"`
	State app.State    `json:"state"`
}

// SubmitMessage runs one chat turn and returns the bot reply.
func (h *Handler) SubmitMessage(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var req messageRequest
	if !h.decode(w, r, &req) {
		return
	}
	reply, err := c.SubmitQuery(r.Context(), req.Text)
	if err != nil {
		writeIntentError(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, messageResponse{Reply: reply, State: c.State()}, h.logger)
}

// NewChat starts a fresh conversation.
func (h *Handler) NewChat(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	c.NewChat(r.Context())
	writeJSON(w, nethttp.StatusOK, c.State(), h.logger)
}

// History lists past chat sessions, newest first.
func (h *Handler) History(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	writeJSON(w, nethttp.StatusOK, c.History(), h.logger)
}

// ClearHistory deletes every chat session.
func (h *Handler) ClearHistory(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	c.ClearHistory(r.Context())
	w.WriteHeader(nethttp.StatusNoContent)
}
