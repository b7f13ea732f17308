package handlers

import (
	nethttp "net/http"

	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
)

type toggleResponse struct {
	Added     bool             `json:"added"`
	Favorites []players.Player `json:"favorites"`
}

type photoResponse struct {
	Candidates []string `json:"candidates"`
}

type viewRequest struct {
	View profile.View `json:"view"`
}

type languageRequest struct {
	Language string `json:"language"`
}

// Favorites lists the client's favorite players.
func (h *Handler) Favorites(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	writeJSON(w, nethttp.StatusOK, c.Favorites(), h.logger)
}

// ToggleFavorite adds or removes the posted player.
func (h *Handler) ToggleFavorite(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var p players.Player
	if !h.decode(w, r, &p) {
		return
	}
	added, err := c.ToggleFavorite(r.Context(), p)
	if err != nil {
		writeIntentError(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, toggleResponse{Added: added, Favorites: c.Favorites()}, h.logger)
}

// SelectPlayer opens the posted player on the dashboard.
func (h *Handler) SelectPlayer(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var p players.Player
	if !h.decode(w, r, &p) {
		return
	}
	d, err := c.SelectPlayer(p)
	if err != nil {
		writeIntentError(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, d, h.logger)
}

// Dashboard builds the detail view of the posted player without changing the view.
func (h *Handler) Dashboard(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var p players.Player
	if !h.decode(w, r, &p) {
		return
	}
	writeJSON(w, nethttp.StatusOK, c.Dashboard(p), h.logger)
}

// Photo lists image URLs to try for the posted player, best first.
func (h *Handler) Photo(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var p players.Player
	if !h.decode(w, r, &p) {
		return
	}
	candidates := c.PhotoCandidates(p)
	if candidates == nil {
		candidates = []string{}
	}
	writeJSON(w, nethttp.StatusOK, photoResponse{Candidates: candidates}, h.logger)
}

// Navigate switches the visible view.
func (h *Handler) Navigate(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var req viewRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := c.Navigate(req.View); err != nil {
		writeIntentError(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, c.State(), h.logger)
}

// Languages lists the UI languages on offer.
func (h *Handler) Languages(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	writeJSON(w, nethttp.StatusOK, c.Languages(r.Context()), h.logger)
}

// SetLanguage changes the UI language.
func (h *Handler) SetLanguage(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var req languageRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := c.SetLanguage(r.Context(), req.Language); err != nil {
		writeIntentError(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, c.State(), h.logger)
}
