package handlers

import (
	nethttp "net/http"

	"github.com/scoutline/scout-client/internal/app"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

// SignIn authenticates the client.
func (h *Handler) SignIn(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var req signInRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respondState(w, r, func() (app.State, error) {
		return c.SignIn(r.Context(), req.Email, req.Password)
	})
}

// SignUp registers a new account.
func (h *Handler) SignUp(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var form app.SignUpForm
	if !h.decode(w, r, &form) {
		return
	}
	h.respondState(w, r, func() (app.State, error) {
		return c.SignUp(r.Context(), form)
	})
}

// Verify confirms the pending email with a one-time code.
func (h *Handler) Verify(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var req verifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respondState(w, r, func() (app.State, error) {
		return c.Verify(r.Context(), req.Code)
	})
}

// SignOut clears the client's session and cached data.
func (h *Handler) SignOut(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	writeJSON(w, nethttp.StatusOK, c.SignOut(r.Context()), h.logger)
}

// Onboarding completes the profile.
func (h *Handler) Onboarding(w nethttp.ResponseWriter, r *nethttp.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	var form app.OnboardingForm
	if !h.decode(w, r, &form) {
		return
	}
	h.respondState(w, r, func() (app.State, error) {
		return c.CompleteOnboarding(r.Context(), form)
	})
}

func (h *Handler) respondState(w nethttp.ResponseWriter, r *nethttp.Request, fn func() (app.State, error)) {
	st, err := fn()
	if err != nil {
		writeIntentError(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, st, h.logger)
}
