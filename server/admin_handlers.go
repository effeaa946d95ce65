package server

import (
	"net/http"
	"time"
)

type setSubscriptionRequest struct {
	Login       string     `json:"login"`
	Password    string     `json:"password"`
	TargetLogin string     `json:"target_login"`
	NewExpiry   *time.Time `json:"new_expiry"` // RFC 3339; null clears the window
}

// SetSubscriptionHandler moves a target account's subscription window.
// Admin credentials travel in the body like every other operation; the gate
// itself lives in the seat authority.
func (s *Server) SetSubscriptionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setSubscriptionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.seats.SetSubscription(req.Login, req.Password, req.TargetLogin, req.NewExpiry); err != nil {
			writeSeatError(w, err)
			return
		}
		writeSuccess(w, nil)
	}
}

// ListAccountsHandler returns the admin summary of every account. Being a
// GET, it takes the admin credentials as HTTP Basic auth instead of a body.
func (s *Server) ListAccountsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminLogin, adminSecret, ok := r.BasicAuth()
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing admin credentials")
			return
		}

		summaries, err := s.seats.ListAccounts(adminLogin, adminSecret)
		if err != nil {
			writeSeatError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"users": summaries})
	}
}
