package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	DeviceID string `json:"device_id"`
}

// RegisterHandler creates a new account.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.seats.Register(req.Login, req.Password); err != nil {
			writeSeatError(w, err)
			return
		}
		writeSuccess(w, nil)
	}
}

// AuthHandler runs the seat state machine and, on success, mints an access
// token capped by the subscription window.
func (s *Server) AuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := s.seats.Authenticate(req.Login, req.Password, req.DeviceID)
		if err != nil {
			writeSeatError(w, err)
			return
		}

		var notBeyond = result.SubscriptionExpiry
		accessToken, err := s.tokens.Issue(result.Login, result.BoundDeviceID, notBeyond)
		if err != nil {
			log.Error().Err(err).Msg("failed to issue access token")
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}

		writeSuccess(w, map[string]any{
			"subscription_active": result.SubscriptionValid,
			"is_admin":            result.IsAdmin,
			"access_token":        accessToken,
		})
	}
}

// LogoutHandler releases the seat; the device binding survives.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.seats.Logout(req.Login, req.Password); err != nil {
			writeSeatError(w, err)
			return
		}
		writeSuccess(w, nil)
	}
}

// SessionHandler introspects a bearer access token for resource servers.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := s.tokens.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		writeSuccess(w, map[string]any{
			"login":      claims.Login,
			"device_id":  claims.DeviceID,
			"expires_at": claims.ExpiresAt.Time,
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
