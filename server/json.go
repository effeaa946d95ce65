package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/seatwise/go-seat-server/seat"
)

const contentTypeJSON = "application/json; charset=utf-8"

func writeJSON(w http.ResponseWriter, httpStatus int, payload map[string]any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, extra map[string]any) {
	payload := map[string]any{"status": "success"}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeError(w http.ResponseWriter, httpStatus int, message string) {
	writeJSON(w, httpStatus, map[string]any{
		"status":  "error",
		"message": message,
	})
}

// writeSeatError maps an authority verdict to the wire. Store failures are
// server-side errors and must never look like a credential failure.
func writeSeatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, seat.ErrInvalidInput), errors.Is(err, seat.ErrLoginTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, seat.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, seat.ErrInvalidCredentials.Error())
	case errors.Is(err, seat.ErrSubscriptionExpired), errors.Is(err, seat.ErrSeatConflict), errors.Is(err, seat.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, seat.ErrNotFound):
		writeError(w, http.StatusNotFound, seat.ErrNotFound.Error())
	default:
		log.Error().Err(err).Msg("seat operation failed")
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}
