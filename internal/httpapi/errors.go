package httpapi

import (
	"encoding/json"
	"net/http"

	"guildcore/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError maps err to a status: HTTPError codes are honored,
// anything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) int {
	status := http.StatusInternalServerError
	if he, ok := err.(HTTPError); ok {
		status = he.StatusCode()
	}
	writeJSONError(w, status, err.Error())
	return status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}
