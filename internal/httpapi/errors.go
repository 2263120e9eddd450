package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/observability"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFromError maps a coreerr.Kind to its wire status per §6's error
// taxonomy.
func statusFromError(err error) int {
	switch coreerr.KindOf(err) {
	case coreerr.InvalidInput, coreerr.InvalidMedia:
		return http.StatusBadRequest
	case coreerr.NotFound:
		return http.StatusNotFound
	case coreerr.Conflict:
		return http.StatusConflict
	case coreerr.Busy:
		return http.StatusTooManyRequests
	case coreerr.ProviderUnavailable, coreerr.Timeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the wire-mapped status for err and, for server-side
// failures, logs the error payload with any sensitive keys redacted: provider
// errors (coreerr.Wrap around an upstream HTTP failure) can embed request
// bodies carrying API keys or auth headers.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		body, _ := json.Marshal(map[string]string{"error": err.Error()})
		observability.LoggerWithTrace(ctx).Error().
			RawJSON("detail", observability.RedactJSON(body)).
			Msg("request failed")
	}
	respondError(w, status, err)
}
