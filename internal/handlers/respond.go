package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/schoolms/sms-gateway/internal/relay"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDetail writes an error body in the backend's convention, so
// the frontend reads one shape regardless of who produced the error.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeRelayError maps a relay failure to the gateway's two
// user-visible failure codes: timeout (504) vs unreachable (502).
func writeRelayError(w http.ResponseWriter, err error, timeoutDetail string) {
	if errors.Is(err, relay.ErrTimeout) {
		writeDetail(w, http.StatusGatewayTimeout, timeoutDetail)
		return
	}
	writeDetail(w, http.StatusBadGateway, "Network error while contacting backend")
}

// copyResponse forwards a backend response (status, content type,
// body) to the client verbatim.
func copyResponse(w http.ResponseWriter, resp *http.Response) {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

// readError extracts a human-readable error from a backend response
// body, falling back to a generic message.
func readError(data map[string]any, fallback string) string {
	if data == nil {
		return fallback
	}
	if detail, ok := data["detail"].(string); ok && detail != "" {
		return detail
	}
	if message, ok := data["message"].(string); ok && message != "" {
		return message
	}
	return fallback
}
