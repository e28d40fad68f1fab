package handlers

import (
	"net/http"

	"github.com/schoolms/sms-gateway/internal/relay"
)

// ProxyHandler forwards /api/v1/* requests to the backend through the
// relay, which attaches the session headers. Response shapes are
// opaque to the gateway: status and body pass through verbatim.
type ProxyHandler struct {
	relay *relay.Client
}

func NewProxyHandler(relayClient *relay.Client) *ProxyHandler {
	return &ProxyHandler{relay: relayClient}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	header := http.Header{}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	}

	resp, err := h.relay.Do(r.Context(), r, r.Method, path, r.Body, relay.Options{Header: header})
	if err != nil {
		writeRelayError(w, err, "Request timed out")
		return
	}
	defer resp.Body.Close()

	copyResponse(w, resp)
}
