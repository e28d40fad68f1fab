package gate

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/schoolms/sms-gateway/internal/session"
)

var gateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gateway_gate_decisions_total",
	Help: "Route gate decisions by route class and outcome",
}, []string{"class", "outcome"})

// Middleware applies the route gate to every request before the page
// handlers run. It never mutates cookies; its only side effect is the
// redirect response itself.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		sessions := Sessions{
			Tenant: session.AccessToken(r) != "",
			Saas:   session.SaasAccessToken(r) != "",
		}

		decision := Decide(path, sessions)
		class := Classify(path)

		switch decision.Outcome {
		case Redirect:
			gateDecisions.WithLabelValues(class.String(), "redirect").Inc()
			log.Debug().
				Str("path", path).
				Str("class", class.String()).
				Str("location", decision.Location).
				Msg("Route gate redirect")
			http.Redirect(w, r, decision.Location, http.StatusTemporaryRedirect)
		default:
			gateDecisions.WithLabelValues(class.String(), "pass").Inc()
			next.ServeHTTP(w, r)
		}
	})
}
