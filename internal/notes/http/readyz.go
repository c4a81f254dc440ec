package http

import (
	"net/http"
	"time"

	"github.com/inklingapp/inkling/internal/notes/store"
	"github.com/inklingapp/inkling/pkg/httpx"
	"github.com/inklingapp/inkling/pkg/jwtx"
	"github.com/inklingapp/inkling/pkg/notesdk"
)

// ReadyzHandler is the readiness probe: database reachable and token signer
// configured. Degraded dependencies answer 503 so load balancers stop
// routing here.
func ReadyzHandler(startTime time.Time, version string, st store.Store, signer jwtx.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &notesdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if signer == nil {
			checks.Signer = "error: no signer configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, notesdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
