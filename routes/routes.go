package routes

import (
	"net/http"
	"strings"

	"field_mates_server/controllers"
	"field_mates_server/logging"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the routes for the application
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/privacy-policy", PrivacyPolicyHandler).Methods("GET")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// LogRequests is a mux middleware that logs every request with the status
// of its response. Server errors are logged at Error level.
func LogRequests(log logging.Logger) mux.MiddlewareFunc {
	log = logging.OrNoOp(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)

			// we don't really care about the ephemeral port from the client end
			remoteIP := strings.SplitN(req.RemoteAddr, ":", 2)[0]
			if rec.status >= 500 {
				log.Errorf("%s %s %s: HTTP-%d", remoteIP, req.Method, req.URL.Path, rec.status)
			} else {
				log.Infof("%s %s %s: HTTP-%d", remoteIP, req.Method, req.URL.Path, rec.status)
			}
		})
	}
}
