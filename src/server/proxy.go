package server

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"

	"ticker-desk/src/logger"
	"ticker-desk/src/models"

	"github.com/gin-gonic/gin"
)

const msgBackendUnavailable = "Backend unavailable"

// newAPIProxy forwards /api/* to base/api/*. Method, body, query and headers
// pass through untouched; only the target host changes.
func newAPIProxy(base *url.URL, log *logger.Logger) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(base)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warning("Proxy %s %s failed: %v", r.Method, r.URL.Path, err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(models.NewAPIError(msgBackendUnavailable))
		},
	}
}

func (s *WebServer) forwardAPI(c *gin.Context) {
	s.proxy.ServeHTTP(c.Writer, c.Request)
}
