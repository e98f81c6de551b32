package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// proxyHandler forwards everything on the proxy listener to the
// indexer's own API. The indexer binds loopback only; this is the
// outward surface for its query endpoints.
func (s *Server) proxyHandler() http.Handler {
	target := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("localhost:%d", s.cfg.IndexerPort),
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.log.Warn("proxy request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "indexer is not reachable")
	}
	return proxy
}
