package httpserver

import (
	"net/http"

	"marketlevy/internal/platform/config"
)

// New builds the HTTP server. Handler timeouts come from HTTPConfig; the
// write timeout must cover the slowest dashboard rebuild.
func New(addr string, handler http.Handler, cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
