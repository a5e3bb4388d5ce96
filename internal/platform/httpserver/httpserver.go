package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. The write timeout sits above the 30s request
// timeout in the middleware chain so slow persistence calls are cancelled by
// the request context, not by a dropped connection.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
