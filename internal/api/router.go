package api

import (
	"net/http"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/api/handlers"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware
// of concrete adapters).
func NewRouter(gw ports.Gateway, cache ports.OptionCache) http.Handler {
	mux := http.NewServeMux()

	lookups := &services.Lookups{Gateway: gw, Cache: cache}
	shipments := &handlers.ShipmentHandler{
		Sessions: handlers.NewSessionRegistry(gw, lookups),
	}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /shipments", shipments.Create)
	mux.HandleFunc("GET /shipments/{pack}", shipments.Get)
	mux.HandleFunc("PUT /shipments/{pack}", shipments.Save)
	mux.HandleFunc("POST /shipments/{pack}/scans", shipments.Scan)
	mux.HandleFunc("POST /shipments/{pack}/lines", shipments.AddLine)
	mux.HandleFunc("DELETE /shipments/{pack}/lines/{line}", shipments.DeleteLine)
	mux.HandleFunc("GET /shipments/{pack}/lines/{line}/bins", shipments.BinOptions)
	mux.HandleFunc("POST /shipments/{pack}/ship", shipments.Ship)
	mux.HandleFunc("POST /shipments/{pack}/return", shipments.Return)
	mux.HandleFunc("POST /shipments/{pack}/receive", shipments.Receive)

	return loggingMiddleware(mux)
}
