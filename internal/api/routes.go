// Package api exposes the administrative surface of spec §6/§9 over HTTP:
// start/stop/processAsset/handleNegotiationResponse/
// handleQuantityConfirmationResponse/markActiveOrders/getOrderBook, plus
// /ws, /metrics and a DebugAuth-gated /debug/pprof/*. Grounded on the
// teacher's internal/api (gorilla/mux, a Dependencies struct threaded into
// route registration).
package api

import (
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"matchcore/internal/api/middleware"
)

// Dependencies bundles everything the admin handlers need, mirroring the
// teacher's api.Dependencies wiring struct.
type Dependencies struct {
	Log    *zap.Logger
	Engine EngineAPI
	Book   OrderBookAPI
	Hub    Upgrader
}

// SetupRoutes builds the full router: CORS/logging/recovery on every route,
// DebugAuth only on /debug.
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.CORS)
	router.Use(middleware.Logging(deps.Log))
	router.Use(middleware.Recovery(deps.Log))

	h := &handlers{deps: deps}

	admin := router.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/start", h.start).Methods(http.MethodPost)
	admin.HandleFunc("/stop", h.stop).Methods(http.MethodPost)
	admin.HandleFunc("/processAsset/{asset}", h.processAsset).Methods(http.MethodPost)
	admin.HandleFunc("/negotiation/respond", h.handleNegotiationResponse).Methods(http.MethodPost)
	admin.HandleFunc("/confirmation/respond", h.handleQuantityConfirmationResponse).Methods(http.MethodPost)
	admin.HandleFunc("/markActiveOrders", h.markActiveOrders).Methods(http.MethodPost)
	admin.HandleFunc("/orderbook/{asset}", h.getOrderBook).Methods(http.MethodGet)

	router.HandleFunc("/ws", h.serveWS)

	router.Handle("/metrics", promhttp.Handler())

	debug := router.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(middleware.DebugAuth)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	debug.PathPrefix("/").HandlerFunc(pprof.Index)

	return router
}
