package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"tripchat/observability"
)

// NewRouter exposes the websocket endpoint next to the health and stats
// probes.
func NewRouter(gw *Gateway, stats *observability.Stats) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/ws", gw.HandleWS)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/statsz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats.Collect())
	}).Methods(http.MethodGet)

	return cors.AllowAll().Handler(router)
}
