package service

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Healthchecker serves liveness and metrics for deployed instances. The
// report files themselves are the functional output; this endpoint only
// shows the process is up and watching.
type Healthchecker struct {
	Server http.Server
}

func NewHealthchecker(healthcheckPort int) Healthchecker {
	mux := http.NewServeMux()
	mux.Handle("/", handleHealthcheck())
	mux.Handle("/metrics", promhttp.Handler())
	return Healthchecker{
		Server: http.Server{
			Addr:    fmt.Sprintf("0.0.0.0:%d", healthcheckPort),
			Handler: mux,
		},
	}
}

func handleHealthcheck() http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			log.Debug("received healthcheck request")
			w.Header().Set("Content-Type", "application/json")
			// This will have a status of 200
			json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "floodscan"})
		},
	)
}
