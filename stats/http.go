package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniscale/osmcsv/log"
)

// StartHTTP serves the metrics of s at /metrics and the pprof handlers at
// /debug/pprof/ on bind.
func StartHTTP(bind string, s *Stats) {
	http.Handle("/metrics", promhttp.HandlerFor(s.Registry(), promhttp.HandlerOpts{}))
	go func() {
		log.Println("[error]", http.ListenAndServe(bind, nil))
	}()
}
