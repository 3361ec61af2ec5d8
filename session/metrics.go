// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"code.hybscloud.com/bwnet/internal/logging"
)

// Prometheus counters for the session layer's traffic and failure
// modes. Kept package-level, like go-ampio-server/internal/metrics,
// rather than per-Conn, so a process with many Conns still exposes one
// flat /metrics surface.
var (
	PacketsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bwnet_packets_sent_total",
		Help: "Total packets successfully sent.",
	})
	PacketsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bwnet_packets_received_total",
		Help: "Total packets successfully received and decoded.",
	})
	DecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bwnet_decode_errors_total",
		Help: "Total SyncState failures, labeled by error kind.",
	}, []string{"kind"})
	AcksOverflowed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bwnet_acks_overflowed_total",
		Help: "Total single acks left queued because a packet's trailer budget was full.",
	})
)

// Error label values for DecodeErrors. Stable and bounded: one per
// bwnet.SyncStateErrorKind.
const (
	DecodeErrorUnknownFlags    = "unknown_flags"
	DecodeErrorCorrupted       = "corrupted"
	DecodeErrorInvalidChecksum = "invalid_checksum"
)

// StartMetricsHTTP serves Prometheus metrics at /metrics and a trivial
// liveness probe at /ready on addr.
func StartMetricsHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}
