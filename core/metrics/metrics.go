// Package metrics exposes Prometheus collectors for the bot runtime.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/filmbot/core/logger"
)

var (
	// Updates counts inbound updates by kind (message, callback, other).
	Updates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Count of received updates",
		},
		[]string{"kind"},
	)
	// HandlerDuration tracks handler latency by handler name and status.
	HandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_handler_duration_seconds",
			Help:    "Time taken to process an update",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"handler", "status"},
	)
	// MessagesSent counts successful replies by payload type.
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_sent_total",
			Help: "Count of sent messages",
		},
		[]string{"type"},
	)
	// SendFailures counts outbound jobs that failed after retries.
	SendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_send_failures_total",
			Help: "Count of failed outbound calls",
		},
		[]string{"action", "kind"},
	)
	// FormEvents counts creation dialogue transitions (started, rejected, completed, failed, cancelled).
	FormEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_form_events_total",
			Help: "Count of film creation dialogue events",
		},
		[]string{"event"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to reg once per process.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			Updates,
			HandlerDuration,
			MessagesSent,
			SendFailures,
			FormEvents,
		)
	})
}

// Server serves /metrics until Shutdown is called.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Listen registers collectors on the default registry and starts serving on addr.
func Listen(addr string) (*Server, error) {
	Register(prometheus.DefaultRegisterer)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s := &Server{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "metrics", "metrics.serve",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}()
	logger.Info(context.Background(), "metrics", "metrics.listen",
		slog.String("status", "ok"),
		slog.String("listen", ln.Addr().String()),
	)
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the listener, waiting for in-flight scrapes up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
