package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"unibase/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unibase_ticks_total",
		Help: "Total number of simulation ticks applied",
	})

	// CommandsTotal counts player commands by name and outcome kind.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unibase_commands_total",
		Help: "Player commands by command and outcome",
	}, []string{"command", "outcome"})

	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unibase_persist_failures_total",
		Help: "Snapshot saves that failed",
	})

	Users = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unibase_users",
		Help: "Current Base App users",
	})

	Fund = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unibase_fund",
		Help: "Current Fund balance",
	})

	CompetitorUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unibase_competitor_users",
		Help: "Current competitor users",
	})

	StageIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unibase_stage_index",
		Help: "Current funding stage index",
	})

	PrestigeLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unibase_prestige_level",
		Help: "Founder prestige level",
	})

	UsersPerSecond = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unibase_users_per_second",
		Help: "Passive user production per tick",
	})

	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unibase_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unibase_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unibase_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

func Observe(v game.View) {
	Users.Set(v.Users)
	Fund.Set(v.Fund)
	CompetitorUsers.Set(v.CompetitorUsers)
	StageIndex.Set(float64(v.StageIndex))
	PrestigeLevel.Set(float64(v.PrestigeLevel))
	UsersPerSecond.Set(v.UsersPerSec)
}

func Command(name string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = game.ErrorKind(err)
		if outcome == "" {
			outcome = "error"
		}
	}
	CommandsTotal.WithLabelValues(name, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
