package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"unibase/internal/game"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCommandOutcomeLabels(t *testing.T) {
	before := testutil.ToFloat64(CommandsTotal.WithLabelValues("pitch", "InsufficientUsers"))
	Command("pitch", game.ErrInsufficientUsers)
	if got := testutil.ToFloat64(CommandsTotal.WithLabelValues("pitch", "InsufficientUsers")); got != before+1 {
		t.Fatalf("got %v want %v", got, before+1)
	}

	before = testutil.ToFloat64(CommandsTotal.WithLabelValues("post", "error"))
	Command("post", errors.New("boom"))
	if got := testutil.ToFloat64(CommandsTotal.WithLabelValues("post", "error")); got != before+1 {
		t.Fatalf("got %v want %v", got, before+1)
	}
}

func TestObserveSetsGauges(t *testing.T) {
	v := game.NewView(game.NewState())
	v.Users = 123
	v.Fund = 45
	Observe(v)
	if got := testutil.ToFloat64(Users); got != 123 {
		t.Fatalf("users gauge got %v", got)
	}
	if got := testutil.ToFloat64(Fund); got != 45 {
		t.Fatalf("fund gauge got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	TicksTotal.Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "unibase_ticks_total") {
		t.Fatalf("metrics output missing unibase_ticks_total")
	}
}
