package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := New("tunebridge", reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.ObserveProviderCall("spotify", "fetch_track", StatusOK, 20*time.Millisecond)
	m.RecordCrossProvider(OutcomeMatched)
	m.RecordDelegateCall("url", nil)
	m.RecordDegraded("get_song_by_url")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"tunebridge_provider_calls_total":           false,
		"tunebridge_provider_call_duration_seconds": false,
		"tunebridge_cross_provider_total":           false,
		"tunebridge_delegate_calls_total":           false,
		"tunebridge_degraded_total":                 false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %s was not gathered", name)
		}
	}
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	if _, err := New("tunebridge", reg); err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	if _, err := New("tunebridge", reg); err == nil {
		t.Error("second New() on the same registry should fail")
	}
}

func TestMetrics_Counters(t *testing.T) {
	m, err := New("test", prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.RecordDelegateCall("stream", nil)
	m.RecordDelegateCall("stream", errors.New("exit status 1"))
	m.RecordDelegateCall("stream", errors.New("exit status 1"))

	if got := testutil.ToFloat64(m.DelegateCallsTotal.WithLabelValues("stream", StatusOK)); got != 1 {
		t.Errorf("ok delegate calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DelegateCallsTotal.WithLabelValues("stream", StatusError)); got != 2 {
		t.Errorf("failed delegate calls = %v, want 2", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	m.ObserveProviderCall("youtube", "search", StatusError, time.Second)
	m.RecordCrossProvider(OutcomeUnmatched)
	m.RecordDelegateCall("url", nil)
	m.RecordDegraded("x")
}
