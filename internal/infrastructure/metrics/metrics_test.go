package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDispatch(t *testing.T) {
	before := testutil.ToFloat64(AlertsDispatched.WithLabelValues("discord", OutcomeSuccess))
	ObserveDispatch("discord", OutcomeSuccess, 20*time.Millisecond)
	after := testutil.ToFloat64(AlertsDispatched.WithLabelValues("discord", OutcomeSuccess))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestObserveReceived(t *testing.T) {
	before := testutil.ToFloat64(AlertsReceived.WithLabelValues("pro"))
	ObserveReceived("pro")
	ObserveReceived("pro")
	if got := testutil.ToFloat64(AlertsReceived.WithLabelValues("pro")); got != before+2 {
		t.Fatalf("expected %v, got %v", before+2, got)
	}
}
