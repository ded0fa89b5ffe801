package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New("dev")
	r.ObserveTx("approve", 46000, nil)
	r.ObserveTx("approve", 46000, nil)
	r.ObserveTx("join", 0, errors.New("reverted"))
	r.ObserveStage("join_pool", 2*time.Second, nil)
	r.ObserveRun("succeeded")

	if got := testutil.ToFloat64(r.transactions.WithLabelValues("approve", "ok")); got != 2 {
		t.Fatalf("approve count: %v", got)
	}
	if got := testutil.ToFloat64(r.transactions.WithLabelValues("join", "error")); got != 1 {
		t.Fatalf("join error count: %v", got)
	}
	if got := testutil.ToFloat64(r.gasUsed.WithLabelValues("approve")); got != 92000 {
		t.Fatalf("gas used: %v", got)
	}
	if got := testutil.ToFloat64(r.deployments.WithLabelValues("succeeded")); got != 1 {
		t.Fatalf("runs: %v", got)
	}
	if n := testutil.CollectAndCount(r.stageDuration); n != 1 {
		t.Fatalf("stage series: %d", n)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveTx("approve", 1, nil)
	r.ObserveStage("x", time.Second, nil)
	r.ObserveRun("failed")
	if err := r.Push(context.Background(), "http://localhost:9091", "job"); err != nil {
		t.Fatalf("nil push: %v", err)
	}
	if r.Registry() != nil {
		t.Fatalf("nil registry expected")
	}
}
