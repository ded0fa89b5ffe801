package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder collects deployment metrics in a private registry. A nil *Recorder is a no-op.
type Recorder struct {
	registry      *prometheus.Registry
	transactions  *prometheus.CounterVec
	gasUsed       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	deployments   *prometheus.CounterVec
}

// New builds a Recorder with constant labels for the target network.
func New(network string) *Recorder {
	labels := prometheus.Labels{"network": network}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pooldeployer_transactions_total",
			Help:        "Transactions submitted, by kind and outcome",
			ConstLabels: labels,
		}, []string{"kind", "outcome"}),
		gasUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pooldeployer_gas_used_total",
			Help:        "Gas used by mined transactions, by kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "pooldeployer_stage_duration_seconds",
			Help:        "Pipeline stage duration",
			ConstLabels: labels,
			Buckets:     []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"stage", "outcome"}),
		deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pooldeployer_runs_total",
			Help:        "Deployment runs, by final status",
			ConstLabels: labels,
		}, []string{"status"}),
	}
	r.registry.MustRegister(r.transactions, r.gasUsed, r.stageDuration, r.deployments)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveTx counts a submitted transaction and its gas.
func (r *Recorder) ObserveTx(kind string, gasUsed uint64, err error) {
	if r == nil {
		return
	}
	r.transactions.WithLabelValues(kind, outcome(err)).Inc()
	if gasUsed > 0 {
		r.gasUsed.WithLabelValues(kind).Add(float64(gasUsed))
	}
}

// ObserveStage records how long a pipeline stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage, outcome(err)).Observe(d.Seconds())
}

// ObserveRun counts a finished run.
func (r *Recorder) ObserveRun(status string) {
	if r == nil {
		return
	}
	r.deployments.WithLabelValues(status).Inc()
}

// Push sends the collected metrics to a Prometheus pushgateway.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if r == nil || url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(r.registry).PushContext(ctx)
}
