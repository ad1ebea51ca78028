// Package metrics records deployment metrics with the Prometheus client.
//
// Every Recorder owns its own registry so concurrent runs and tests never
// share collectors. A nil *Recorder is valid and records nothing.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "ovhdcos"

// Recorder holds the collectors of one deployment run.
type Recorder struct {
	registry *prometheus.Registry

	instancesRequested prometheus.Counter
	instanceReplaced   prometheus.Counter
	pollPasses         prometheus.Counter
	instanceStatus     *prometheus.CounterVec
	commandAttempts    *prometheus.CounterVec
	phaseDuration      *prometheus.HistogramVec
	cleanupDeletes     *prometheus.CounterVec
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		instancesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provisioner",
			Name:      "instances_requested_total",
			Help:      "Total number of instances requested from the provider",
		}),
		instanceReplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provisioner",
			Name:      "instance_replacements_total",
			Help:      "Total number of errored instances replaced",
		}),
		pollPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provisioner",
			Name:      "poll_passes_total",
			Help:      "Total number of status polling passes",
		}),
		instanceStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provisioner",
			Name:      "instance_status_observations_total",
			Help:      "Provider status observations by status",
		}, []string{"status"}),
		commandAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "command_attempts_total",
			Help:      "Command runs by stage and result",
		}, []string{"stage", "result"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "phase_duration_seconds",
			Help:      "Duration of deployment phases in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68min
		}, []string{"phase", "result"}),
		cleanupDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provisioner",
			Name:      "cleanup_deletes_total",
			Help:      "Instance deletions issued during cleanup by result",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		r.instancesRequested,
		r.instanceReplaced,
		r.pollPasses,
		r.instanceStatus,
		r.commandAttempts,
		r.phaseDuration,
		r.cleanupDeletes,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// InstancesRequested adds n requested instances.
func (r *Recorder) InstancesRequested(n int) {
	if r == nil {
		return
	}
	r.instancesRequested.Add(float64(n))
}

// InstanceReplaced counts one error-triggered replacement.
func (r *Recorder) InstanceReplaced() {
	if r == nil {
		return
	}
	r.instanceReplaced.Inc()
}

// PollPass counts one polling pass.
func (r *Recorder) PollPass() {
	if r == nil {
		return
	}
	r.pollPasses.Inc()
}

// InstanceStatus counts one observed provider status.
func (r *Recorder) InstanceStatus(status string) {
	if r == nil {
		return
	}
	r.instanceStatus.WithLabelValues(status).Inc()
}

// CommandAttempt counts one command run in stage.
func (r *Recorder) CommandAttempt(stage string, err error) {
	if r == nil {
		return
	}
	r.commandAttempts.WithLabelValues(stage, result(err)).Inc()
}

// PhaseDuration observes how long phase took.
func (r *Recorder) PhaseDuration(phase string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.phaseDuration.WithLabelValues(phase, result(err)).Observe(d.Seconds())
}

// CleanupDelete counts one cleanup deletion.
func (r *Recorder) CleanupDelete(err error) {
	if r == nil {
		return
	}
	r.cleanupDeletes.WithLabelValues(result(err)).Inc()
}

// Push sends every collected metric to a Prometheus Pushgateway.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if r == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
