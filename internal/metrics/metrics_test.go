package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	t.Parallel()
	r := NewRecorder()

	r.InstancesRequested(2)
	r.InstancesRequested(1)
	r.InstanceReplaced()
	r.PollPass()
	r.PollPass()
	r.InstanceStatus("BUILD")
	r.CommandAttempt("system-prep", nil)
	r.CommandAttempt("system-prep", errors.New("exit 1"))
	r.CommandAttempt("system-prep", errors.New("exit 1"))
	r.CleanupDelete(nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.instancesRequested))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.instanceReplaced))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.pollPasses))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.instanceStatus.WithLabelValues("BUILD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commandAttempts.WithLabelValues("system-prep", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.commandAttempts.WithLabelValues("system-prep", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cleanupDeletes.WithLabelValues("success")))
}

func TestRecorder_PhaseDuration(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	r.PhaseDuration("install", 3*time.Second, nil)

	count, err := testutil.GatherAndCount(r.Registry(), "ovhdcos_pipeline_phase_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	t.Parallel()
	var r *Recorder

	assert.NotPanics(t, func() {
		r.InstancesRequested(1)
		r.InstanceReplaced()
		r.PollPass()
		r.InstanceStatus("ACTIVE")
		r.CommandAttempt("install", nil)
		r.PhaseDuration("install", time.Second, nil)
		r.CleanupDelete(nil)
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.Push(context.Background(), "http://localhost:9091", "ovhdcos"))
}

func TestRecorder_Push(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		assert.Contains(t, req.URL.Path, "/metrics/job/ovhdcos")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRecorder()
	r.InstancesRequested(2)

	require.NoError(t, r.Push(context.Background(), srv.URL, "ovhdcos"))
	assert.Equal(t, int32(1), hits.Load())
}

func TestRecorder_PushEmptyURLIsNoop(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewRecorder().Push(context.Background(), "", "ovhdcos"))
}
