package provisioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/ovhdcos/internal/config"
	"github.com/imamik/ovhdcos/internal/metrics"
)

func TestNewState(t *testing.T) {
	t.Parallel()
	state := NewState()

	require.NotNil(t, state)
	assert.Empty(t, state.Hosts)
	assert.Empty(t, state.Masters)
	assert.Empty(t, state.Agents)
	assert.Empty(t, state.InstallerPath)
}

func TestNewContext(t *testing.T) {
	t.Setenv("OVHDCOS_PREP_ATTEMPTS", "5")

	opts := config.NewOptions()
	rec := metrics.NewRecorder()
	observer := NewMockObserver()
	ctx := NewContext(context.Background(), opts, observer, rec)

	require.NotNil(t, ctx)
	assert.Same(t, opts, ctx.Options)
	assert.Same(t, rec, ctx.Metrics)
	assert.Equal(t, observer, ctx.Observer)
	assert.NotNil(t, ctx.State)
	assert.Equal(t, 5, ctx.Timeouts.PrepAttempts)
	assert.NoError(t, ctx.Err())
}

func TestNewContext_DefaultObserver(t *testing.T) {
	t.Parallel()
	ctx := NewContext(context.Background(), config.NewOptions(), nil, nil)

	assert.IsType(t, &ConsoleObserver{}, ctx.Observer)
	assert.Nil(t, ctx.Metrics)
}

func TestContext_Cancellation(t *testing.T) {
	t.Parallel()
	parent, cancel := context.WithCancel(context.Background())
	ctx := NewContext(parent, config.NewOptions(), NewMockObserver(), nil)

	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
