package provisioning

import (
	"context"

	"github.com/imamik/ovhdcos/internal/config"
	"github.com/imamik/ovhdcos/internal/metrics"
)

// Context wraps all dependencies and state needed for a deployment phase.
type Context struct {
	context.Context
	Options  *config.Options
	State    *State
	Observer Observer
	Timeouts *config.Timeouts
	Metrics  *metrics.Recorder
}

// NewContext creates a new deployment context with a console observer.
func NewContext(ctx context.Context, opts *config.Options, observer Observer, rec *metrics.Recorder) *Context {
	if observer == nil {
		observer = NewConsoleObserver()
	}
	return &Context{
		Context:  ctx,
		Options:  opts,
		State:    NewState(),
		Observer: observer,
		Timeouts: config.LoadTimeouts(),
		Metrics:  rec,
	}
}
