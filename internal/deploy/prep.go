package deploy

import (
	"context"
	"time"

	"github.com/imamik/ovhdcos/internal/metrics"
	"github.com/imamik/ovhdcos/internal/platform/shell"
	"github.com/imamik/ovhdcos/internal/provisioning"
	"github.com/imamik/ovhdcos/internal/util/async"
	"github.com/imamik/ovhdcos/internal/util/retry"
)

// PrepCommand opens the host firewall for the cluster's services.
const PrepCommand = "sudo systemctl disable firewalld; sudo systemctl stop firewalld"

const prepStage = "system-prep"

// CommandRunner runs a command on a target and waits for it.
// *shell.Runner satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, target shell.Target, command string) error
}

// HostResult is the outcome of preparing one host.
type HostResult struct {
	Host     string
	Attempts int
	Err      error
}

// Preparer prepares hosts for installation.
type Preparer struct {
	Runner   CommandRunner
	Target   func(host string) shell.Target
	Attempts int
	Delay    time.Duration
	Observer provisioning.Observer
	Metrics  *metrics.Recorder
}

// SystemPrep runs PrepCommand on every host at once and waits for all of
// them. A host that still fails after all attempts is logged and reported
// in its HostResult; the other hosts are unaffected.
func (p *Preparer) SystemPrep(ctx context.Context, hosts []string) []HostResult {
	p.Observer.Printf("[%s] Preparing %d host(s) for DC/OS installation", prepStage, len(hosts))

	results := make([]HostResult, len(hosts))
	tasks := make([]async.Task, len(hosts))
	for i, host := range hosts {
		tasks[i] = async.Task{
			Name: host,
			Func: func(ctx context.Context) error {
				results[i] = p.prepareHost(ctx, host)
				return results[i].Err
			},
		}
	}
	async.RunAll(ctx, tasks)

	for _, r := range results {
		if r.Err != nil {
			provisioning.LogResourceFailed(p.Observer, prepStage, "host", r.Host, r.Err.Error())
		}
	}
	return results
}

func (p *Preparer) prepareHost(ctx context.Context, host string) HostResult {
	res := HostResult{Host: host}
	target := p.Target(host)
	p.Observer.Printf("[%s] Preparing %s", prepStage, host)

	res.Err = retry.Fixed(ctx, p.Attempts, p.Delay, func() error {
		res.Attempts++
		err := p.Runner.Run(ctx, target, PrepCommand)
		p.Metrics.CommandAttempt(prepStage, err)
		return err
	}, retry.WithOnRetry(func(_, remaining int, err error) {
		p.Observer.Printf("[%s] Failed to prepare %s (%v), %d retries left", prepStage, host, err, remaining)
	}))
	return res
}

// Failed returns the hosts whose preparation did not succeed.
func Failed(results []HostResult) []string {
	var out []string
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r.Host)
		}
	}
	return out
}
