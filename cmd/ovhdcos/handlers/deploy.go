package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/imamik/ovhdcos/internal/catalog"
	"github.com/imamik/ovhdcos/internal/config"
	"github.com/imamik/ovhdcos/internal/dcos"
	"github.com/imamik/ovhdcos/internal/deploy"
	"github.com/imamik/ovhdcos/internal/installer"
	"github.com/imamik/ovhdcos/internal/metrics"
	"github.com/imamik/ovhdcos/internal/platform/ovh"
	"github.com/imamik/ovhdcos/internal/platform/shell"
	"github.com/imamik/ovhdcos/internal/provisioning"
	"github.com/imamik/ovhdcos/internal/provisioning/compute"
	"github.com/imamik/ovhdcos/internal/util/netutil"
)

const metricsJob = "ovhdcos"

// Factory function variables - can be replaced in tests.
var (
	// newOVHClient creates the OVH API client from OVH_* variables or ovh.conf.
	newOVHClient = func() (ovh.API, error) {
		return ovh.NewClientFromEnv("")
	}

	// newProber creates the ssh reachability probe.
	newProber = func(t *config.Timeouts) netutil.Prober {
		return netutil.TCPProber{Timeout: t.ProbeTimeout}
	}

	// newCommandRunner creates the runner that streams command output.
	newCommandRunner = func(w io.Writer) deploy.CommandRunner {
		return shell.NewRunner(w)
	}

	// newFetcher creates the installer fetcher.
	newFetcher = installer.NewFetcher

	// pushMetrics sends the run's metrics to a Pushgateway.
	pushMetrics = func(ctx context.Context, rec *metrics.Recorder, url string) error {
		return rec.Push(ctx, url, metricsJob)
	}

	// stdout receives command output and the final summary.
	stdout io.Writer = os.Stdout
)

// Deploy provisions the instances, installs DC/OS on them and destroys them
// again. Instances are deleted on every exit path, including interrupts.
func Deploy(ctx context.Context, opts *config.Options, logOpts LogOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	observer, err := newObserver(logOpts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.NewRecorder()
	pCtx := provisioning.NewContext(ctx, opts, observer, rec)
	timeouts := pCtx.Timeouts

	workDir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	api, err := newOVHClient()
	if err != nil {
		return err
	}
	gw := ovh.NewGateway(api, ovh.WithAttempts(timeouts.APIAttempts))

	cat := catalog.New(gw, "")
	projectID, err := cat.ProjectID(ctx, opts.Project)
	if err != nil {
		return err
	}
	cat.Bind(projectID)
	observer.Printf("Using project %s (%s)", opts.Project, projectID)

	prov := compute.NewProvisioner(gw, cat, projectID,
		compute.WithProber(newProber(timeouts)),
		compute.WithObserver(observer),
		compute.WithMetrics(rec),
	)
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Delete)
		defer cancel()
		if cErr := prov.Cleanup(cleanupCtx); cErr != nil {
			observer.Printf("Cleanup finished with errors: %v", cErr)
		}
		if opts.PushgatewayURL != "" {
			if pErr := pushMetrics(cleanupCtx, rec, opts.PushgatewayURL); pErr != nil {
				observer.Printf("Warning: failed to push metrics: %v", pErr)
			}
		}
	}()

	runner := newCommandRunner(stdout)
	var sshKey []byte
	phases := []provisioning.Phase{
		&installer.Phase{
			Fetcher: newFetcher(observer),
			Dest:    filepath.Join(workDir, installer.FileName),
		},
		provisioning.PhaseFunc{PhaseName: "genconf", Func: func(ctx *provisioning.Context) error {
			if err := dcos.CheckPreconditions(ctx.Options.GenconfDir()); err != nil {
				return err
			}
			key, err := dcos.ReadSSHKey(ctx.Options.GenconfDir())
			sshKey = key
			return err
		}},
		prov,
		&deploy.Pipeline{
			Preparer: &deploy.Preparer{
				Runner: runner,
				Target: func(host string) shell.Target {
					return shell.Remote{
						Host:        host,
						User:        opts.SSHUser,
						PrivateKey:  sshKey,
						DialTimeout: timeouts.SSHDialTimeout,
					}
				},
				Attempts: timeouts.PrepAttempts,
				Delay:    timeouts.PrepDelay,
				Observer: observer,
				Metrics:  rec,
			},
			Installer: &deploy.Installer{
				Runner:   runner,
				Target:   shell.Local{Dir: workDir},
				Observer: observer,
				Metrics:  rec,
			},
		},
	}

	if err := provisioning.RunPhases(pCtx, phases); err != nil {
		return fmt.Errorf("deployment failed: %w", err)
	}

	printSummary(stdout, pCtx.State.Masters, pCtx.State.Agents, opts.SSHUser)

	if opts.Hold {
		holdCluster(ctx, stdout)
	}
	return nil
}
