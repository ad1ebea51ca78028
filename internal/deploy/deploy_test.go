package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/ovhdcos/internal/config"
	"github.com/imamik/ovhdcos/internal/dcos"
	"github.com/imamik/ovhdcos/internal/metrics"
	"github.com/imamik/ovhdcos/internal/platform/shell"
	"github.com/imamik/ovhdcos/internal/provisioning"
)

type call struct {
	Target  string
	Command string
}

// fakeRunner records every command and fails the ones fail picks.
// attempt counts earlier runs of the same command on the same target.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []call
	attempts map[call]int
	fail     func(c call, attempt int) error
	started  chan string
	release  chan struct{}
}

func newFakeRunner(fail func(c call, attempt int) error) *fakeRunner {
	return &fakeRunner{attempts: make(map[call]int), fail: fail}
}

func (r *fakeRunner) Run(ctx context.Context, target shell.Target, command string) error {
	c := call{Target: target.String(), Command: command}

	r.mu.Lock()
	r.calls = append(r.calls, c)
	attempt := r.attempts[c]
	r.attempts[c]++
	r.mu.Unlock()

	if r.started != nil {
		r.started <- c.Target
		select {
		case <-r.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.fail != nil {
		return r.fail(c, attempt)
	}
	return nil
}

func (r *fakeRunner) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func remoteTarget(host string) shell.Target {
	return shell.Remote{Host: host, User: "centos"}
}

func TestAssignRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		addrs       []string
		masters     int
		agents      int
		wantMasters []string
		wantAgents  []string
		wantErr     string
	}{
		{
			name: "one master one agent", addrs: []string{"a", "b"}, masters: 1, agents: 1,
			wantMasters: []string{"a"}, wantAgents: []string{"b"},
		},
		{
			name: "three masters two agents", addrs: []string{"a", "b", "c", "d", "e"}, masters: 3, agents: 2,
			wantMasters: []string{"a", "b", "c"}, wantAgents: []string{"d", "e"},
		},
		{
			name: "masters only", addrs: []string{"a"}, masters: 1, agents: 0,
			wantMasters: []string{"a"}, wantAgents: []string{},
		},
		{name: "no master", addrs: []string{"a"}, masters: 0, agents: 1, wantErr: "at least one master"},
		{name: "negative agents", addrs: []string{"a"}, masters: 2, agents: -1, wantErr: "cannot be negative"},
		{name: "count mismatch", addrs: []string{"a", "b", "c"}, masters: 1, agents: 1, wantErr: "do not match 3 ready hosts"},
		{name: "duplicate address", addrs: []string{"a", "a"}, masters: 1, agents: 1, wantErr: "duplicate host address"},
		{name: "empty address", addrs: []string{"a", ""}, masters: 1, agents: 1, wantErr: "cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			roles, err := AssignRoles(tt.addrs, tt.masters, tt.agents)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMasters, roles.Masters)
			assert.Equal(t, tt.wantAgents, roles.Agents)
		})
	}
}

func TestAssignRoles_DisjointAndDeterministic(t *testing.T) {
	t.Parallel()

	for total := 1; total <= 8; total++ {
		addrs := make([]string, total)
		for i := range addrs {
			addrs[i] = fmt.Sprintf("10.0.0.%d", i+1)
		}
		for masters := 1; masters <= total; masters++ {
			agents := total - masters
			first, err := AssignRoles(addrs, masters, agents)
			require.NoError(t, err)
			second, err := AssignRoles(addrs, masters, agents)
			require.NoError(t, err)
			assert.Equal(t, first, second)

			assert.Len(t, first.Masters, masters)
			assert.Len(t, first.Agents, agents)
			assert.ElementsMatch(t, addrs, append(append([]string{}, first.Masters...), first.Agents...))
		}
	}
}

func newPreparer(r CommandRunner, obs provisioning.Observer) *Preparer {
	return &Preparer{
		Runner:   r,
		Target:   remoteTarget,
		Attempts: 3,
		Observer: obs,
		Metrics:  metrics.NewRecorder(),
	}
}

func TestSystemPrep_IsolatesFailingHost(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner(func(c call, _ int) error {
		if c.Target == "centos@10.0.0.2" {
			return &shell.CommandError{Command: c.Command, ExitCode: 255, Target: c.Target}
		}
		return nil
	})
	obs := provisioning.NewMockObserver()

	results := newPreparer(runner, obs).SystemPrep(context.Background(), []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"})

	require.Len(t, results, 3)
	assert.Equal(t, HostResult{Host: "10.0.0.1", Attempts: 1}, results[0])
	assert.Equal(t, HostResult{Host: "10.0.0.3", Attempts: 1}, results[2])
	assert.Equal(t, "10.0.0.2", results[1].Host)
	assert.Equal(t, 3, results[1].Attempts)

	var cmdErr *shell.CommandError
	require.ErrorAs(t, results[1].Err, &cmdErr)
	assert.Equal(t, 255, cmdErr.ExitCode)

	assert.Equal(t, []string{"10.0.0.2"}, Failed(results))
	assert.Len(t, obs.EventsOfType(provisioning.EventResourceFailed), 1)
	assert.True(t, obs.HasMessage("1 retries left"))

	for _, c := range runner.Calls() {
		assert.Equal(t, PrepCommand, c.Command)
	}
}

func TestSystemPrep_RecoversWithinAttempts(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner(func(_ call, attempt int) error {
		if attempt < 2 {
			return errors.New("connection refused")
		}
		return nil
	})

	results := newPreparer(runner, provisioning.NewMockObserver()).SystemPrep(context.Background(), []string{"10.0.0.1"})

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 3, results[0].Attempts)
}

func TestSystemPrep_RunsHostsConcurrently(t *testing.T) {
	t.Parallel()
	hosts := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}
	runner := newFakeRunner(nil)
	runner.started = make(chan string, len(hosts))
	runner.release = make(chan struct{})

	done := make(chan []HostResult, 1)
	go func() {
		done <- newPreparer(runner, provisioning.NewMockObserver()).SystemPrep(context.Background(), hosts)
	}()

	// Every host must be running before any of them is allowed to finish.
	var started []string
	for range hosts {
		select {
		case h := <-runner.started:
			started = append(started, h)
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of %d hosts started", len(started), len(hosts))
		}
	}
	close(runner.release)

	results := <-done
	assert.Empty(t, Failed(results))
	assert.ElementsMatch(t, []string{"centos@10.0.0.1", "centos@10.0.0.2", "centos@10.0.0.3"}, started)
}

func TestSystemPrep_NoHosts(t *testing.T) {
	t.Parallel()
	results := newPreparer(newFakeRunner(nil), provisioning.NewMockObserver()).SystemPrep(context.Background(), nil)
	assert.Empty(t, results)
}

func newInstaller(r CommandRunner) *Installer {
	return &Installer{
		Runner:   r,
		Target:   shell.Local{},
		Path:     "dcos_generate_config.sh",
		Observer: provisioning.NewMockObserver(),
	}
}

func TestInstall_RunsPhasesInOrder(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner(nil)

	require.NoError(t, newInstaller(runner).Install(context.Background()))

	assert.Equal(t, []call{
		{"local", "./dcos_generate_config.sh --genconf"},
		{"local", "./dcos_generate_config.sh --install-prereqs"},
		{"local", "./dcos_generate_config.sh --preflight"},
		{"local", "./dcos_generate_config.sh --deploy"},
		{"local", "./dcos_generate_config.sh --postflight"},
	}, runner.Calls())
}

func TestInstall_AbortsOnFirstFailure(t *testing.T) {
	t.Parallel()

	for k, failing := range InstallPhases {
		t.Run(failing.Name, func(t *testing.T) {
			t.Parallel()
			runner := newFakeRunner(func(c call, _ int) error {
				if c.Command == "./dcos_generate_config.sh "+failing.Flag {
					return &shell.CommandError{Command: c.Command, ExitCode: 1, Target: c.Target}
				}
				return nil
			})

			err := newInstaller(runner).Install(context.Background())

			var phaseErr *PhaseError
			require.ErrorAs(t, err, &phaseErr)
			assert.Equal(t, failing.Name, phaseErr.Phase)
			var cmdErr *shell.CommandError
			require.ErrorAs(t, err, &cmdErr)
			assert.Len(t, runner.Calls(), k+1, "no phase may run after a failure")
		})
	}
}

func TestInstall_CancelledContext(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newInstaller(runner).Install(ctx)
	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, "genconf", phaseErr.Phase)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.Calls())
}

func TestInstallerCommand(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "./dcos_generate_config.sh --deploy", installerCommand("dcos_generate_config.sh", "--deploy"))
	assert.Equal(t, "/opt/dcos/dcos_generate_config.sh --deploy", installerCommand("/opt/dcos/dcos_generate_config.sh", "--deploy"))
	assert.Equal(t, "'/opt/my dir/it'\\''s.sh' --genconf", installerCommand("/opt/my dir/it's.sh", "--genconf"))
}

func newPipelineContext(t *testing.T, hosts []string, masters, agents int) (*provisioning.Context, string) {
	t.Helper()
	opts := config.NewOptions()
	opts.Masters = masters
	opts.Agents = agents
	opts.WorkDir = t.TempDir()
	dir := opts.GenconfDir()
	require.NoError(t, os.Mkdir(dir, 0755))

	ctx := provisioning.NewContext(context.Background(), opts, provisioning.NewMockObserver(), nil)
	ctx.State.Hosts = hosts
	ctx.State.InstallerPath = "dcos_generate_config.sh"
	return ctx, dir
}

func TestPipeline_OneMasterOneAgent(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner(nil)
	ctx, dir := newPipelineContext(t, []string{"51.0.0.1", "51.0.0.2"}, 1, 1)

	p := &Pipeline{Preparer: newPreparer(runner, ctx.Observer), Installer: newInstaller(runner)}
	require.NoError(t, p.Provision(ctx))

	assert.Equal(t, []string{"51.0.0.1"}, ctx.State.Masters)
	assert.Equal(t, []string{"51.0.0.2"}, ctx.State.Agents)

	cfg, err := dcos.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"51.0.0.1"}, cfg.MasterList)
	assert.Equal(t, []string{"51.0.0.2"}, cfg.AgentList)
	assert.Equal(t, "centos", cfg.SSHUser)

	calls := runner.Calls()
	require.Len(t, calls, 7)
	assert.ElementsMatch(t, []call{
		{"centos@51.0.0.1", PrepCommand},
		{"centos@51.0.0.2", PrepCommand},
	}, calls[:2])
	assert.Equal(t, "./dcos_generate_config.sh --postflight", calls[6].Command)
}

func TestPipeline_PreflightFailure(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner(func(c call, _ int) error {
		if c.Command == "./dcos_generate_config.sh --preflight" {
			return &shell.CommandError{Command: c.Command, ExitCode: 1, Target: c.Target}
		}
		return nil
	})
	ctx, _ := newPipelineContext(t, []string{"51.0.0.1", "51.0.0.2", "51.0.0.3"}, 3, 0)

	p := &Pipeline{Preparer: newPreparer(runner, ctx.Observer), Installer: newInstaller(runner)}
	err := p.Provision(ctx)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, "preflight", phaseErr.Phase)

	for _, c := range runner.Calls() {
		assert.NotContains(t, c.Command, "--deploy")
		assert.NotContains(t, c.Command, "--postflight")
	}
}

func TestPipeline_PrepFailureDoesNotStopInstall(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner(func(c call, _ int) error {
		if c.Command == PrepCommand && c.Target == "centos@51.0.0.1" {
			return errors.New("ssh: handshake failed")
		}
		return nil
	})
	ctx, _ := newPipelineContext(t, []string{"51.0.0.1", "51.0.0.2"}, 1, 1)

	p := &Pipeline{Preparer: newPreparer(runner, ctx.Observer), Installer: newInstaller(runner)}
	require.NoError(t, p.Provision(ctx))

	calls := runner.Calls()
	assert.Equal(t, "./dcos_generate_config.sh --postflight", calls[len(calls)-1].Command)
}

func TestPipeline_RoleMismatch(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner(nil)
	ctx, dir := newPipelineContext(t, []string{"51.0.0.1"}, 1, 1)

	p := &Pipeline{Preparer: newPreparer(runner, ctx.Observer), Installer: newInstaller(runner)}
	require.Error(t, p.Provision(ctx))
	assert.Empty(t, runner.Calls())
	assert.NoFileExists(t, filepath.Join(dir, dcos.ConfigFile))
}

func TestPipeline_Name(t *testing.T) {
	t.Parallel()
	p := &Pipeline{}
	assert.Equal(t, "dcos", p.Name())
	require.Len(t, p.Phases(), 3)
}
