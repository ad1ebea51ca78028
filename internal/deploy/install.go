package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/imamik/ovhdcos/internal/metrics"
	"github.com/imamik/ovhdcos/internal/platform/shell"
	"github.com/imamik/ovhdcos/internal/provisioning"
)

const installStage = "install"

// InstallPhase is one invocation of the installer.
type InstallPhase struct {
	Name string
	Flag string
}

// InstallPhases lists the installer invocations in the order they run.
var InstallPhases = []InstallPhase{
	{Name: "genconf", Flag: "--genconf"},
	{Name: "install-prereqs", Flag: "--install-prereqs"},
	{Name: "preflight", Flag: "--preflight"},
	{Name: "deploy", Flag: "--deploy"},
	{Name: "postflight", Flag: "--postflight"},
}

// PhaseError reports the installer phase that failed.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("installer phase %s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Installer runs the DC/OS installer on the local host.
type Installer struct {
	Runner   CommandRunner
	Target   shell.Target
	Path     string
	Observer provisioning.Observer
	Metrics  *metrics.Recorder
}

// Install runs every installer phase in order and stops at the first
// failure, which is returned as a *PhaseError.
func (in *Installer) Install(ctx context.Context) error {
	in.Observer.Printf("[%s] Running the DC/OS installer", installStage)

	for _, ph := range InstallPhases {
		if err := ctx.Err(); err != nil {
			return &PhaseError{Phase: ph.Name, Err: err}
		}

		cmd := installerCommand(in.Path, ph.Flag)
		in.Observer.Printf("[%s] %s", installStage, cmd)

		err := in.Runner.Run(ctx, in.Target, cmd)
		in.Metrics.CommandAttempt(ph.Name, err)
		if err != nil {
			in.Observer.Printf("[%s] An error occurred while installing DC/OS, aborting", installStage)
			return &PhaseError{Phase: ph.Name, Err: err}
		}
	}
	return nil
}

// installerCommand makes a bare file name runnable from the working
// directory.
func installerCommand(path, flag string) string {
	if !strings.Contains(path, "/") {
		path = "./" + path
	}
	return shellQuote(filepath.ToSlash(path)) + " " + flag
}

func shellQuote(s string) string {
	if !strings.ContainsAny(s, " '\"\\$`;&|<>()*?[]#~\t\n") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
