package deploy

import (
	"fmt"

	"github.com/imamik/ovhdcos/internal/dcos"
	"github.com/imamik/ovhdcos/internal/provisioning"
)

// Pipeline configures and installs DC/OS on the hosts recorded in the
// context's state. It is itself a phase.
type Pipeline struct {
	Preparer  *Preparer
	Installer *Installer
}

// Name implements the provisioning.Phase interface.
func (p *Pipeline) Name() string {
	return "dcos"
}

// Provision implements the provisioning.Phase interface.
func (p *Pipeline) Provision(ctx *provisioning.Context) error {
	return provisioning.RunPhases(ctx, p.Phases())
}

// Phases returns the pipeline's steps in order.
func (p *Pipeline) Phases() []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.PhaseFunc{PhaseName: "configure", Func: configure},
		provisioning.PhaseFunc{PhaseName: prepStage, Func: p.prepare},
		provisioning.PhaseFunc{PhaseName: installStage, Func: p.install},
	}
}

// configure assigns roles and writes genconf/config.yaml.
func configure(ctx *provisioning.Context) error {
	opts := ctx.Options
	roles, err := AssignRoles(ctx.State.Hosts, opts.Masters, opts.Agents)
	if err != nil {
		return err
	}
	ctx.State.Masters = roles.Masters
	ctx.State.Agents = roles.Agents

	path, err := dcos.Write(opts.GenconfDir(), dcos.NewConfig(roles.Masters, roles.Agents, opts.SSHUser))
	if err != nil {
		return err
	}
	ctx.Observer.Printf("[configure] Wrote %s with %d master(s) and %d agent(s)", path, len(roles.Masters), len(roles.Agents))
	return nil
}

func (p *Pipeline) prepare(ctx *provisioning.Context) error {
	results := p.Preparer.SystemPrep(ctx, ctx.State.Hosts)
	if failed := Failed(results); len(failed) > 0 {
		ctx.Observer.Printf("[%s] %d of %d host(s) could not be prepared, continuing: %v",
			prepStage, len(failed), len(results), failed)
	}
	return nil
}

func (p *Pipeline) install(ctx *provisioning.Context) error {
	if ctx.State.InstallerPath != "" {
		p.Installer.Path = ctx.State.InstallerPath
	}
	if p.Installer.Path == "" {
		return fmt.Errorf("installer has not been fetched")
	}
	return p.Installer.Install(ctx)
}
