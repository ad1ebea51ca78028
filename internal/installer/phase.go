package installer

import (
	"context"

	"github.com/imamik/ovhdcos/internal/provisioning"
)

// Phase fetches the installer as part of a deployment.
type Phase struct {
	Fetcher *Fetcher
	Dest    string
}

// Name implements the provisioning.Phase interface.
func (p *Phase) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Phase) Provision(ctx *provisioning.Context) error {
	dest := p.Dest
	if dest == "" {
		dest = FileName
	}

	fetchCtx := context.Context(ctx)
	if ctx.Timeouts != nil && ctx.Timeouts.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, ctx.Timeouts.DownloadTimeout)
		defer cancel()
	}

	res, err := p.Fetcher.Fetch(fetchCtx, ctx.Options.InstallerURL, dest)
	if err != nil {
		return err
	}
	ctx.State.InstallerPath = res.Path
	return nil
}
