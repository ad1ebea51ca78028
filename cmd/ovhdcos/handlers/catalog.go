package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/imamik/ovhdcos/internal/catalog"
	"github.com/imamik/ovhdcos/internal/platform/ovh"
)

// Catalog prints the flavors, images and ssh keys available to project in
// region. An empty region lists every region that offers flavors.
func Catalog(ctx context.Context, project, region string) error {
	api, err := newOVHClient()
	if err != nil {
		return err
	}
	cat := catalog.New(ovh.NewGateway(api), "")
	projectID, err := cat.ProjectID(ctx, project)
	if err != nil {
		return err
	}
	cat.Bind(projectID)
	if err := cat.Warm(ctx); err != nil {
		return err
	}

	regions := []string{region}
	if region == "" {
		if regions, err = cat.Regions(ctx); err != nil {
			return err
		}
	}

	p := painter(isTerminal(stdout))
	_, _ = fmt.Fprintf(stdout, "%s %s\n", p.render(titleStyle, "Project"), projectID)
	for _, r := range regions {
		if err := printRegion(ctx, stdout, p, cat, r); err != nil {
			return err
		}
	}
	return nil
}

func printRegion(ctx context.Context, w io.Writer, p painter, cat *catalog.Catalog, region string) error {
	flavors, err := cat.Flavors(ctx, region)
	if err != nil {
		return err
	}
	images, err := cat.Images(ctx, region)
	if err != nil {
		return err
	}
	keys, err := cat.SSHKeys(ctx, region)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", p.render(titleStyle, region))
	for _, section := range []struct {
		title string
		names []string
	}{
		{"Flavors", flavors},
		{"Images", images},
		{"SSH keys", keys},
	} {
		_, _ = fmt.Fprintf(w, "  %s\n", p.render(dimStyle, section.title+":"))
		if len(section.names) == 0 {
			_, _ = fmt.Fprintln(w, "    (none)")
		}
		for _, n := range section.names {
			_, _ = fmt.Fprintf(w, "    %s\n", n)
		}
	}
	return nil
}
