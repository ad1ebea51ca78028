package catalog

import (
	"context"
	"fmt"

	"github.com/imamik/ovhdcos/internal/platform/ovh"
)

// ensure fills cat with fetch unless it was populated before. A failed
// fetch leaves the category empty so the next lookup tries again.
func ensure(cat *category, fetch func(idx regionIndex) error) error {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if cat.idx != nil {
		return nil
	}
	idx := make(regionIndex)
	if err := fetch(idx); err != nil {
		return err
	}
	cat.idx = idx
	return nil
}

func (c *Catalog) ensureProjects(ctx context.Context) error {
	return ensure(&c.projects, func(idx regionIndex) error {
		var serviceNames []string
		if err := c.gw.Get(ctx, ovh.ProjectsPath(), &serviceNames); err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		for _, sn := range serviceNames {
			var p ovh.Project
			if err := c.gw.Get(ctx, ovh.ProjectPath(sn), &p); err != nil {
				return fmt.Errorf("failed to describe project %s: %w", sn, err)
			}
			id := p.ProjectID
			if id == "" {
				id = sn
			}
			idx.add("", p.Description, id)
		}
		return nil
	})
}

func (c *Catalog) ensureFlavors(ctx context.Context) error {
	projectID, err := c.boundProject()
	if err != nil {
		return err
	}
	return ensure(&c.flavors, func(idx regionIndex) error {
		var flavors []ovh.Flavor
		if err := c.gw.Get(ctx, ovh.FlavorsPath(projectID), &flavors); err != nil {
			return fmt.Errorf("failed to list flavors: %w", err)
		}
		for _, f := range flavors {
			if f.OSType != "linux" {
				continue
			}
			idx.add(f.Region, f.Name, f.ID)
		}
		return nil
	})
}

func (c *Catalog) ensureImages(ctx context.Context) error {
	projectID, err := c.boundProject()
	if err != nil {
		return err
	}
	return ensure(&c.images, func(idx regionIndex) error {
		var images []ovh.Image
		if err := c.gw.Get(ctx, ovh.ImagesPath(projectID), &images); err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}
		for _, img := range images {
			idx.add(img.Region, img.Name, img.ID)
		}
		return nil
	})
}

func (c *Catalog) ensureSSHKeys(ctx context.Context) error {
	projectID, err := c.boundProject()
	if err != nil {
		return err
	}
	return ensure(&c.sshKeys, func(idx regionIndex) error {
		var keys []ovh.SSHKey
		if err := c.gw.Get(ctx, ovh.SSHKeysPath(projectID), &keys); err != nil {
			return fmt.Errorf("failed to list ssh keys: %w", err)
		}
		for _, k := range keys {
			for _, region := range k.Regions {
				idx.add(region, k.Name, k.ID)
			}
		}
		return nil
	})
}
