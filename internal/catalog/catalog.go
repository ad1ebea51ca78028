// Package catalog resolves human-readable OVH resource names to provider ids.
//
// Each category (projects, flavors, images, ssh keys) is fetched with one
// listing call on first use and indexed by region. Once populated a category
// is never refetched for the lifetime of the Catalog, so lookups are safe to
// share across concurrent host tasks.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/imamik/ovhdcos/internal/platform/ovh"
	"github.com/imamik/ovhdcos/internal/util/async"
)

// Kind names a catalog category.
type Kind string

// Catalog categories.
const (
	KindProject Kind = "project"
	KindFlavor  Kind = "flavor"
	KindImage   Kind = "image"
	KindSSHKey  Kind = "ssh key"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("not found in catalog")

// NotFoundError reports a (region, name) pair absent from the fetched listing.
// It is a configuration problem and is never retried.
type NotFoundError struct {
	Kind   Kind
	Region string
	Name   string
}

func (e *NotFoundError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %q not found in region %s", e.Kind, e.Name, e.Region)
}

// Is makes errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// regionIndex maps region -> name -> id.
type regionIndex map[string]map[string]string

func (idx regionIndex) add(region, name, id string) {
	if idx[region] == nil {
		idx[region] = make(map[string]string)
	}
	idx[region][name] = id
}

// category is one memoized listing. mu is held across the fetch so
// concurrent first lookups issue a single listing call.
type category struct {
	mu  sync.Mutex
	idx regionIndex
}

// Catalog is a lazily populated, memoized name -> id lookup.
type Catalog struct {
	gw ovh.Gateway

	mu        sync.Mutex
	projectID string

	projects category // "" region, description -> project id
	flavors  category
	images   category
	sshKeys  category
}

// New creates a catalog bound to a project id. The project id may be empty
// when only ProjectID lookups are needed; call Bind afterwards.
func New(gw ovh.Gateway, projectID string) *Catalog {
	return &Catalog{gw: gw, projectID: projectID}
}

// Bind sets the project the per-project categories are fetched from.
// It must be called before any flavor, image or ssh key lookup.
func (c *Catalog) Bind(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectID = projectID
}

// ProjectID resolves a project description to its id.
func (c *Catalog) ProjectID(ctx context.Context, description string) (string, error) {
	if err := c.ensureProjects(ctx); err != nil {
		return "", err
	}
	return lookup(KindProject, &c.projects, "", description)
}

// FlavorID resolves a flavor name within a region.
func (c *Catalog) FlavorID(ctx context.Context, region, name string) (string, error) {
	if err := c.ensureFlavors(ctx); err != nil {
		return "", err
	}
	return lookup(KindFlavor, &c.flavors, region, name)
}

// ImageID resolves an image name within a region.
func (c *Catalog) ImageID(ctx context.Context, region, name string) (string, error) {
	if err := c.ensureImages(ctx); err != nil {
		return "", err
	}
	return lookup(KindImage, &c.images, region, name)
}

// SSHKeyID resolves an ssh key name within a region.
func (c *Catalog) SSHKeyID(ctx context.Context, region, name string) (string, error) {
	if err := c.ensureSSHKeys(ctx); err != nil {
		return "", err
	}
	return lookup(KindSSHKey, &c.sshKeys, region, name)
}

// Flavors returns the sorted flavor names available in region.
func (c *Catalog) Flavors(ctx context.Context, region string) ([]string, error) {
	if err := c.ensureFlavors(ctx); err != nil {
		return nil, err
	}
	return names(&c.flavors, region), nil
}

// Images returns the sorted image names available in region.
func (c *Catalog) Images(ctx context.Context, region string) ([]string, error) {
	if err := c.ensureImages(ctx); err != nil {
		return nil, err
	}
	return names(&c.images, region), nil
}

// SSHKeys returns the sorted ssh key names available in region.
func (c *Catalog) SSHKeys(ctx context.Context, region string) ([]string, error) {
	if err := c.ensureSSHKeys(ctx); err != nil {
		return nil, err
	}
	return names(&c.sshKeys, region), nil
}

// Regions returns every region that offers at least one flavor.
func (c *Catalog) Regions(ctx context.Context) ([]string, error) {
	if err := c.ensureFlavors(ctx); err != nil {
		return nil, err
	}
	c.flavors.mu.Lock()
	defer c.flavors.mu.Unlock()
	regions := make([]string, 0, len(c.flavors.idx))
	for r := range c.flavors.idx {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions, nil
}

// Warm populates the flavor, image and ssh key categories concurrently.
func (c *Catalog) Warm(ctx context.Context) error {
	return async.RunParallel(ctx, []async.Task{
		{Name: "flavors", Func: c.ensureFlavors},
		{Name: "images", Func: c.ensureImages},
		{Name: "ssh keys", Func: c.ensureSSHKeys},
	})
}

func lookup(kind Kind, cat *category, region, name string) (string, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	id, ok := cat.idx[region][name]
	if !ok {
		if region == "" {
			return "", &NotFoundError{Kind: kind, Name: name}
		}
		return "", &NotFoundError{Kind: kind, Region: region, Name: name}
	}
	return id, nil
}

func names(cat *category, region string) []string {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	out := make([]string, 0, len(cat.idx[region]))
	for name := range cat.idx[region] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) boundProject() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.projectID == "" {
		return "", fmt.Errorf("catalog is not bound to a project")
	}
	return c.projectID, nil
}
