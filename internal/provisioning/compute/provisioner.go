package compute

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/imamik/ovhdcos/internal/metrics"
	"github.com/imamik/ovhdcos/internal/platform/ovh"
	"github.com/imamik/ovhdcos/internal/provisioning"
	"github.com/imamik/ovhdcos/internal/util/netutil"
)

const (
	phase        = "compute"
	resourceType = "instance"
)

// Resolver maps human-readable names to provider ids.
// *catalog.Catalog satisfies it.
type Resolver interface {
	FlavorID(ctx context.Context, region, name string) (string, error)
	ImageID(ctx context.Context, region, name string) (string, error)
	SSHKeyID(ctx context.Context, region, name string) (string, error)
}

// Provisioner owns the working set of instances for one deployment.
type Provisioner struct {
	gw        ovh.Gateway
	resolver  Resolver
	projectID string
	prober    netutil.Prober
	observer  provisioning.Observer
	metrics   *metrics.Recorder

	mu        sync.Mutex
	spec      Spec
	requested bool
	instances workingSet
	// faulted instances whose delete failed; retried on cleanup
	leftovers []string

	cleanupOnce sync.Once
	cleanupErr  error
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithProber sets the ssh reachability probe.
func WithProber(p netutil.Prober) Option {
	return func(pr *Provisioner) { pr.prober = p }
}

// WithObserver sets the observer receiving progress events.
func WithObserver(o provisioning.Observer) Option {
	return func(pr *Provisioner) { pr.observer = o }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(pr *Provisioner) { pr.metrics = r }
}

// NewProvisioner creates a compute provisioner for the given project.
func NewProvisioner(gw ovh.Gateway, resolver Resolver, projectID string, opts ...Option) *Provisioner {
	p := &Provisioner{
		gw:        gw,
		resolver:  resolver,
		projectID: projectID,
		prober:    netutil.TCPProber{Timeout: netutil.DefaultProbeTimeout},
		observer:  provisioning.NewConsoleObserver(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
// It requests every instance, waits until all of them are ready and records
// their addresses in the shared state.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	opts := ctx.Options
	spec := Spec{
		Name:   opts.Name,
		Region: opts.Region,
		Flavor: opts.Flavor,
		Image:  opts.Image,
		SSHKey: opts.SSHKey,
		Count:  opts.Total(),
	}
	if _, err := p.RequestBulk(ctx, spec); err != nil {
		return err
	}

	waitCtx := context.Context(ctx)
	if opts.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.ReadyTimeout)
		defer cancel()
	}
	if err := p.AwaitReady(waitCtx, opts.PollInterval); err != nil {
		return err
	}

	hosts, err := p.ReadyAddresses()
	if err != nil {
		return err
	}
	ctx.State.Hosts = hosts
	return nil
}

// RequestBulk issues a single bulk create for spec.Count instances and adds
// them to the working set in the order the provider returned them.
func (p *Provisioner) RequestBulk(ctx context.Context, spec Spec) ([]Instance, error) {
	if spec.Count < 1 {
		return nil, fmt.Errorf("instance count must be at least 1, got %d", spec.Count)
	}

	p.mu.Lock()
	if p.requested {
		p.mu.Unlock()
		return nil, errors.New("instances have already been requested")
	}
	p.requested = true
	p.spec = spec
	p.mu.Unlock()

	p.observer.Printf("[%s] Requesting %d instance(s) of %s with %s in %s...",
		phase, spec.Count, spec.Flavor, spec.Image, spec.Region)

	created, err := p.create(ctx, spec, spec.Count)

	p.mu.Lock()
	p.instances = append(p.instances, created...)
	out := p.instances.snapshot()
	p.mu.Unlock()

	p.metrics.InstancesRequested(len(created))
	if err != nil {
		return out, err
	}

	p.observer.Printf("[%s] Requested instances: %s", phase, ids(out))
	return out, nil
}

// AwaitReady polls the provider until every instance in the working set is
// Ready. Each pass sleeps interval first. An instance in ERROR is replaced and
// a new pass starts without sleeping. The wait ends early when ctx is done.
func (p *Provisioner) AwaitReady(ctx context.Context, interval time.Duration) error {
	p.mu.Lock()
	empty := len(p.instances) == 0
	p.mu.Unlock()
	if empty {
		return errors.New("no instances to wait for")
	}

	restart := false
	for {
		p.mu.Lock()
		done := p.instances.allReady()
		p.mu.Unlock()
		if done {
			p.observer.Printf("[%s] All instances are ready", phase)
			return nil
		}

		if restart {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("timed out waiting for instances to become ready: %w", err)
			}
		} else if err := sleep(ctx, interval); err != nil {
			return fmt.Errorf("timed out waiting for instances to become ready: %w", err)
		}

		p.metrics.PollPass()
		var err error
		if restart, err = p.pollPass(ctx); err != nil {
			return err
		}
	}
}

// pollPass queries every instance that is not Ready yet. It stops early and
// reports true after an instance was replaced.
func (p *Provisioner) pollPass(ctx context.Context) (bool, error) {
	for _, id := range p.pending() {
		var remote ovh.Instance
		if err := p.gw.Get(ctx, ovh.InstancePath(p.projectID, id), &remote); err != nil {
			return false, fmt.Errorf("failed to get status of instance %s: %w", id, err)
		}
		p.metrics.InstanceStatus(remote.Status)

		switch remote.Status {
		case ovh.StatusBuild:
			p.observer.Printf("[%s] Instance %s is still being built", phase, id)
			p.setStatus(id, StatusBuilding, "")

		case ovh.StatusActive:
			ip := remote.PublicIPv4()
			if ip == "" {
				p.observer.Printf("[%s] Instance %s is active, waiting for an address", phase, id)
				p.setStatus(id, StatusActive, "")
				continue
			}
			if p.prober.Reachable(ctx, ip, netutil.SSHPort) {
				p.setStatus(id, StatusReady, ip)
				provisioning.LogResourceCreated(p.observer, phase, resourceType, ip, id)
			} else {
				p.observer.Printf("[%s] Instance %s is active with IP %s, waiting for ssh", phase, id, ip)
				p.setStatus(id, StatusSSHPending, ip)
			}

		case ovh.StatusError:
			p.setStatus(id, StatusErrored, "")
			fault := &InstanceFaultError{ID: id, Status: remote.Status}
			provisioning.LogResourceFailed(p.observer, phase, resourceType, id, fault.Error())
			return true, p.replace(ctx, id, fault)

		default:
			p.observer.Printf("[%s] Instance %s has unexpected status %q, still waiting", phase, id, remote.Status)
		}
	}
	return false, nil
}

// replace deletes a faulted instance and swaps in a fresh one at the same
// position. A faulted instance whose delete fails is retried on cleanup.
// When the new request fails the faulted instance leaves the working set
// and the error is returned.
func (p *Provisioner) replace(ctx context.Context, id string, fault *InstanceFaultError) error {
	provisioning.LogResourceDeleting(p.observer, phase, resourceType, id)
	if err := p.gw.Delete(ctx, ovh.InstancePath(p.projectID, id), nil); err != nil && !ovh.IsNotFound(err) {
		p.observer.Printf("[%s] Failed to delete faulted instance %s (continuing, retried on cleanup): %v", phase, id, err)
		p.mu.Lock()
		p.leftovers = append(p.leftovers, id)
		p.mu.Unlock()
	} else {
		provisioning.LogResourceDeleted(p.observer, phase, resourceType, id)
	}

	p.mu.Lock()
	spec := p.spec
	p.mu.Unlock()

	created, err := p.create(ctx, spec, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.instances.index(id)
	if err != nil || len(created) != 1 {
		if i >= 0 {
			p.instances = append(p.instances[:i], p.instances[i+1:]...)
		}
		p.instances = append(p.instances, created...)
		return fmt.Errorf("failed to replace instance %s: %w", id, errors.Join(fault, err))
	}

	if i >= 0 {
		p.instances[i] = created[0]
	} else {
		p.instances = append(p.instances, created[0])
	}
	p.metrics.InstanceReplaced()
	p.observer.Printf("[%s] Replaced instance %s with %s", phase, id, created[0].ID)
	return nil
}

// create resolves the spec and posts a bulk request for count instances.
// Instances the provider returned are handed back even on error so they can
// be tracked for cleanup.
func (p *Provisioner) create(ctx context.Context, spec Spec, count int) ([]*Instance, error) {
	flavorID, err := p.resolver.FlavorID(ctx, spec.Region, spec.Flavor)
	if err != nil {
		return nil, err
	}
	imageID, err := p.resolver.ImageID(ctx, spec.Region, spec.Image)
	if err != nil {
		return nil, err
	}
	keyID, err := p.resolver.SSHKeyID(ctx, spec.Region, spec.SSHKey)
	if err != nil {
		return nil, err
	}

	req := ovh.BulkCreateRequest{
		FlavorID: flavorID,
		ImageID:  imageID,
		Name:     spec.Name,
		Region:   spec.Region,
		SSHKeyID: keyID,
		Number:   count,
	}
	provisioning.LogResourceCreating(p.observer, phase, resourceType, spec.Name)

	var remote []ovh.Instance
	if err := p.gw.Post(ctx, ovh.BulkInstancePath(p.projectID), req, &remote); err != nil {
		return nil, &ProvisioningError{Count: count, Err: err}
	}

	p.mu.Lock()
	known := make(map[string]bool, len(p.instances))
	for _, inst := range p.instances {
		known[inst.ID] = true
	}
	p.mu.Unlock()

	created := make([]*Instance, 0, len(remote))
	for _, r := range remote {
		if r.ID == "" || known[r.ID] {
			continue
		}
		known[r.ID] = true
		created = append(created, &Instance{ID: r.ID, Status: StatusRequested})
	}
	if len(created) != count {
		return created, &ProvisioningError{
			Count: count,
			Err:   fmt.Errorf("provider returned %d new instance(s)", len(created)),
		}
	}
	return created, nil
}

// Instances returns a snapshot of the working set.
func (p *Provisioner) Instances() []Instance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.instances.snapshot()
}

// ReadyAddresses returns the addresses of all instances in working-set order.
// It fails unless every instance is Ready.
func (p *Provisioner) ReadyAddresses() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	addrs := make([]string, 0, len(p.instances))
	for _, inst := range p.instances {
		if inst.Status != StatusReady {
			return nil, fmt.Errorf("instance %s is %s, not ready", inst.ID, inst.Status)
		}
		addrs = append(addrs, inst.IP)
	}
	return addrs, nil
}

// Cleanup deletes every instance in the working set. Only the first call
// does any work; later calls return its result. Failures are logged and
// returned, never raised.
func (p *Provisioner) Cleanup(ctx context.Context) error {
	p.cleanupOnce.Do(func() {
		p.cleanupErr = p.deleteAll(ctx)
	})
	return p.cleanupErr
}

func (p *Provisioner) deleteAll(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cleanup panicked: %v", r)
			p.observer.Printf("[%s] %v", phase, err)
		}
	}()

	p.mu.Lock()
	targets := make([]string, 0, len(p.instances)+len(p.leftovers))
	for _, inst := range p.instances {
		targets = append(targets, inst.ID)
	}
	targets = append(targets, p.leftovers...)
	p.mu.Unlock()
	if len(targets) == 0 {
		return nil
	}

	p.observer.Printf("[%s] Deleting %d instance(s)...", phase, len(targets))
	var errs []error
	for _, id := range targets {
		provisioning.LogResourceDeleting(p.observer, phase, resourceType, id)
		delErr := p.gw.Delete(ctx, ovh.InstancePath(p.projectID, id), nil)
		if ovh.IsNotFound(delErr) {
			delErr = nil
		}
		p.metrics.CleanupDelete(delErr)
		if delErr != nil {
			p.observer.Printf("[%s] Failed to delete instance %s: %v", phase, id, delErr)
			errs = append(errs, fmt.Errorf("instance %s: %w", id, delErr))
			continue
		}
		provisioning.LogResourceDeleted(p.observer, phase, resourceType, id)
		p.remove(id)
	}
	return errors.Join(errs...)
}

func (p *Provisioner) pending() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, inst := range p.instances {
		if inst.Status != StatusReady {
			out = append(out, inst.ID)
		}
	}
	return out
}

func (p *Provisioner) setStatus(id string, s Status, ip string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := p.instances.index(id); i >= 0 {
		p.instances[i].Status = s
		if ip != "" {
			p.instances[i].IP = ip
		}
	}
}

func (p *Provisioner) remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := p.instances.index(id); i >= 0 {
		p.instances = append(p.instances[:i], p.instances[i+1:]...)
	}
	p.leftovers = slices.DeleteFunc(p.leftovers, func(l string) bool { return l == id })
}

func ids(instances []Instance) string {
	out := make([]string, len(instances))
	for i, inst := range instances {
		out[i] = inst.ID
	}
	return strings.Join(out, ", ")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
