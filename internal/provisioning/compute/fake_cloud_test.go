package compute

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/imamik/ovhdcos/internal/platform/ovh"
)

const testProject = "proj-1"

// fakeCloud is an in-memory OVH project. Every created instance takes the
// next status script; a GET pops the script until one status is left.
type fakeCloud struct {
	mu sync.Mutex

	scripts   [][]string
	instances map[string]*fakeInstance
	nextID    int

	posts     []ovh.BulkCreateRequest
	gets      map[string]int
	deleted   []string
	postErr   func(n int, req ovh.BulkCreateRequest) error
	shortBy   int
	deleteErr map[string]error
}

type fakeInstance struct {
	statuses []string
	ip       string
}

func newFakeCloud(scripts ...[]string) *fakeCloud {
	return &fakeCloud{
		scripts:   scripts,
		instances: make(map[string]*fakeInstance),
		gets:      make(map[string]int),
		deleteErr: make(map[string]error),
	}
}

func (f *fakeCloud) Get(_ context.Context, path string, result any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch path {
	case ovh.FlavorsPath(testProject):
		return ovh.Fill(result, []ovh.Flavor{
			{ID: "flv-hg15", Name: "hg-15", Region: "SBG1", OSType: "linux"},
			{ID: "flv-win", Name: "win-hg-15", Region: "SBG1", OSType: "windows"},
		})
	case ovh.ImagesPath(testProject):
		return ovh.Fill(result, []ovh.Image{{ID: "img-centos7", Name: "Centos 7", Region: "SBG1"}})
	case ovh.SSHKeysPath(testProject):
		return ovh.Fill(result, []ovh.SSHKey{{ID: "key-1", Name: "deploy", Regions: []string{"SBG1", "GRA1"}}})
	}

	prefix := ovh.InstancePath(testProject, "")
	if !strings.HasPrefix(path, prefix) {
		return fmt.Errorf("unexpected GET %s", path)
	}
	id := strings.TrimPrefix(path, prefix)
	inst, ok := f.instances[id]
	if !ok {
		return ovh.NewAPIError(404, "instance not found")
	}
	f.gets[id]++
	status := inst.statuses[0]
	if len(inst.statuses) > 1 {
		inst.statuses = inst.statuses[1:]
	}
	remote := ovh.Instance{ID: id, Status: status}
	if status == ovh.StatusActive {
		remote.IPAddresses = []ovh.IPAddress{
			{IP: "fe80::1", Type: "public", Version: 6},
			{IP: inst.ip, Type: "public", Version: 4},
		}
	}
	return ovh.Fill(result, remote)
}

func (f *fakeCloud) Post(_ context.Context, path string, body, result any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if path != ovh.BulkInstancePath(testProject) {
		return fmt.Errorf("unexpected POST %s", path)
	}
	req := body.(ovh.BulkCreateRequest)
	f.posts = append(f.posts, req)
	if f.postErr != nil {
		if err := f.postErr(len(f.posts), req); err != nil {
			return err
		}
	}

	n := req.Number - f.shortBy
	created := make([]ovh.Instance, 0, n)
	for range n {
		f.nextID++
		id := fmt.Sprintf("inst-%d", f.nextID)
		script := []string{ovh.StatusActive}
		if len(f.scripts) > 0 {
			script, f.scripts = f.scripts[0], f.scripts[1:]
		}
		f.instances[id] = &fakeInstance{statuses: script, ip: fmt.Sprintf("10.0.0.%d", f.nextID)}
		created = append(created, ovh.Instance{ID: id, Name: req.Name, Status: ovh.StatusBuild, Region: req.Region})
	}
	return ovh.Fill(result, created)
}

func (f *fakeCloud) Delete(_ context.Context, path string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := strings.TrimPrefix(path, ovh.InstancePath(testProject, ""))
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	delete(f.instances, id)
	return nil
}

func (f *fakeCloud) Posts() []ovh.BulkCreateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ovh.BulkCreateRequest(nil), f.posts...)
}

func (f *fakeCloud) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeCloud) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.instances)
}

// fakeProber reports an address unreachable for a configured number of
// probes, then reachable.
type fakeProber struct {
	mu     sync.Mutex
	down   map[string]int
	probes []string
}

func (p *fakeProber) Reachable(_ context.Context, ip string, port int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes = append(p.probes, fmt.Sprintf("%s:%d", ip, port))
	if p.down[ip] > 0 {
		p.down[ip]--
		return false
	}
	return true
}
