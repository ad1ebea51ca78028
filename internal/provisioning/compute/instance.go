package compute

import "fmt"

// Status is the provisioner's view of an instance's lifecycle.
type Status int

// Instance lifecycle states.
const (
	StatusRequested  Status = iota // create call accepted, nothing observed yet
	StatusBuilding                 // provider reports BUILD
	StatusActive                   // provider reports ACTIVE, no address yet
	StatusSSHPending               // address assigned, ssh port not reachable yet
	StatusReady                    // ssh port reachable
	StatusErrored                  // provider reports ERROR, about to be replaced
)

func (s Status) String() string {
	switch s {
	case StatusRequested:
		return "Requested"
	case StatusBuilding:
		return "Building"
	case StatusActive:
		return "Active"
	case StatusSSHPending:
		return "SSHPending"
	case StatusReady:
		return "Ready"
	case StatusErrored:
		return "Errored"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Instance is one member of the working set.
type Instance struct {
	ID     string
	IP     string
	Status Status
}

// Spec holds the parameters of an instance request.
type Spec struct {
	Name   string
	Region string
	Flavor string
	Image  string
	SSHKey string
	Count  int
}

// workingSet is the ordered collection of all instances of the run.
// Callers hold the provisioner's lock.
type workingSet []*Instance

func (ws workingSet) index(id string) int {
	for i, inst := range ws {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

func (ws workingSet) allReady() bool {
	for _, inst := range ws {
		if inst.Status != StatusReady {
			return false
		}
	}
	return true
}

func (ws workingSet) snapshot() []Instance {
	out := make([]Instance, len(ws))
	for i, inst := range ws {
		out[i] = *inst
	}
	return out
}
