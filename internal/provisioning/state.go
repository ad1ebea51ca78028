package provisioning

// State holds the shared results of deployment phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Compute results (populated by the compute provisioner)
	Hosts []string // ready instance addresses, in working-set order

	// Role assignment (populated once all hosts are ready)
	Masters []string
	Agents  []string

	// Installer artifact (populated by the installer fetch)
	InstallerPath string
}

// NewState creates an empty deployment state.
func NewState() *State {
	return &State{}
}
