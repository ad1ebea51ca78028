package config

import (
	"fmt"
	"path/filepath"
	"time"
)

const genconfDirName = "genconf"

// Defaults for optional operator inputs.
const (
	DefaultRegion       = "SBG1"
	DefaultFlavor       = "hg-15"
	DefaultImage        = "Centos 7"
	DefaultSSHUser      = "centos"
	DefaultName         = "Test"
	DefaultInstallerURL = "https://downloads.dcos.io/dcos/EarlyAccess/dcos_generate_config.sh"
	DefaultWorkDir      = "."
	DefaultPollInterval = 5 * time.Second
	DefaultReadyTimeout = 30 * time.Minute
)

// Options holds everything one deployment run needs from the operator.
type Options struct {
	// Required
	Project string // OVH project description
	SSHKey  string // name of the ssh key registered in the project
	Masters int
	Agents  int

	// Optional
	Region       string
	Flavor       string
	Image        string
	SSHUser      string
	Name         string
	InstallerURL string // http(s):// or s3://bucket/key
	WorkDir      string // installer download and genconf/ parent

	PollInterval time.Duration
	ReadyTimeout time.Duration // zero disables the deadline

	// Hold keeps the cluster alive after a successful deploy until the
	// operator confirms destruction.
	Hold bool

	PushgatewayURL string
}

// NewOptions returns Options populated with defaults.
func NewOptions() *Options {
	return &Options{
		Masters:      1,
		Agents:       1,
		Region:       DefaultRegion,
		Flavor:       DefaultFlavor,
		Image:        DefaultImage,
		SSHUser:      DefaultSSHUser,
		Name:         DefaultName,
		InstallerURL: DefaultInstallerURL,
		WorkDir:      DefaultWorkDir,
		PollInterval: DefaultPollInterval,
		ReadyTimeout: DefaultReadyTimeout,
		Hold:         true,
	}
}

// GenconfDir is the genconf directory the installer reads from its working
// directory.
func (o *Options) GenconfDir() string {
	return filepath.Join(o.WorkDir, genconfDirName)
}

// Total returns the number of instances the run provisions.
func (o *Options) Total() int {
	return o.Masters + o.Agents
}

// Validate checks the options for errors.
func (o *Options) Validate() error {
	if o.Project == "" {
		return fmt.Errorf("project is required")
	}
	if o.SSHKey == "" {
		return fmt.Errorf("ssh key name is required")
	}
	if o.Masters < 1 {
		return fmt.Errorf("at least one master is required, got %d", o.Masters)
	}
	if o.Agents < 0 {
		return fmt.Errorf("agent count cannot be negative, got %d", o.Agents)
	}
	if o.Region == "" || o.Flavor == "" || o.Image == "" {
		return fmt.Errorf("region, flavor and image cannot be empty")
	}
	if o.WorkDir == "" {
		return fmt.Errorf("working directory cannot be empty")
	}
	if o.SSHUser == "" {
		return fmt.Errorf("ssh user cannot be empty")
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", o.PollInterval)
	}
	if o.ReadyTimeout < 0 {
		return fmt.Errorf("ready timeout cannot be negative, got %v", o.ReadyTimeout)
	}
	return nil
}
