// Package dcos prepares the genconf directory consumed by the DC/OS
// installer: the config.yaml describing the cluster and the files the
// operator has to provide.
package dcos

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Files inside the genconf directory.
const (
	ConfigFile   = "config.yaml"
	IPDetectFile = "ip-detect"
	SSHKeyFile   = "ssh_key"
)

// Static cluster defaults.
const (
	DefaultBootstrapURL   = "file:///opt/dcos_install_tmp"
	DefaultClusterName    = "OVH Test"
	DefaultProcessTimeout = 10000
	DefaultSSHPort        = 22
)

// DefaultResolvers are the upstream DNS servers of the cluster.
var DefaultResolvers = []string{"8.8.8.8", "8.8.4.4"}

// Config is genconf/config.yaml.
type Config struct {
	BootstrapURL            string   `yaml:"bootstrap_url"`
	ClusterName             string   `yaml:"cluster_name"`
	ExhibitorStorageBackend string   `yaml:"exhibitor_storage_backend"`
	MasterDiscovery         string   `yaml:"master_discovery"`
	ProcessTimeout          int      `yaml:"process_timeout"`
	Resolvers               []string `yaml:"resolvers"`
	SSHPort                 int      `yaml:"ssh_port"`
	// TelemetryEnabled is a string because the installer expects the quoted
	// form.
	TelemetryEnabled string   `yaml:"telemetry_enabled"`
	MasterList       []string `yaml:"master_list"`
	AgentList        []string `yaml:"agent_list"`
	SSHUser          string   `yaml:"ssh_user"`
}

// NewConfig returns the static defaults completed with the cluster's hosts.
func NewConfig(masters, agents []string, sshUser string) *Config {
	return &Config{
		BootstrapURL:            DefaultBootstrapURL,
		ClusterName:             DefaultClusterName,
		ExhibitorStorageBackend: "static",
		MasterDiscovery:         "static",
		ProcessTimeout:          DefaultProcessTimeout,
		Resolvers:               append([]string(nil), DefaultResolvers...),
		SSHPort:                 DefaultSSHPort,
		TelemetryEnabled:        "false",
		MasterList:              nonNil(masters),
		AgentList:               nonNil(agents),
		SSHUser:                 sshUser,
	}
}

// Write stores cfg as config.yaml in dir and returns the file's path.
func Write(dir string, cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// Load reads config.yaml from dir.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
