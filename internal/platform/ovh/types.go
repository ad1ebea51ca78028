package ovh

import "fmt"

// Project is the description of a cloud project.
type Project struct {
	ProjectID   string `json:"project_id"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
}

// Flavor is a machine type offered in a region.
type Flavor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
	OSType string `json:"osType"`
}

// Image is an operating system image offered in a region.
type Image struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// SSHKey is a public key registered in the project.
type SSHKey struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Regions []string `json:"regions"`
}

// IPAddress is one address attached to an instance.
type IPAddress struct {
	IP      string `json:"ip"`
	Type    string `json:"type"`
	Version int    `json:"version"`
}

// Instance is the provider's view of a virtual machine.
type Instance struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Status      string      `json:"status"`
	Region      string      `json:"region,omitempty"`
	IPAddresses []IPAddress `json:"ipAddresses,omitempty"`
}

// PublicIPv4 returns the first public IPv4 address, falling back to the
// first address of any kind. It returns "" when none is assigned yet.
func (i *Instance) PublicIPv4() string {
	for _, addr := range i.IPAddresses {
		if addr.Type == "public" && addr.Version == 4 && addr.IP != "" {
			return addr.IP
		}
	}
	if len(i.IPAddresses) > 0 {
		return i.IPAddresses[0].IP
	}
	return ""
}

// Provider-reported instance statuses.
const (
	StatusBuild  = "BUILD"
	StatusActive = "ACTIVE"
	StatusError  = "ERROR"
)

// BulkCreateRequest is the body of a bulk instance creation.
type BulkCreateRequest struct {
	FlavorID       string `json:"flavorId"`
	ImageID        string `json:"imageId"`
	Name           string `json:"name"`
	Region         string `json:"region"`
	SSHKeyID       string `json:"sshKeyId"`
	MonthlyBilling bool   `json:"monthlyBilling"`
	Number         int    `json:"number"`
}

// ProjectsPath lists the service names of all projects.
func ProjectsPath() string { return "/cloud/project" }

// ProjectPath describes one project.
func ProjectPath(serviceName string) string {
	return fmt.Sprintf("/cloud/project/%s", serviceName)
}

// FlavorsPath lists all flavors of a project.
func FlavorsPath(projectID string) string {
	return fmt.Sprintf("/cloud/project/%s/flavor", projectID)
}

// ImagesPath lists all images of a project.
func ImagesPath(projectID string) string {
	return fmt.Sprintf("/cloud/project/%s/image", projectID)
}

// SSHKeysPath lists all ssh keys of a project.
func SSHKeysPath(projectID string) string {
	return fmt.Sprintf("/cloud/project/%s/sshkey", projectID)
}

// BulkInstancePath creates several instances at once.
func BulkInstancePath(projectID string) string {
	return fmt.Sprintf("/cloud/project/%s/instance/bulk", projectID)
}

// InstancePath addresses one instance.
func InstancePath(projectID, instanceID string) string {
	return fmt.Sprintf("/cloud/project/%s/instance/%s", projectID, instanceID)
}
