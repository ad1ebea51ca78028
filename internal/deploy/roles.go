package deploy

import "fmt"

// Roles splits the cluster's addresses into masters and agents.
type Roles struct {
	Masters []string
	Agents  []string
}

// AssignRoles makes the first masters addresses masters and the last agents
// addresses agents. The counts must add up to len(addrs).
func AssignRoles(addrs []string, masters, agents int) (Roles, error) {
	if masters < 1 {
		return Roles{}, fmt.Errorf("at least one master is required, got %d", masters)
	}
	if agents < 0 {
		return Roles{}, fmt.Errorf("agent count cannot be negative, got %d", agents)
	}
	if masters+agents != len(addrs) {
		return Roles{}, fmt.Errorf("%d masters and %d agents do not match %d ready hosts", masters, agents, len(addrs))
	}

	seen := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		if a == "" {
			return Roles{}, fmt.Errorf("host address cannot be empty")
		}
		if seen[a] {
			return Roles{}, fmt.Errorf("duplicate host address %s", a)
		}
		seen[a] = true
	}

	return Roles{
		Masters: append([]string(nil), addrs[:masters]...),
		Agents:  append([]string{}, addrs[len(addrs)-agents:]...),
	}, nil
}
