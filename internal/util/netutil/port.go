// Package netutil provides network utility functions for port checking.
package netutil

import (
	"context"
	"net"
	"strconv"
	"time"
)

const (
	// SSHPort is the port probed to decide whether a host accepts remote shells.
	SSHPort = 22

	// DefaultProbeTimeout bounds a single reachability probe.
	DefaultProbeTimeout = 2 * time.Second
)

// Prober decides whether a TCP port on a host accepts connections.
type Prober interface {
	Reachable(ctx context.Context, ip string, port int) bool
}

// TCPProber probes with a single bounded TCP connect.
type TCPProber struct {
	Timeout time.Duration
}

// Reachable implements Prober.
func (p TCPProber) Reachable(ctx context.Context, ip string, port int) bool {
	return Probe(ctx, ip, port, p.Timeout)
}

// Probe attempts one TCP connection to ip:port and reports whether it
// succeeded within timeout. A non-positive timeout uses DefaultProbeTimeout.
func Probe(ctx context.Context, ip string, port int, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
