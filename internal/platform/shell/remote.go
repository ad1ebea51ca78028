package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
)

// Remote runs commands on a host over ssh.
type Remote struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout bounds the TCP connect and handshake. Zero means 10s.
	DialTimeout time.Duration
}

func (r Remote) String() string {
	return fmt.Sprintf("%s@%s", r.User, r.Host)
}

func (r Remote) clientConfig() (*ssh.ClientConfig, error) {
	if r.Host == "" {
		return nil, errors.New("remote host cannot be empty")
	}
	if r.User == "" {
		return nil, errors.New("remote user cannot be empty")
	}
	if len(r.PrivateKey) == 0 {
		return nil, errors.New("remote private key cannot be empty")
	}
	signer, err := ssh.ParsePrivateKey(r.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	timeout := r.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}
	return &ssh.ClientConfig{
		User:            r.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // instances are created by this run
		Timeout:         timeout,
	}, nil
}

func (r Remote) dial(ctx context.Context, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	port := r.Port
	if port == 0 {
		port = defaultPort
	}
	addr := net.JoinHostPort(r.Host, strconv.Itoa(port))

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if deadline, ok := dialCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(c, chans, reqs), nil
}

// Start connects, requests a pty and starts command in a new session.
func (r Remote) Start(ctx context.Context, command string) (*Process, error) {
	cfg, err := r.clientConfig()
	if err != nil {
		return nil, err
	}
	client, err := r.dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	session, err := client.NewSession()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create ssh session on %s: %w", r.Host, err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("xterm", 40, 200, modes); err != nil {
		_ = session.Close()
		_ = client.Close()
		return nil, fmt.Errorf("failed to request pty on %s: %w", r.Host, err)
	}

	pr, pw := io.Pipe()
	session.Stdout = pw
	session.Stderr = pw

	if err := session.Start(command); err != nil {
		_ = session.Close()
		_ = client.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("failed to start %q on %s: %w", command, r.Host, err)
	}

	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Signal(ssh.SIGKILL)
			_ = client.Close()
		case <-finished:
		}
	}()

	done := make(chan exitStatus, 1)
	go func() {
		err := session.Wait()
		close(finished)
		_ = session.Close()
		_ = client.Close()
		_ = pw.Close()
		done <- remoteStatus(ctx, err)
	}()

	return newProcess(r.String(), command, pr, done), nil
}

func remoteStatus(ctx context.Context, err error) exitStatus {
	if err == nil {
		return exitStatus{}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return exitStatus{code: -1, err: ctxErr}
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitStatus{code: exitErr.ExitStatus()}
	}
	return exitStatus{code: -1, err: err}
}
