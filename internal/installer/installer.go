package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/imamik/ovhdcos/internal/platform/s3"
	"github.com/imamik/ovhdcos/internal/provisioning"
)

// FileName is the installer script's name in the working directory.
const FileName = "dcos_generate_config.sh"

const phase = "installer"

// ObjectStore reads objects from S3-compatible storage.
// *s3.Client satisfies it.
type ObjectStore interface {
	Size(ctx context.Context, bucket, key string) (int64, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error)
}

// Result describes a fetched installer.
type Result struct {
	Path    string
	Size    int64
	Skipped bool
}

// Fetcher downloads the installer.
type Fetcher struct {
	HTTP     *http.Client
	Observer provisioning.Observer

	// Store opens s3:// URLs. Nil makes NewStore build one from the
	// environment on first use.
	Store    ObjectStore
	NewStore func(ctx context.Context) (ObjectStore, error)
}

// NewFetcher creates a Fetcher with default clients.
func NewFetcher(observer provisioning.Observer) *Fetcher {
	if observer == nil {
		observer = provisioning.NewConsoleObserver()
	}
	return &Fetcher{
		HTTP:     http.DefaultClient,
		Observer: observer,
		NewStore: func(ctx context.Context) (ObjectStore, error) {
			return s3.NewClientFromEnv(ctx)
		},
	}
}

// Fetch stores the installer at rawURL as dest. An existing dest with the
// remote size is kept as is.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dest string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid installer URL %q: %w", rawURL, err)
	}

	f.Observer.Printf("[%s] Downloading DC/OS installer from %s", phase, rawURL)

	var (
		body   io.ReadCloser
		remote int64
	)
	switch u.Scheme {
	case "http", "https":
		body, remote, err = f.openHTTP(ctx, rawURL)
	case "s3":
		body, remote, err = f.openObject(ctx, rawURL, dest)
	default:
		return nil, fmt.Errorf("unsupported installer URL scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	if body == nil {
		return &Result{Path: dest, Size: remote, Skipped: true}, nil
	}
	defer body.Close()

	if local, ok := localSize(dest); ok && remote >= 0 {
		if local == remote {
			f.Observer.Printf("[%s] Local file %s matches remote file size %d, skipping download", phase, dest, remote)
			return &Result{Path: dest, Size: remote, Skipped: true}, nil
		}
		f.Observer.Printf("[%s] Local file %s with size %d doesn't match remote file size %d", phase, dest, local, remote)
	}

	n, err := f.store(body, remote, dest)
	if err != nil {
		return nil, err
	}
	return &Result{Path: dest, Size: n}, nil
}

func (f *Fetcher) openHTTP(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to download installer: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("failed to download installer: unexpected status %s", resp.Status)
	}
	return resp.Body, resp.ContentLength, nil
}

// openObject checks the object's size before opening it so a cached copy
// never transfers the body. It returns a nil body when dest is current.
func (f *Fetcher) openObject(ctx context.Context, rawURL, dest string) (io.ReadCloser, int64, error) {
	bucket, key, err := s3.ParseURL(rawURL)
	if err != nil {
		return nil, 0, err
	}
	if f.Store == nil {
		if f.NewStore == nil {
			return nil, 0, errors.New("no object store configured")
		}
		if f.Store, err = f.NewStore(ctx); err != nil {
			return nil, 0, err
		}
	}

	remote, err := f.Store.Size(ctx, bucket, key)
	if err != nil {
		return nil, 0, err
	}
	if local, ok := localSize(dest); ok && local == remote {
		f.Observer.Printf("[%s] Local file %s matches remote file size %d, skipping download", phase, dest, remote)
		return nil, remote, nil
	}
	return f.Store.Open(ctx, bucket, key)
}

// store writes body next to dest and renames it into place once complete.
func (f *Fetcher) store(body io.Reader, total int64, dest string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	pw := &progressWriter{observer: f.Observer, total: total, last: -1}
	n, err := io.Copy(io.MultiWriter(tmp, pw), body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to download installer: %w", err)
	}
	if total >= 0 && n != total {
		return 0, fmt.Errorf("failed to download installer: got %d of %d bytes", n, total)
	}

	if err := os.Chmod(tmp.Name(), 0755); err != nil {
		return 0, fmt.Errorf("failed to make installer executable: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("failed to store installer: %w", err)
	}
	f.Observer.Printf("[%s] Stored installer at %s (%d bytes)", phase, dest, n)
	return n, nil
}

func localSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// progressWriter reports every 10 percent step of a download of known size.
type progressWriter struct {
	observer provisioning.Observer
	total    int64
	written  int64
	last     int
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total <= 0 {
		return len(b), nil
	}
	pct := int(p.written * 100 / p.total)
	if step := pct - pct%10; step > p.last {
		p.last = step
		p.observer.Progress(phase, step, 100)
	}
	return len(b), nil
}
