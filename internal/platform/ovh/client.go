package ovh

import (
	"context"
	"fmt"

	"github.com/ovh/go-ovh/ovh"

	"github.com/imamik/ovhdcos/internal/util/retry"
)

// DefaultAttempts is the total number of attempts per API call.
const DefaultAttempts = 3

// API is the capability the deployer needs from an authenticated OVH client.
// *ovh.Client satisfies it.
type API interface {
	GetWithContext(ctx context.Context, url string, resType interface{}) error
	PostWithContext(ctx context.Context, url string, reqBody, resType interface{}) error
	DeleteWithContext(ctx context.Context, url string, resType interface{}) error
}

// Gateway is the request/response surface used by the catalog and the
// provisioner.
type Gateway interface {
	Get(ctx context.Context, path string, result any) error
	Post(ctx context.Context, path string, body, result any) error
	Delete(ctx context.Context, path string, result any) error
}

// NewClientFromEnv creates a go-ovh client. An empty endpoint lets go-ovh
// resolve it from OVH_ENDPOINT or ovh.conf.
func NewClientFromEnv(endpoint string) (*ovh.Client, error) {
	var (
		client *ovh.Client
		err    error
	)
	if endpoint == "" {
		client, err = ovh.NewDefaultClient()
	} else {
		client, err = ovh.NewEndpointClient(endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create OVH client: %w", err)
	}
	return client, nil
}

// RetryingGateway decorates an API with bounded retry on transient failures.
// It holds no state besides its configuration.
type RetryingGateway struct {
	api      API
	attempts int
}

// GatewayOption configures a RetryingGateway.
type GatewayOption func(*RetryingGateway)

// WithAttempts sets the total number of attempts per call.
func WithAttempts(n int) GatewayOption {
	return func(g *RetryingGateway) {
		if n > 0 {
			g.attempts = n
		}
	}
}

// NewGateway wraps api with retry.
func NewGateway(api API, opts ...GatewayOption) *RetryingGateway {
	g := &RetryingGateway{api: api, attempts: DefaultAttempts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Get implements Gateway.
func (g *RetryingGateway) Get(ctx context.Context, path string, result any) error {
	return g.do(ctx, "GET", path, func() error {
		return g.api.GetWithContext(ctx, path, result)
	})
}

// Post implements Gateway.
func (g *RetryingGateway) Post(ctx context.Context, path string, body, result any) error {
	return g.do(ctx, "POST", path, func() error {
		return g.api.PostWithContext(ctx, path, body, result)
	})
}

// Delete implements Gateway.
func (g *RetryingGateway) Delete(ctx context.Context, path string, result any) error {
	return g.do(ctx, "DELETE", path, func() error {
		return g.api.DeleteWithContext(ctx, path, result)
	})
}

// do runs call with the attempt ceiling. Retries are immediate; the provider
// signals throttling through 429 responses, which are themselves retried.
func (g *RetryingGateway) do(ctx context.Context, method, path string, call func() error) error {
	err := retry.Fixed(ctx, g.attempts, 0, func() error {
		err := call()
		if err != nil && !IsTransient(err) {
			return retry.Fatal(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}
