package ovh

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ovh/go-ovh/ovh"
)

// MockAPI is a mock implementation of API.
type MockAPI struct {
	GetFunc    func(ctx context.Context, url string, resType interface{}) error
	PostFunc   func(ctx context.Context, url string, reqBody, resType interface{}) error
	DeleteFunc func(ctx context.Context, url string, resType interface{}) error
}

// GetWithContext implements API.
func (m *MockAPI) GetWithContext(ctx context.Context, url string, resType interface{}) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, url, resType)
	}
	return nil
}

// PostWithContext implements API.
func (m *MockAPI) PostWithContext(ctx context.Context, url string, reqBody, resType interface{}) error {
	if m.PostFunc != nil {
		return m.PostFunc(ctx, url, reqBody, resType)
	}
	return nil
}

// DeleteWithContext implements API.
func (m *MockAPI) DeleteWithContext(ctx context.Context, url string, resType interface{}) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, url, resType)
	}
	return nil
}

// MockGateway is a mock implementation of Gateway that records every call.
type MockGateway struct {
	GetFunc    func(ctx context.Context, path string, result any) error
	PostFunc   func(ctx context.Context, path string, body, result any) error
	DeleteFunc func(ctx context.Context, path string, result any) error

	mu    sync.Mutex
	calls []string
}

// Get implements Gateway.
func (m *MockGateway) Get(ctx context.Context, path string, result any) error {
	m.record("GET " + path)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, path, result)
	}
	return nil
}

// Post implements Gateway.
func (m *MockGateway) Post(ctx context.Context, path string, body, result any) error {
	m.record("POST " + path)
	if m.PostFunc != nil {
		return m.PostFunc(ctx, path, body, result)
	}
	return nil
}

// Delete implements Gateway.
func (m *MockGateway) Delete(ctx context.Context, path string, result any) error {
	m.record("DELETE " + path)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path, result)
	}
	return nil
}

// Calls returns the recorded "METHOD path" strings in call order.
func (m *MockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times "METHOD path" was called.
func (m *MockGateway) CallCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *MockGateway) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Fill copies value into result the way a JSON response would be decoded.
// It lets mocks answer with plain Go values.
func Fill(result, value any) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

// NewAPIError builds the error go-ovh returns for a non-2xx response.
func NewAPIError(code int, message string) error {
	return &ovh.APIError{Code: code, Message: message}
}
