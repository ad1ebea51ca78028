package provisioning

import (
	"fmt"
	"strings"
	"sync"
)

// MockObserver is an Observer that records everything it receives.
// It is safe for concurrent use.
type MockObserver struct {
	mu       sync.Mutex
	events   []Event
	messages []string
	fields   map[string]string
}

// NewMockObserver creates an empty MockObserver.
func NewMockObserver() *MockObserver {
	return &MockObserver{fields: make(map[string]string)}
}

// Printf implements Logger.
func (m *MockObserver) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (m *MockObserver) Event(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, withContext(event, m.fields))
}

// Progress implements Observer.
func (m *MockObserver) Progress(phase string, current, total int) {
	m.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("%d/%d", current, total),
	})
}

// WithFields implements Observer. The child shares the parent's records.
func (m *MockObserver) WithFields(fields map[string]string) Observer {
	return &mockChild{parent: m, fields: fields}
}

// Events returns a copy of the recorded events.
func (m *MockObserver) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// EventsOfType returns the recorded events of type t.
func (m *MockObserver) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns a copy of the recorded Printf messages.
func (m *MockObserver) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// HasMessage reports whether any recorded message contains substr.
func (m *MockObserver) HasMessage(substr string) bool {
	for _, msg := range m.Messages() {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

type mockChild struct {
	parent *MockObserver
	fields map[string]string
}

func (c *mockChild) Printf(format string, v ...interface{}) { c.parent.Printf(format, v...) }

func (c *mockChild) Event(event Event) { c.parent.Event(withContext(event, c.fields)) }

func (c *mockChild) Progress(phase string, current, total int) {
	c.parent.Progress(phase, current, total)
}

func (c *mockChild) WithFields(fields map[string]string) Observer {
	return &mockChild{parent: c.parent, fields: mergeFields(c.fields, fields)}
}
