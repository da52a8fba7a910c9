// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/shared"
)

var _ connection.Connection = (*MockConnection)(nil)

// Call is one recorded [MockConnection] invocation.
type Call struct {
	Method  string // "get_item", "get_list" or "post"
	Command string
	Params  connection.Params
}

// MockConnection is an in-memory [connection.Connection] that records every call.
//
// Responses are registered per command. Unregistered GetItem calls report
// [shared.ErrNoDataFound], GetList returns an empty page and Post returns null.
type MockConnection struct {
	mu     sync.Mutex
	calls  []Call
	items  map[string]json.RawMessage
	lists  map[string]*connection.ItemCollection
	posts  map[string]json.RawMessage
	errors map[string]error
}

func NewMockConnection() *MockConnection {
	return &MockConnection{
		items:  map[string]json.RawMessage{},
		lists:  map[string]*connection.ItemCollection{},
		posts:  map[string]json.RawMessage{},
		errors: map[string]error{},
	}
}

func mustMarshal(v any) json.RawMessage {
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("mock: cannot marshal %T: %v", v, err))
	}
	return data
}

// OnGetItem makes GetItem(command) return v encoded as JSON.
func (m *MockConnection) OnGetItem(command string, v any) *MockConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[command] = mustMarshal(v)
	return m
}

// OnGetList makes GetList(command) return items with total_count set to len(items).
func (m *MockConnection) OnGetList(command string, items ...any) *MockConnection {
	page := &connection.ItemCollection{TotalCount: len(items)}
	for _, it := range items {
		page.Items = append(page.Items, mustMarshal(it))
	}
	return m.OnGetPage(command, page)
}

// OnGetPage makes GetList(command) return page as is.
func (m *MockConnection) OnGetPage(command string, page *connection.ItemCollection) *MockConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[command] = page
	return m
}

// OnPost makes Post(method) return v encoded as JSON.
func (m *MockConnection) OnPost(method string, v any) *MockConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[method] = mustMarshal(v)
	return m
}

// Fail makes every call for command return err.
func (m *MockConnection) Fail(command string, err error) *MockConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[command] = err
	return m
}

// Calls returns a copy of the recorded calls in order.
func (m *MockConnection) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Reset forgets recorded calls but keeps registered responses.
func (m *MockConnection) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *MockConnection) record(method, command string, params connection.Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Command: command, Params: params.Clone()})
	return m.errors[command]
}

func (m *MockConnection) GetItem(ctx context.Context, command string, params connection.Params) (json.RawMessage, error) {
	if err := m.record("get_item", command, params); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[command]
	if !ok || string(raw) == "null" {
		return nil, fmt.Errorf("%s: %w", command, shared.ErrNoDataFound)
	}
	return raw, nil
}

func (m *MockConnection) GetList(ctx context.Context, command string, params connection.Params) (*connection.ItemCollection, error) {
	if err := m.record("get_list", command, params); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.lists[command]
	if !ok {
		return &connection.ItemCollection{}, nil
	}
	cp := *page
	return &cp, nil
}

func (m *MockConnection) Post(ctx context.Context, method string, params connection.Params) (json.RawMessage, error) {
	if err := m.record("post", method, params); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if raw, ok := m.posts[method]; ok {
		return raw, nil
	}
	return json.RawMessage("null"), nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
