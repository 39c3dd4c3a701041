package hidio

import (
	"errors"
	"sync"
)

// MockManager is a deterministic, synchronous stand-in for the hidapi
// backend, grounded on seagrayinc-gorow's hid_mock.go. Tests configure
// the device list up front and feed reports through a per-path queue;
// nothing here spawns goroutines or touches real I/O.
type MockManager struct {
	mu      sync.Mutex
	devices []Info
	frames  map[string][][]byte
	opened  map[string]bool
	denyErr map[string]error
}

// NewMockManager returns a mock with the given enumerate-visible
// devices and no queued frames.
func NewMockManager(devices []Info) *MockManager {
	return &MockManager{
		devices: devices,
		frames:  make(map[string][][]byte),
		opened:  make(map[string]bool),
		denyErr: make(map[string]error),
	}
}

// SetDevices replaces the enumerate-visible device list.
func (m *MockManager) SetDevices(devices []Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = devices
}

// Push appends a report to path's read queue. A mock device's Read
// call dequeues in FIFO order; once empty, Read returns 0 (timeout).
func (m *MockManager) Push(path string, report []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames[path] = append(m.frames[path], report)
}

// DenyOpen makes a future OpenPath(path) fail with err.
func (m *MockManager) DenyOpen(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denyErr[path] = err
}

// IsOpen reports whether path currently has an open mock device.
func (m *MockManager) IsOpen(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened[path]
}

func (m *MockManager) Enumerate() ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, len(m.devices))
	copy(out, m.devices)
	return out, nil
}

func (m *MockManager) OpenPath(path string) (Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, denied := m.denyErr[path]; denied {
		return nil, err
	}
	if m.opened[path] {
		return nil, errors.New("hidio: mock device already open")
	}
	m.opened[path] = true
	return &mockDevice{m: m, path: path}, nil
}

type mockDevice struct {
	m    *MockManager
	path string
}

func (d *mockDevice) Read(buf []byte) int {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()
	queue := d.m.frames[d.path]
	if len(queue) == 0 {
		return 0
	}
	report := queue[0]
	d.m.frames[d.path] = queue[1:]
	n := copy(buf, report)
	return n
}

func (d *mockDevice) Close() error {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()
	d.m.opened[d.path] = false
	return nil
}
