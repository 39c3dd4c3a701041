package spacemouse

import (
	"sort"
	"sync"
	"time"

	"spacemouse/internal/hidio"
)

// ConnectionState is the lifecycle state of a ConnectionManager.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connected:
		return "Connected"
	default:
		return "Disconnected"
	}
}

// DeviceHandle is an opened, registry-resolved SpaceMouse. It owns the
// claimed path for its lifetime.
type DeviceHandle struct {
	dev    hidio.Device
	Config DeviceConfig
	Path   string
}

// String mirrors DeviceHandle::get_name() from the original driver.
func (h *DeviceHandle) String() string {
	return h.Config.Model.String() + " (" + h.Path + ")"
}

// ConnectionMethod resolves a DeviceHandle given an hidio.Manager and
// the registry. Each implementation is a pure strategy: enumerate,
// filter against the registry, open.
type ConnectionMethod interface {
	connect(mgr hidio.Manager, logger Logger) *DeviceHandle
}

func openRegistered(mgr hidio.Manager, info hidio.Info, cfg DeviceConfig) *DeviceHandle {
	dev, err := mgr.OpenPath(info.Path)
	if err != nil {
		return nil
	}
	if !claimedPaths.claim(info.Path) {
		dev.Close()
		return nil
	}
	return &DeviceHandle{dev: dev, Config: cfg, Path: info.Path}
}

// AnyModelMethod connects to the first enumerated device the registry
// recognizes, in enumeration order.
type AnyModelMethod struct{}

func (AnyModelMethod) connect(mgr hidio.Manager, logger Logger) *DeviceHandle {
	devs, err := mgr.Enumerate()
	if err != nil {
		logger.Debug("enumerate failed: " + err.Error())
		return nil
	}
	for _, info := range devs {
		cfg, ok := registryGet(info.VendorID, info.ProductID)
		if !ok || !cfg.matchesInterface(info.Interface) {
			continue
		}
		if handle := openRegistered(mgr, info, cfg); handle != nil {
			return handle
		}
	}
	logger.Debug("No SpaceMouse devices found.")
	return nil
}

// PathMethod connects to the device at one fixed OS path.
type PathMethod struct {
	Path string
}

func (m PathMethod) connect(mgr hidio.Manager, logger Logger) *DeviceHandle {
	devs, err := mgr.Enumerate()
	if err != nil {
		logger.Debug("enumerate failed: " + err.Error())
		return nil
	}
	for _, info := range devs {
		if info.Path != m.Path {
			continue
		}
		cfg, ok := registryGet(info.VendorID, info.ProductID)
		if !ok {
			logger.Debug("Device at path " + m.Path + " is not a supported SpaceMouse device.")
			return nil
		}
		handle := openRegistered(mgr, info, cfg)
		if handle == nil {
			logger.Err("Failed to open device at path: " + m.Path)
		}
		return handle
	}
	logger.Debug("No device found at path: " + m.Path)
	return nil
}

// ModelListMethod connects to the enumerated device matching the
// earliest-listed model in Models, breaking ties by enumeration order.
type ModelListMethod struct {
	Models []Model
}

type modelCandidate struct {
	info     hidio.Info
	cfg      DeviceConfig
	priority int
}

func (m ModelListMethod) connect(mgr hidio.Manager, logger Logger) *DeviceHandle {
	if len(m.Models) == 0 {
		logger.Err("No preferred models specified for device connection.")
		return nil
	}
	devs, err := mgr.Enumerate()
	if err != nil {
		logger.Debug("enumerate failed: " + err.Error())
		return nil
	}
	var candidates []modelCandidate
	for _, info := range devs {
		cfg, ok := registryGet(info.VendorID, info.ProductID)
		if !ok || !cfg.matchesInterface(info.Interface) {
			continue
		}
		priority := indexOfModel(m.Models, cfg.Model)
		if priority < 0 {
			continue
		}
		candidates = append(candidates, modelCandidate{info: info, cfg: cfg, priority: priority})
	}
	if len(candidates) == 0 {
		logger.Log(LevelInfo, "No listed SpaceMouse devices found.")
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority < candidates[j].priority
	})
	for _, c := range candidates {
		if handle := openRegistered(mgr, c.info, c.cfg); handle != nil {
			return handle
		}
	}
	return nil
}

func indexOfModel(models []Model, m Model) int {
	for i, candidate := range models {
		if candidate == m {
			return i
		}
	}
	return -1
}

// ConnectionManager owns the connect-retry loop: while disconnected, it
// periodically asks its ConnectionMethod for a device; once connected,
// it idles until disconnect() runs (either from the caller or from a
// read error reported upstream).
type ConnectionManager struct {
	mgr    hidio.Manager
	method ConnectionMethod
	logger Logger

	mu     sync.Mutex
	device *DeviceHandle
	state  ConnectionState

	onStateChange func(ConnectionState, *DeviceHandle)

	retryMu  sync.Mutex
	retry    time.Duration
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newConnectionManager(mgr hidio.Manager, method ConnectionMethod, logger Logger) *ConnectionManager {
	logger.Debug("ConnectionManager initialized")
	return &ConnectionManager{
		mgr:    mgr,
		method: method,
		logger: logger,
		state:  Disconnected,
		retry:  1 * time.Second,
	}
}

func (c *ConnectionManager) SetStateChangeCallback(cb func(ConnectionState, *DeviceHandle)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = cb
}

func (c *ConnectionManager) SetConnectRetryInterval(d time.Duration) {
	c.retryMu.Lock()
	defer c.retryMu.Unlock()
	c.retry = d
}

func (c *ConnectionManager) retryInterval() time.Duration {
	c.retryMu.Lock()
	defer c.retryMu.Unlock()
	return c.retry
}

func (c *ConnectionManager) GetState() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ConnectionManager) GetDevice() *DeviceHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device
}

func (c *ConnectionManager) GetConnectedModel() (Model, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return 0, false
	}
	return c.device.Config.Model, true
}

func (c *ConnectionManager) tryConnect() bool {
	c.mu.Lock()
	if c.state == Connected {
		c.mu.Unlock()
		c.logger.Warn("Already connected to a device")
		return true
	}
	c.mu.Unlock()

	device := c.method.connect(c.mgr, c.logger)
	if device == nil {
		c.changeState(Disconnected, nil)
		return false
	}

	c.mu.Lock()
	c.device = device
	c.mu.Unlock()
	c.changeState(Connected, device)
	c.logger.Log(LevelInfo, "Connected to SpaceMouse device: "+device.String())
	return true
}

func (c *ConnectionManager) disconnect() {
	c.mu.Lock()
	if c.state != Connected {
		c.mu.Unlock()
		c.logger.Warn("Not connected to any device")
		return
	}
	device := c.device
	c.mu.Unlock()

	if device != nil {
		c.logger.Log(LevelInfo, "Disconnecting from SpaceMouse device: "+device.String())
		device.dev.Close()
		claimedPaths.release(device.Path)
	}

	c.mu.Lock()
	c.device = nil
	c.mu.Unlock()
	c.changeState(Disconnected, nil)
}

func (c *ConnectionManager) changeState(newState ConnectionState, device *DeviceHandle) {
	c.mu.Lock()
	if c.state == newState {
		c.mu.Unlock()
		return
	}
	c.state = newState
	cb := c.onStateChange
	c.mu.Unlock()
	if cb != nil {
		cb(newState, device)
	}
}

func (c *ConnectionManager) start() {
	c.retryMu.Lock()
	if c.running {
		c.retryMu.Unlock()
		c.logger.Warn("ConnectionManager is already running")
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.retryMu.Unlock()

	go c.connectLoop()
	c.logger.Debug("ConnectionManager started")
}

func (c *ConnectionManager) stop() {
	c.retryMu.Lock()
	if !c.running {
		c.retryMu.Unlock()
		return
	}
	c.running = false
	stopCh := c.stopCh
	doneCh := c.doneCh
	c.retryMu.Unlock()

	close(stopCh)
	<-doneCh
	c.logger.Debug("ConnectionManager stopped")
}

func (c *ConnectionManager) connectLoop() {
	defer close(c.doneCh)
	defer func() {
		if r := recover(); r != nil {
			c.logger.Err("connect loop panic recovered")
		}
	}()
	for {
		select {
		case <-c.stopCh:
			return
		case <-time.After(c.retryInterval()):
		}
		if c.GetState() == Disconnected {
			c.tryConnect()
		}
	}
}
