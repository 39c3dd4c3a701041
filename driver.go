package spacemouse

import (
	"sync"
	"time"

	"spacemouse/internal/hidio"
)

// Driver wires a ConnectionManager, InputProcessor, and
// CallbackDispatcher into one SpaceMouse session. Construct one
// through DriverManager rather than directly — the manager owns the
// shared HID backend and logger every Driver needs.
type Driver struct {
	logger Logger

	connMgr    *ConnectionManager
	processor  *InputProcessor
	dispatcher *CallbackDispatcher

	mu      sync.Mutex
	running bool
}

func newDriver(mgr hidio.Manager, method ConnectionMethod, logger Logger) *Driver {
	d := &Driver{
		logger:     logger,
		connMgr:    newConnectionManager(mgr, method, logger),
		processor:  newInputProcessor(logger),
		dispatcher: newCallbackDispatcher(logger),
	}
	d.connMgr.SetStateChangeCallback(d.onConnectionStateChange)
	d.processor.SetDataCallback(d.onNewInput)
	logger.Debug("Driver initialized successfully")
	return d
}

// Run starts all three background loops. Calling Run on an
// already-running Driver is a no-op.
func (d *Driver) Run() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.logger.Warn("Driver is already running.")
		return
	}
	d.running = true
	d.mu.Unlock()

	d.dispatcher.start()
	d.processor.start()
	d.connMgr.start()
	d.logger.Log(LevelInfo, "Driver started")
}

// Stop joins all three background loops and disconnects any open
// device. Calling Stop on an already-stopped Driver is a no-op.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		d.logger.Warn("Driver is not running.")
		return
	}
	d.running = false
	d.mu.Unlock()

	d.processor.stop()
	d.dispatcher.stop()
	d.connMgr.stop()

	if d.connMgr.GetState() == Connected {
		d.connMgr.disconnect()
	}
	d.logger.Log(LevelInfo, "Driver stopped")
}

// ReadInput returns the most recently decoded Input.
func (d *Driver) ReadInput() Input {
	return d.processor.GetLatestInput()
}

func (d *Driver) RegisterStickCallback(cb StickCallback)          { d.dispatcher.RegisterStickCallback(cb) }
func (d *Driver) RegisterButtonCallback(b Button, cb ButtonCallback) {
	d.dispatcher.RegisterButtonCallback(b, cb)
}
func (d *Driver) DeleteStickCallback()          { d.dispatcher.DeleteStickCallback() }
func (d *Driver) DeleteButtonCallback(b Button) { d.dispatcher.DeleteButtonCallback(b) }

func (d *Driver) SetInstantCallbacks(enabled bool) { d.dispatcher.SetInstantCallbacks(enabled) }
func (d *Driver) SetCallbackInterval(interval time.Duration) {
	d.dispatcher.SetCallbackInterval(interval)
}
func (d *Driver) SetConnectionRetryInterval(interval time.Duration) {
	d.connMgr.SetConnectRetryInterval(interval)
}

// GetConnectionState reports whether the driver currently holds an
// open device.
func (d *Driver) GetConnectionState() ConnectionState { return d.connMgr.GetState() }

// GetConnectedModel returns the model of the currently connected
// device, if any.
func (d *Driver) GetConnectedModel() (Model, bool) { return d.connMgr.GetConnectedModel() }

func (d *Driver) onConnectionStateChange(state ConnectionState, device *DeviceHandle) {
	switch state {
	case Connected:
		d.processor.setDevice(device)
	case Disconnected:
		d.dispatcher.ProcessInput(Input{})
		d.processor.clearDevice()
	}
}

func (d *Driver) onNewInput(input Input, isError bool) {
	if isError && d.connMgr.GetState() == Connected {
		d.logger.Debug("Failed to read input data from the device, disconnecting")
		d.connMgr.disconnect()
		return
	}
	d.dispatcher.ProcessInput(input)
}
