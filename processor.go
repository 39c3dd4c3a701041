package spacemouse

import (
	"sync"
	"time"
)

// DataCallback receives each processed read: the decoded Input, and
// whether this call represents a read error rather than real data (in
// which case Input is always the zero value).
type DataCallback func(Input, bool)

// InputProcessor owns the read thread: it pulls reports off the
// current device, decodes them against the device's DeviceConfig, and
// publishes the result through a double-buffered snapshot plus an
// optional callback.
type InputProcessor struct {
	logger Logger

	deviceMu sync.Mutex
	device   *DeviceHandle

	last inputSnapshot

	callbackMu sync.Mutex
	callback   DataCallback

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	ctlMu   sync.Mutex
}

const processorBufferSize = 64

func newInputProcessor(logger Logger) *InputProcessor {
	logger.Debug("InputProcessor initialized")
	return &InputProcessor{logger: logger}
}

func (p *InputProcessor) SetDataCallback(cb DataCallback) {
	p.callbackMu.Lock()
	defer p.callbackMu.Unlock()
	p.callback = cb
}

func (p *InputProcessor) setDevice(device *DeviceHandle) {
	p.deviceMu.Lock()
	defer p.deviceMu.Unlock()
	p.device = device
}

func (p *InputProcessor) clearDevice() {
	p.deviceMu.Lock()
	p.device = nil
	p.deviceMu.Unlock()
	p.last.write(Input{})
}

// GetLatestInput returns the most recently published Input without
// blocking on the read thread.
func (p *InputProcessor) GetLatestInput() Input {
	return p.last.read()
}

func (p *InputProcessor) start() {
	p.ctlMu.Lock()
	if p.running {
		p.ctlMu.Unlock()
		p.logger.Warn("InputProcessor is already running")
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.ctlMu.Unlock()

	go p.processLoop()
	p.logger.Debug("InputProcessor started")
}

func (p *InputProcessor) stop() {
	p.ctlMu.Lock()
	if !p.running {
		p.ctlMu.Unlock()
		return
	}
	p.running = false
	stopCh := p.stopCh
	doneCh := p.doneCh
	p.ctlMu.Unlock()

	close(stopCh)
	<-doneCh
	p.logger.Debug("InputProcessor stopped")
}

func (p *InputProcessor) currentDevice() *DeviceHandle {
	p.deviceMu.Lock()
	defer p.deviceMu.Unlock()
	return p.device
}

func (p *InputProcessor) emit(input Input, isError bool) {
	p.callbackMu.Lock()
	cb := p.callback
	p.callbackMu.Unlock()
	if cb != nil {
		cb(input, isError)
	}
}

func (p *InputProcessor) processLoop() {
	defer close(p.doneCh)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Err("process loop panic recovered")
		}
	}()

	buf := make([]byte, processorBufferSize)
	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		device := p.currentDevice()
		if device == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		n := device.dev.Read(buf)

		if n < 0 {
			p.logger.Debug("Read error from device")
			p.emit(Input{}, true)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if n == 0 {
			time.Sleep(1 * time.Millisecond)
			continue
		}

		current := p.parse(buf[:n], device.Config)
		p.last.write(current)
		p.emit(current, false)
	}
}

// parse decodes one report into an Input. Axes default to zero on
// every report (a report that doesn't touch an axis leaves it at
// rest); buttons instead carry forward their previous state when this
// report doesn't speak to them, since button status reports are
// typically separate from motion reports.
func (p *InputProcessor) parse(data []byte, cfg DeviceConfig) Input {
	var input Input

	for axis := 0; axis < AxisCount; axis++ {
		mapping := cfg.AxisMappings[axis]
		raw, ok := mapping.Parse(data)
		if !ok {
			continue
		}
		input.Stick.axis[axis] = float64(raw) / cfg.AxisDivisor
	}

	prev := p.last.read()
	for b := 0; b < ButtonCount; b++ {
		mapping := cfg.ButtonMappings[b]
		if mapping == nil {
			input.Buttons[b] = false
			continue
		}
		pressed, ok := mapping.Parse(data)
		if !ok {
			input.Buttons[b] = prev.Buttons[b]
			continue
		}
		input.Buttons[b] = pressed
	}

	return input
}
