package spacemouse

import (
	"sync"
	"time"
)

// StickCallback receives a new stick reading.
type StickCallback func(StickInput)

// ButtonCallback receives a button's pressed/released transition.
type ButtonCallback func(bool)

// CallbackDispatcher decouples the read thread from user callbacks: it
// holds the latest processed Input and wakes on either a fixed
// interval or, when instant callbacks are enabled, immediately on new
// data. Button callbacks fire only on edges; the stick callback fires
// on every non-zero reading but only once when the stick returns to
// rest, so a caller relying on "moved" events doesn't see a flood of
// identical zero reports.
type CallbackDispatcher struct {
	logger Logger

	callbackMu      sync.Mutex
	stickCallback   StickCallback
	buttonCallbacks [ButtonCount]ButtonCallback

	inputMu        sync.Mutex
	current        Input
	prev           Input
	newInput       bool
	zeroReported   bool
	newInputCh     chan struct{}

	instant  boolFlag
	interval durationFlag

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	ctlMu   sync.Mutex
}

// boolFlag and durationFlag are tiny mutex-guarded cells — the
// dispatcher's config is read from the dispatch loop and written from
// whatever goroutine owns the Driver, so plain fields would race.
type boolFlag struct {
	mu sync.Mutex
	v  bool
}

func (f *boolFlag) set(v bool) { f.mu.Lock(); f.v = v; f.mu.Unlock() }
func (f *boolFlag) get() bool  { f.mu.Lock(); defer f.mu.Unlock(); return f.v }

type durationFlag struct {
	mu sync.Mutex
	v  time.Duration
}

func (f *durationFlag) set(v time.Duration) { f.mu.Lock(); f.v = v; f.mu.Unlock() }
func (f *durationFlag) get() time.Duration  { f.mu.Lock(); defer f.mu.Unlock(); return f.v }

func newCallbackDispatcher(logger Logger) *CallbackDispatcher {
	logger.Debug("CallbackDispatcher initialized")
	d := &CallbackDispatcher{logger: logger, newInputCh: make(chan struct{}, 1)}
	d.interval.set(20 * time.Millisecond)
	return d
}

func (d *CallbackDispatcher) RegisterStickCallback(cb StickCallback) {
	d.callbackMu.Lock()
	defer d.callbackMu.Unlock()
	d.stickCallback = cb
}

func (d *CallbackDispatcher) RegisterButtonCallback(b Button, cb ButtonCallback) {
	d.callbackMu.Lock()
	defer d.callbackMu.Unlock()
	d.buttonCallbacks[b] = cb
}

func (d *CallbackDispatcher) DeleteStickCallback() {
	d.RegisterStickCallback(nil)
}

func (d *CallbackDispatcher) DeleteButtonCallback(b Button) {
	d.RegisterButtonCallback(b, nil)
}

func (d *CallbackDispatcher) SetCallbackInterval(interval time.Duration) {
	d.interval.set(interval)
}

func (d *CallbackDispatcher) SetInstantCallbacks(enabled bool) {
	d.instant.set(enabled)
}

// ProcessInput hands the dispatcher a new Input. With instant
// callbacks enabled this also wakes the dispatch loop immediately
// instead of waiting for the next interval tick.
func (d *CallbackDispatcher) ProcessInput(input Input) {
	d.inputMu.Lock()
	d.current = input
	d.newInput = true
	d.inputMu.Unlock()

	if d.instant.get() {
		select {
		case d.newInputCh <- struct{}{}:
		default:
		}
	}
}

func (d *CallbackDispatcher) start() {
	d.ctlMu.Lock()
	if d.running {
		d.ctlMu.Unlock()
		d.logger.Warn("CallbackDispatcher is already running")
		return
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.ctlMu.Unlock()

	go d.dispatchLoop()
	d.logger.Debug("CallbackDispatcher started")
}

func (d *CallbackDispatcher) stop() {
	d.ctlMu.Lock()
	if !d.running {
		d.ctlMu.Unlock()
		return
	}
	d.running = false
	stopCh := d.stopCh
	doneCh := d.doneCh
	d.ctlMu.Unlock()

	close(stopCh)
	<-doneCh
	d.logger.Debug("CallbackDispatcher stopped")
}

func (d *CallbackDispatcher) dispatchLoop() {
	defer close(d.doneCh)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Err("dispatch loop panic recovered")
		}
	}()

	for {
		select {
		case <-d.stopCh:
			return
		case <-d.newInputCh:
		case <-time.After(d.interval.get()):
		}

		d.inputMu.Lock()
		if !d.newInput {
			d.inputMu.Unlock()
			continue
		}
		toProcess := d.current
		d.newInput = false
		d.inputMu.Unlock()

		for i := 0; i < ButtonCount; i++ {
			b := Button(i)
			if toProcess.Buttons[i] != d.prev.Buttons[i] {
				d.invokeButtonCallback(b, toProcess.Buttons[i])
			}
		}

		if toProcess.Stick.IsZero() {
			if !d.zeroReported {
				d.invokeStickCallback(StickInput{})
				d.zeroReported = true
			}
		} else {
			d.invokeStickCallback(toProcess.Stick)
			d.zeroReported = false
		}

		d.prev = toProcess
	}
}

func (d *CallbackDispatcher) invokeStickCallback(input StickInput) {
	d.callbackMu.Lock()
	cb := d.stickCallback
	d.callbackMu.Unlock()
	if cb != nil {
		cb(input)
	}
}

func (d *CallbackDispatcher) invokeButtonCallback(b Button, pressed bool) {
	d.callbackMu.Lock()
	cb := d.buttonCallbacks[b]
	d.callbackMu.Unlock()
	if cb != nil {
		cb(pressed)
	}
}
