package spacemouse

import (
	"sync"
	"testing"
	"time"
)

func TestCallbackDispatcherZeroStickIdempotence(t *testing.T) {
	// Seed scenario 4 / zero-stick idempotence law (spec.md §8): two
	// consecutive all-zero stick inputs fire the stick callback once.
	logger := NewConsoleLogger(nil, LevelError)
	d := newCallbackDispatcher(logger)
	d.SetCallbackInterval(5 * time.Millisecond)

	var mu sync.Mutex
	calls := 0
	d.RegisterStickCallback(func(StickInput) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	d.start()
	defer d.stop()

	var nonZero Input
	nonZero.Stick.axis[LinearX] = 0.5
	d.ProcessInput(nonZero)
	time.Sleep(30 * time.Millisecond)

	d.ProcessInput(Input{})
	time.Sleep(30 * time.Millisecond)
	d.ProcessInput(Input{})
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 2 {
		t.Errorf("stick callback fired %d times, want 2 (one for the move, one for the return to center)", got)
	}
}

func TestCallbackDispatcherEdgeDetection(t *testing.T) {
	// Seed scenario 5 (spec.md §8): press then release fires exactly
	// twice, true then false.
	logger := NewConsoleLogger(nil, LevelError)
	d := newCallbackDispatcher(logger)
	d.SetCallbackInterval(5 * time.Millisecond)

	var mu sync.Mutex
	var calls []bool
	d.RegisterButtonCallback(Button3, func(pressed bool) {
		mu.Lock()
		calls = append(calls, pressed)
		mu.Unlock()
	})

	d.start()
	defer d.stop()

	var pressed Input
	pressed.Buttons[Button3] = true
	d.ProcessInput(pressed)
	time.Sleep(30 * time.Millisecond)

	d.ProcessInput(Input{})
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	got := append([]bool(nil), calls...)
	mu.Unlock()
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("button-3 callback calls = %v, want [true false]", got)
	}
}

func TestCallbackDispatcherNoEdgeNoCall(t *testing.T) {
	logger := NewConsoleLogger(nil, LevelError)
	d := newCallbackDispatcher(logger)
	d.SetCallbackInterval(5 * time.Millisecond)

	var mu sync.Mutex
	calls := 0
	d.RegisterButtonCallback(Button1, func(bool) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	d.start()
	defer d.stop()

	var in Input
	in.Buttons[Button1] = true
	d.ProcessInput(in)
	time.Sleep(30 * time.Millisecond)
	d.ProcessInput(in) // same state, no edge
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("button callback fired %d times, want 1", got)
	}
}

func TestCallbackDispatcherInstantMode(t *testing.T) {
	logger := NewConsoleLogger(nil, LevelError)
	d := newCallbackDispatcher(logger)
	d.SetInstantCallbacks(true)
	d.SetCallbackInterval(time.Hour) // would never fire on its own

	fired := make(chan StickInput, 1)
	d.RegisterStickCallback(func(s StickInput) {
		select {
		case fired <- s:
		default:
		}
	})

	d.start()
	defer d.stop()

	var in Input
	in.Stick.axis[LinearX] = 0.25
	d.ProcessInput(in)

	select {
	case got := <-fired:
		if got.Get(LinearX) != 0.25 {
			t.Errorf("stick callback value = %v, want 0.25", got.Get(LinearX))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("instant mode did not deliver the input promptly")
	}
}

func TestCallbackDispatcherIntervalModeCoalesces(t *testing.T) {
	// Interval mode processes at most one input per wake — intermediate
	// values between wakes are intentionally dropped.
	logger := NewConsoleLogger(nil, LevelError)
	d := newCallbackDispatcher(logger)
	d.SetCallbackInterval(40 * time.Millisecond)

	var mu sync.Mutex
	var lastX float64
	calls := 0
	d.RegisterStickCallback(func(s StickInput) {
		mu.Lock()
		lastX = s.Get(LinearX)
		calls++
		mu.Unlock()
	})

	d.start()
	defer d.stop()

	for i := 1; i <= 5; i++ {
		var in Input
		in.Stick.axis[LinearX] = float64(i)
		d.ProcessInput(in)
	}
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	gotCalls, gotX := calls, lastX
	mu.Unlock()
	if gotCalls != 1 {
		t.Errorf("calls = %d, want 1 (only one wake elapsed)", gotCalls)
	}
	if gotX != 5 {
		t.Errorf("delivered value = %v, want 5 (the most recent)", gotX)
	}
}

func TestCallbackDispatcherDeleteCallback(t *testing.T) {
	logger := NewConsoleLogger(nil, LevelError)
	d := newCallbackDispatcher(logger)
	d.SetCallbackInterval(5 * time.Millisecond)

	calls := 0
	d.RegisterStickCallback(func(StickInput) { calls++ })
	d.DeleteStickCallback()

	d.start()
	defer d.stop()

	var in Input
	in.Stick.axis[LinearX] = 1
	d.ProcessInput(in)
	time.Sleep(20 * time.Millisecond)

	if calls != 0 {
		t.Errorf("calls = %d, want 0 after DeleteStickCallback", calls)
	}
}

func TestCallbackDispatcherStartStopIdempotent(t *testing.T) {
	logger := NewConsoleLogger(nil, LevelError)
	d := newCallbackDispatcher(logger)
	d.start()
	d.start() // no-op, logs a warning
	d.stop()
	d.stop() // no-op
}
