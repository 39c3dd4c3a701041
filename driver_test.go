package spacemouse

import (
	"sync"
	"testing"
	"time"

	"spacemouse/internal/hidio"
)

func TestDriverConnectAndReadInput(t *testing.T) {
	mgr := hidio.NewMockManager([]hidio.Info{{Path: "driver-connect", VendorID: 0x256F, ProductID: 0xC633}})
	d := newDriver(mgr, AnyModelMethod{}, testLogger())
	d.SetConnectionRetryInterval(5 * time.Millisecond)
	d.SetCallbackInterval(5 * time.Millisecond)

	d.Run()
	defer d.Stop()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) && d.GetConnectionState() != Connected {
		time.Sleep(2 * time.Millisecond)
	}
	if d.GetConnectionState() != Connected {
		t.Fatal("driver did not reach Connected")
	}
	model, ok := d.GetConnectedModel()
	if !ok || model != SpaceMouseEnterprise {
		t.Fatalf("GetConnectedModel() = (%v, %v)", model, ok)
	}

	mgr.Push("driver-connect", []byte{0x01, 0x2C, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	deadline = time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) && d.ReadInput().Stick.Get(LinearX) == 0 {
		time.Sleep(2 * time.Millisecond)
	}
	if got, want := d.ReadInput().Stick.Get(LinearX), 300.0/350.0; got != want {
		t.Errorf("LinearX = %v, want %v", got, want)
	}
}

func TestDriverDisconnectOnReadError(t *testing.T) {
	mgr := hidio.NewMockManager([]hidio.Info{{Path: "driver-error", VendorID: 0x256F, ProductID: 0xC633}})
	d := newDriver(mgr, AnyModelMethod{}, testLogger())
	d.SetConnectionRetryInterval(5 * time.Millisecond)

	d.Run()
	defer d.Stop()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) && d.GetConnectionState() != Connected {
		time.Sleep(2 * time.Millisecond)
	}
	if d.GetConnectionState() != Connected {
		t.Fatal("driver did not reach Connected")
	}

	// Swap the connected handle's underlying device for one that
	// reports a hard read error, exercising the Input Processor ->
	// Driver -> ConnectionManager.disconnect() path (spec.md §4.6).
	handle := d.connMgr.GetDevice()
	if handle == nil {
		t.Fatal("expected a connected device handle")
	}
	handle.dev = errDevice{}

	deadline = time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) && d.GetConnectionState() != Disconnected {
		time.Sleep(2 * time.Millisecond)
	}
	if d.GetConnectionState() != Disconnected {
		t.Fatal("driver did not disconnect after a read error")
	}
}

func TestDriverZeroInputOnDisconnect(t *testing.T) {
	mgr := hidio.NewMockManager([]hidio.Info{{Path: "driver-disconnect-zero", VendorID: 0x256F, ProductID: 0xC633}})
	d := newDriver(mgr, AnyModelMethod{}, testLogger())
	d.SetConnectionRetryInterval(time.Hour) // don't race a reconnect during the assertion
	d.SetCallbackInterval(5 * time.Millisecond)

	var mu sync.Mutex
	var lastStick StickInput
	d.RegisterStickCallback(func(s StickInput) {
		mu.Lock()
		lastStick = s
		mu.Unlock()
	})

	d.Run()
	defer d.Stop()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) && d.GetConnectionState() != Connected {
		time.Sleep(2 * time.Millisecond)
	}
	mgr.Push("driver-disconnect-zero", []byte{0x01, 0x2C, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	deadline = time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		mu.Lock()
		nonZero := lastStick.Get(LinearX) != 0
		mu.Unlock()
		if nonZero {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	d.connMgr.disconnect()

	deadline = time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		mu.Lock()
		isZero := lastStick.IsZero()
		mu.Unlock()
		if isZero {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("expected the stick callback to fire with an all-zero reading after disconnect")
}

func TestDriverRunStopIdempotent(t *testing.T) {
	mgr := hidio.NewMockManager(nil)
	d := newDriver(mgr, AnyModelMethod{}, testLogger())
	d.Run()
	d.Run() // no-op, logs a warning
	d.Stop()
	d.Stop() // no-op
}
