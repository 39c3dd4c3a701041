// Package hidio wraps the raw HID transport the driver needs:
// enumerate, open-by-path, bounded-blocking read, close. It exists so
// the rest of the module never imports a concrete HID library directly
// — tests swap in a mock Manager, production code gets the real one.
package hidio

import "time"

// Info describes one candidate HID interface as the enumerator sees
// it, before anything is opened.
type Info struct {
	Path      string
	VendorID  uint16
	ProductID uint16
	Interface int
}

// Device is an opened HID interface. Read must block for at most
// readTimeout (defined below) and use the convention spec.md §6
// requires: negative for a hard error, zero for a timeout with no
// report, positive n for a report of that length with the report id in
// buf[0].
type Device interface {
	Read(buf []byte) int
	Close() error
}

// Manager enumerates and opens HID devices.
type Manager interface {
	Enumerate() ([]Info, error)
	// OpenPath opens the device at path. MockManager returns an error
	// for a second open of a path it already has open; the
	// hidapi-backed manager keeps no record of open paths and does not
	// reject a second open itself. Exclusivity across driver instances
	// comes from the caller, which claims the path in the shared path
	// set after opening and closes the device again if the claim fails.
	OpenPath(path string) (Device, error)
}

// readTimeout bounds every blocking read so a driver's stop() can join
// its read thread promptly (spec.md §5, §9: "no call may block the
// shutdown path for longer than ~100 ms").
const readTimeout = 100 * time.Millisecond
