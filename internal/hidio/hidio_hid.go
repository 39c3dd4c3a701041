package hidio

import (
	"fmt"

	hid "github.com/sstallion/go-hid"
)

// hidManager is the production Manager, backed by hidapi through
// github.com/sstallion/go-hid — the same dependency the teacher uses
// for every device-I/O call in driver.go.
type hidManager struct{}

// NewManager returns the hidapi-backed Manager.
func NewManager() (Manager, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hidio: hid.Init: %w", err)
	}
	return &hidManager{}, nil
}

func (m *hidManager) Enumerate() ([]Info, error) {
	var out []Info
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		out = append(out, Info{
			Path:      info.Path,
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Interface: info.InterfaceNbr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hidio: enumerate: %w", err)
	}
	return out, nil
}

func (m *hidManager) OpenPath(path string) (Device, error) {
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, err
	}
	return &hidDevice{dev: dev}, nil
}

type hidDevice struct {
	dev *hid.Device
}

// Read maps hidapi's timed-read semantics onto spec.md §6's
// negative/zero/positive convention.
func (d *hidDevice) Read(buf []byte) int {
	n, err := d.dev.ReadWithTimeout(buf, readTimeout)
	if err != nil {
		return -1
	}
	return n
}

func (d *hidDevice) Close() error {
	return d.dev.Close()
}
