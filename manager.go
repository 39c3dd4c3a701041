package spacemouse

import (
	"errors"
	"fmt"

	"spacemouse/internal/hidio"
)

// DriverManager owns the shared HID backend and constructs Drivers for
// one of the four selection strategies spec.md §6 names: any device, an
// ordered model list, a single model, or a fixed device path. It
// retains every Driver it builds so a process with several drivers can
// tear them all down from one place (mirrors the original
// driver_manager.hpp's _drivers bookkeeping).
type DriverManager struct {
	mgr     hidio.Manager
	logger  Logger
	drivers []*Driver
}

// NewDriverManager opens the shared HID backend and returns a manager
// that builds Drivers against it. logger must not be nil.
func NewDriverManager(logger Logger) (*DriverManager, error) {
	if logger == nil {
		return nil, errors.New("spacemouse: logger must not be nil")
	}
	mgr, err := hidio.NewManager()
	if err != nil {
		return nil, fmt.Errorf("spacemouse: %w", err)
	}
	logger.Log(LevelInfo, "DriverManager initialized")
	return &DriverManager{mgr: mgr, logger: logger}, nil
}

// newDriverManagerWithBackend is the test seam: it skips hidio.NewManager
// so unit tests can inject a hidio.MockManager.
func newDriverManagerWithBackend(mgr hidio.Manager, logger Logger) *DriverManager {
	return &DriverManager{mgr: mgr, logger: logger}
}

func (dm *DriverManager) register(d *Driver) *Driver {
	dm.drivers = append(dm.drivers, d)
	return d
}

// NewDriverForAny builds a Driver that connects to the first
// registry-recognized device it finds, regardless of model.
func (dm *DriverManager) NewDriverForAny() *Driver {
	return dm.register(newDriver(dm.mgr, AnyModelMethod{}, dm.logger))
}

// NewDriverForModels builds a Driver that prefers models in the order
// given. An empty list is not an error at this level — it expands to
// every registered model in registry order, mirroring the original
// factory's default (the ModelListMethod itself still
// rejects an empty list if constructed directly; this convenience
// layer never passes one through empty).
func (dm *DriverManager) NewDriverForModels(models []Model) (*Driver, error) {
	for _, m := range models {
		if !registryIsSupported(m) {
			return nil, fmt.Errorf("spacemouse: unsupported model %s", m)
		}
	}
	if len(models) == 0 {
		models = registryAllModels()
	}
	return dm.register(newDriver(dm.mgr, ModelListMethod{Models: models}, dm.logger)), nil
}

// NewDriverForModel builds a Driver pinned to a single model —
// equivalent to NewDriverForModels([]Model{model}).
func (dm *DriverManager) NewDriverForModel(model Model) (*Driver, error) {
	return dm.NewDriverForModels([]Model{model})
}

// NewDriverForPath builds a Driver pinned to one fixed OS device path.
// path must be non-empty; whether a device actually lives there, and
// whether the registry recognizes it, is a runtime question the
// connection retry loop answers, not a construction-time one
// (spec.md §9's open question, resolved in SPEC_FULL.md §5).
func (dm *DriverManager) NewDriverForPath(path string) (*Driver, error) {
	if path == "" {
		return nil, errors.New("spacemouse: device path must not be empty")
	}
	return dm.register(newDriver(dm.mgr, PathMethod{Path: path}, dm.logger)), nil
}

// Close stops every Driver this manager has constructed. Safe to call
// more than once.
func (dm *DriverManager) Close() {
	for _, d := range dm.drivers {
		d.Stop()
	}
}
