package spacemouse

// DeviceConfig is one registry entry: the (vid, pid) a device
// advertises, the interface it must match (or nil for "any"), the
// divisor used to normalize raw axis readings, and the report layouts
// for all six axes and up to 31 buttons.
type DeviceConfig struct {
	Model        Model
	VendorID     uint16
	ProductID    uint16
	Interface    *int // nil means "any interface"
	AxisDivisor  float64
	AxisMappings [AxisCount]AxisMapping
	// ButtonMappings[i] is nil when Button(i) does not apply to this
	// model.
	ButtonMappings [ButtonCount]ButtonMapping
}

func intPtr(v int) *int { return &v }

// standardAxisMappings is the motion report layout shared by every
// registered model: report 0x01, little-endian byte pairs in strict
// ascending order, with LinearY/LinearZ/AngularX/AngularY inverted.
func standardAxisMappings() [AxisCount]AxisMapping {
	return [AxisCount]AxisMapping{
		LinearX:  {Axis: LinearX, ReportID: 0x01, ByteLow: 1, ByteHigh: 2, Invert: false},
		LinearY:  {Axis: LinearY, ReportID: 0x01, ByteLow: 3, ByteHigh: 4, Invert: true},
		LinearZ:  {Axis: LinearZ, ReportID: 0x01, ByteLow: 5, ByteHigh: 6, Invert: true},
		AngularX: {Axis: AngularX, ReportID: 0x01, ByteLow: 7, ByteHigh: 8, Invert: true},
		AngularY: {Axis: AngularY, ReportID: 0x01, ByteLow: 9, ByteHigh: 10, Invert: true},
		AngularZ: {Axis: AngularZ, ReportID: 0x01, ByteLow: 11, ByteHigh: 12, Invert: false},
	}
}

func wirelessButtonMappings() [ButtonCount]ButtonMapping {
	var m [ButtonCount]ButtonMapping
	m[Button1] = BitMaskMapping{Button: Button1, ReportID: 0x03, ByteIndex: 1, BitIndex: 0}
	m[Button2] = BitMaskMapping{Button: Button2, ReportID: 0x03, ByteIndex: 1, BitIndex: 1}
	return m
}

func enterpriseButtonMappings() [ButtonCount]ButtonMapping {
	var m [ButtonCount]ButtonMapping
	code := func(b Button, c byte) {
		m[b] = ByteCodeMapping{Button: b, ReportID: 0x1C, Code: c}
	}
	code(Button1, 0x0D)
	code(Button2, 0x0E)
	code(Button3, 0x0F)
	code(Button4, 0x10)
	code(Button5, 0x11)
	code(Button6, 0x12)
	code(Button7, 0x13)
	code(Button8, 0x14)
	code(Button9, 0x15)
	code(Button10, 0x16)
	code(Button11, 0x4D)
	code(Button12, 0x4E)
	code(Escape, 0x17)
	code(Enter, 0x24)
	code(Tab, 0xAF)
	code(Shift, 0x19)
	code(Ctrl, 0x1A)
	code(Alt, 0x18)
	code(Space, 0xB0)
	code(Menu, 0x01)
	code(Delete, 0x25)
	code(V1, 0x67)
	code(V2, 0x68)
	code(V3, 0x69)
	code(Rotate, 0x09)
	code(Top, 0x03)
	code(Front, 0x06)
	code(Right, 0x05)
	code(Lock, 0x1B)
	code(Iso, 0x0B)
	code(Fit, 0x02)
	return m
}

// devices is the compile-time-constant registry of supported devices.
// It is data, not code: adding a model means adding one entry here.
var devices = []DeviceConfig{
	{
		Model:          SpaceMouseEnterprise,
		VendorID:       0x256F,
		ProductID:      0xC633,
		Interface:      nil,
		AxisDivisor:    350,
		AxisMappings:   standardAxisMappings(),
		ButtonMappings: enterpriseButtonMappings(),
	},
	{
		// Wireless, via the USB dongle.
		Model:          SpaceMouseWireless,
		VendorID:       0x256F,
		ProductID:      0xC652,
		Interface:      intPtr(2),
		AxisDivisor:    350,
		AxisMappings:   standardAxisMappings(),
		ButtonMappings: wirelessButtonMappings(),
	},
	{
		// Wireless, direct over USB or Bluetooth.
		Model:          SpaceMouseWireless,
		VendorID:       0x256F,
		ProductID:      0xC63A,
		Interface:      nil,
		AxisDivisor:    350,
		AxisMappings:   standardAxisMappings(),
		ButtonMappings: wirelessButtonMappings(),
	},
}

// registryGet returns the registry entry for (vid, pid), if any.
func registryGet(vid, pid uint16) (DeviceConfig, bool) {
	for _, d := range devices {
		if d.VendorID == vid && d.ProductID == pid {
			return d, true
		}
	}
	return DeviceConfig{}, false
}

// registryIsSupported reports whether any registry entry resolves to
// model.
func registryIsSupported(model Model) bool {
	for _, d := range devices {
		if d.Model == model {
			return true
		}
	}
	return false
}

// registryAllModels returns every distinct model the registry knows
// about, in registry order. Used by DriverManager to expand an empty
// model-list request into "every supported model".
func registryAllModels() []Model {
	seen := make(map[Model]bool, len(devices))
	var out []Model
	for _, d := range devices {
		if !seen[d.Model] {
			seen[d.Model] = true
			out = append(out, d.Model)
		}
	}
	return out
}

// matchesInterface reports whether iface satisfies cfg.Interface: any
// interface when cfg.Interface is nil, an exact match otherwise.
func (cfg DeviceConfig) matchesInterface(iface int) bool {
	return cfg.Interface == nil || *cfg.Interface == iface
}
