package spacemouse

// Axis identifies one of the six degrees of freedom reported by a
// SpaceMouse stick.
type Axis int

const (
	LinearX Axis = iota
	LinearY
	LinearZ
	AngularX
	AngularY
	AngularZ

	AxisCount = int(AngularZ) + 1
)

func (a Axis) String() string {
	switch a {
	case LinearX:
		return "LinearX"
	case LinearY:
		return "LinearY"
	case LinearZ:
		return "LinearZ"
	case AngularX:
		return "AngularX"
	case AngularY:
		return "AngularY"
	case AngularZ:
		return "AngularZ"
	default:
		return "Axis(?)"
	}
}

// Button identifies one named button across the supported SpaceMouse
// models. Not every model maps every button.
type Button int

const (
	Button1 Button = iota
	Button2
	Button3
	Button4
	Button5
	Button6
	Button7
	Button8
	Button9
	Button10
	Button11
	Button12
	Escape
	Enter
	Tab
	Shift
	Ctrl
	Alt
	Space
	Menu
	Delete
	V1
	V2
	V3
	Rotate
	Top
	Front
	Right
	Lock
	Iso
	Fit

	ButtonCount = int(Fit) + 1
)

var buttonNames = [ButtonCount]string{
	"Button1", "Button2", "Button3", "Button4", "Button5", "Button6",
	"Button7", "Button8", "Button9", "Button10", "Button11", "Button12",
	"Escape", "Enter", "Tab", "Shift", "Ctrl", "Alt", "Space", "Menu",
	"Delete", "V1", "V2", "V3", "Rotate", "Top", "Front", "Right",
	"Lock", "Iso", "Fit",
}

func (b Button) String() string {
	if b < 0 || int(b) >= ButtonCount {
		return "Button(?)"
	}
	return buttonNames[b]
}

// Model identifies a device family the registry can resolve a HID
// report layout for.
type Model int

const (
	SpaceMouseEnterprise Model = iota
	SpaceMouseWireless

	modelCount = int(SpaceMouseWireless) + 1
)

func (m Model) String() string {
	switch m {
	case SpaceMouseEnterprise:
		return "SpaceMouseEnterprise"
	case SpaceMouseWireless:
		return "SpaceMouseWireless"
	default:
		return "Model(?)"
	}
}

// StickInput holds a normalized reading for each of the six axes.
// The zero value is the "stick at rest" state (see IsZero).
type StickInput struct {
	axis [AxisCount]float64
}

// Get returns the normalized value for the given axis.
func (s StickInput) Get(a Axis) float64 {
	return s.axis[a]
}

// IsZero reports whether every axis reads exactly zero — the "stick at
// rest" state the callback dispatcher treats specially.
func (s StickInput) IsZero() bool {
	return s == StickInput{}
}

// Input is one fully decoded sample: the stick position and the
// pressed/released state of every named button.
type Input struct {
	Stick   StickInput
	Buttons [ButtonCount]bool
}

// Button returns whether the given button is currently pressed.
func (in Input) Button(b Button) bool {
	return in.Buttons[b]
}
