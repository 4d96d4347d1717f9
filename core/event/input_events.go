package event

// KeyAction indicates whether a key was pressed or released.
type KeyAction int

const (
	// KeyActionPress indicates the key went down.
	KeyActionPress KeyAction = iota
	// KeyActionRelease indicates the key went up.
	KeyActionRelease
)

func (a KeyAction) String() string {
	switch a {
	case KeyActionPress:
		return "Press"
	case KeyActionRelease:
		return "Release"
	default:
		return "Unknown"
	}
}

// KeyPressed is published by the host's input layer for keyboard activity.
// Key is the host's platform-independent key code.
type KeyPressed struct {
	Base
	Key    string
	Action KeyAction
}

func NewKeyPressed(p Priority, key string, action KeyAction) *KeyPressed {
	return &KeyPressed{Base: MakeBase(p), Key: key, Action: action}
}

func (e *KeyPressed) EventName() string {
	return "KeyPressed"
}

// CursorMoved is published when the pointer position changes.
type CursorMoved struct {
	Base
	X float64
	Y float64
}

func NewCursorMoved(p Priority, x, y float64) *CursorMoved {
	return &CursorMoved{Base: MakeBase(p), X: x, Y: y}
}

func (e *CursorMoved) EventName() string {
	return "CursorMoved"
}

// WindowResized is published when the host window changes size.
type WindowResized struct {
	Base
	Width  int
	Height int
}

func NewWindowResized(p Priority, width, height int) *WindowResized {
	return &WindowResized{Base: MakeBase(p), Width: width, Height: height}
}

func (e *WindowResized) EventName() string {
	return "WindowResized"
}

// WindowClosed is published when the user asks the host window to close.
type WindowClosed struct {
	Base
}

func NewWindowClosed(p Priority) *WindowClosed {
	return &WindowClosed{Base: MakeBase(p)}
}

func (e *WindowClosed) EventName() string {
	return "WindowClosed"
}
