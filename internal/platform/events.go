package platform

// Hints carries the creation-time properties a window advertises that match
// rules and float rules are evaluated against.
type Hints struct {
	// Type is the lower-case EWMH window type suffix ("normal", "dialog", ...).
	Type      string
	Role      string
	Transient bool
	// FixedSize is set when the minimum and maximum size hints are equal.
	FixedSize bool
	// Fullscreen is set when the window asked for _NET_WM_STATE_FULLSCREEN.
	Fullscreen bool
}

// Event is something the display server reports to the engine.
type Event interface {
	event()
}

// WindowCreated is posted when a top-level window asks to be mapped.
type WindowCreated struct {
	ID       WindowID
	Class    string
	Instance string
	Title    string
	Geometry Rect
	Hints    Hints
	// Screen is the screen the request arrived on, or -1 when unknown.
	Screen int
}

// WindowDestroyed is posted when a managed window is unmapped or destroyed.
type WindowDestroyed struct {
	ID WindowID
}

// ConfigureRequest is posted when a client asks for new geometry.
type ConfigureRequest struct {
	ID       WindowID
	Geometry Rect
}

// FocusIn is posted when the server reports a focus change, including
// pointer-driven focus when follow-mouse is enabled.
type FocusIn struct {
	ID WindowID
}

// ActivationRequest is posted when a client asks to be activated
// (_NET_ACTIVE_WINDOW from a pager or the application itself).
type ActivationRequest struct {
	ID WindowID
}

// ButtonPress is posted when a managed window is clicked. Clicks bound to
// mouse commands are not reported.
type ButtonPress struct {
	ID WindowID
}

// MinimizeRequest is posted when a client asks to be iconified
// (WM_CHANGE_STATE to IconicState).
type MinimizeRequest struct {
	ID WindowID
}

// TitleChanged is posted when a window's title property changes.
type TitleChanged struct {
	ID    WindowID
	Title string
}

// ScreenListChanged is posted after output hotplug with the new screen list,
// ordered by index.
type ScreenListChanged struct {
	Screens []Rect
}

func (WindowCreated) event()     {}
func (WindowDestroyed) event()   {}
func (ConfigureRequest) event()  {}
func (FocusIn) event()           {}
func (ActivationRequest) event() {}
func (ButtonPress) event()       {}
func (MinimizeRequest) event()   {}
func (TitleChanged) event()      {}
func (ScreenListChanged) event() {}
