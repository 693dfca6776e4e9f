package input

// Sink replays input on the host.
type Sink interface {
	Open() error
	MoveTo(x, y int) error
	ButtonDown(b MouseButton) error
	ButtonUp(b MouseButton) error
	PressKey(k Key) error
	TypeText(text string) error
	Close() error
}
