package input

import (
	"fmt"
	"sync"
)

// Dispatcher turns control commands into Sink calls. Calls into the sink
// are serialized across connections.
type Dispatcher struct {
	sink         Sink
	hostW, hostH int

	mu sync.Mutex
}

// NewDispatcher creates a dispatcher for a host screen of hostW x hostH.
func NewDispatcher(sink Sink, hostW, hostH int) *Dispatcher {
	return &Dispatcher{sink: sink, hostW: hostW, hostH: hostH}
}

// Dispatch replays c on the sink.
func (d *Dispatcher) Dispatch(c *Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c.Type == CommandKey {
		if k, ok := LookupKey(c.Key); ok {
			return d.sink.PressKey(k)
		}
		return d.sink.TypeText(c.Key)
	}

	x, y := Remap(c.X, c.Y, c.DisplaySize, d.hostW, d.hostH)
	if err := d.sink.MoveTo(x, y); err != nil {
		return fmt.Errorf("move to %d,%d: %w", x, y, err)
	}
	switch c.Type {
	case CommandMove:
		return nil
	case CommandDown:
		return d.sink.ButtonDown(MouseButtonLeft)
	case CommandUp:
		return d.sink.ButtonUp(MouseButtonLeft)
	case CommandClick:
		if err := d.sink.ButtonDown(MouseButtonLeft); err != nil {
			return err
		}
		return d.sink.ButtonUp(MouseButtonLeft)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
}
