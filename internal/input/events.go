package input

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownCommand is returned for a command whose Type is not recognised.
var ErrUnknownCommand = errors.New("input: unknown command")

// CommandType identifies the kind of control command.
type CommandType string

const (
	CommandMove  CommandType = "move"
	CommandDown  CommandType = "down"
	CommandUp    CommandType = "up"
	CommandClick CommandType = "click"
	CommandKey   CommandType = "key"
)

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// DisplaySize is the size of the client's view of the stream.
type DisplaySize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Command is the wire format of a control message. Pointer commands use
// X, Y and DisplaySize; key commands use Key and KeyCode.
type Command struct {
	Type        CommandType  `json:"Type"`
	X           int          `json:"X"`
	Y           int          `json:"Y"`
	DisplaySize *DisplaySize `json:"DisplaySize,omitempty"`
	Key         string       `json:"Key,omitempty"`
	KeyCode     string       `json:"KeyCode,omitempty"`
}

// IsPointer reports whether c carries a pointer position.
func (c *Command) IsPointer() bool {
	switch c.Type {
	case CommandMove, CommandDown, CommandUp, CommandClick:
		return true
	}
	return false
}

// ParseCommand decodes one control message.
func ParseCommand(data []byte) (*Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	switch c.Type {
	case CommandMove, CommandDown, CommandUp, CommandClick:
	case CommandKey:
		if c.Key == "" {
			return nil, fmt.Errorf("key command without Key: %w", ErrUnknownCommand)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return &c, nil
}
