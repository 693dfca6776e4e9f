package input

import (
	"errors"
	"fmt"
	"testing"
)

func TestRemapIdentity(t *testing.T) {
	for _, p := range [][2]int{{0, 0}, {1, 1}, {640, 360}, {1279, 719}} {
		x, y := Remap(p[0], p[1], &DisplaySize{Width: 1280, Height: 720}, 1280, 720)
		if x != p[0] || y != p[1] {
			t.Errorf("Remap(%d,%d) = %d,%d on identical sizes", p[0], p[1], x, y)
		}
	}
}

func TestRemap(t *testing.T) {
	tests := []struct {
		name         string
		x, y         int
		client       *DisplaySize
		hostW, hostH int
		wantX, wantY int
	}{
		{"scale up", 640, 360, &DisplaySize{1280, 720}, 1920, 1080, 960, 540},
		{"origin", 0, 0, &DisplaySize{1280, 720}, 1920, 1080, 0, 0},
		{"far corner", 1279, 719, &DisplaySize{1280, 720}, 1920, 1080, 1918, 1078},
		{"scale down truncates", 3, 3, &DisplaySize{4, 4}, 2, 2, 1, 1},
		{"outside clamps high", 2000, 900, &DisplaySize{1280, 720}, 1920, 1080, 1919, 1079},
		{"negative clamps low", -5, -1, &DisplaySize{1280, 720}, 1920, 1080, 0, 0},
		{"no display size", 10, 20, nil, 1920, 1080, 10, 20},
		{"zero display size", 10, 20, &DisplaySize{0, 0}, 1920, 1080, 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Remap(tt.x, tt.y, tt.client, tt.hostW, tt.hostH)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Remap = %d,%d, want %d,%d", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand([]byte(`{"Type":"move","X":640,"Y":360,"DisplaySize":{"width":1280,"height":720}}`))
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if c.Type != CommandMove || c.X != 640 || c.DisplaySize == nil || c.DisplaySize.Height != 720 {
		t.Fatalf("parsed %+v", c)
	}

	if _, err := ParseCommand([]byte(`{"Type":"wiggle"}`)); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown type err = %v", err)
	}
	if _, err := ParseCommand([]byte(`{"Type":`)); err == nil {
		t.Error("malformed JSON accepted")
	}
	if _, err := ParseCommand([]byte(`{"Type":"key"}`)); err == nil {
		t.Error("key command without Key accepted")
	}
}

// recordingSink records calls as strings.
type recordingSink struct {
	calls []string
}

func (s *recordingSink) Open() error  { return nil }
func (s *recordingSink) Close() error { return nil }
func (s *recordingSink) MoveTo(x, y int) error {
	s.calls = append(s.calls, fmt.Sprintf("move %d,%d", x, y))
	return nil
}
func (s *recordingSink) ButtonDown(b MouseButton) error {
	s.calls = append(s.calls, fmt.Sprintf("down %d", b))
	return nil
}
func (s *recordingSink) ButtonUp(b MouseButton) error {
	s.calls = append(s.calls, fmt.Sprintf("up %d", b))
	return nil
}
func (s *recordingSink) PressKey(k Key) error {
	s.calls = append(s.calls, "press "+k.String())
	return nil
}
func (s *recordingSink) TypeText(text string) error {
	s.calls = append(s.calls, "type "+text)
	return nil
}

func TestDispatch(t *testing.T) {
	size := &DisplaySize{Width: 1280, Height: 720}
	tests := []struct {
		name string
		cmd  Command
		want []string
	}{
		{"move", Command{Type: CommandMove, X: 640, Y: 360, DisplaySize: size}, []string{"move 960,540"}},
		{"down", Command{Type: CommandDown, X: 0, Y: 0, DisplaySize: size}, []string{"move 0,0", "down 0"}},
		{"up", Command{Type: CommandUp, X: 640, Y: 360, DisplaySize: size}, []string{"move 960,540", "up 0"}},
		{"click", Command{Type: CommandClick, X: 640, Y: 360, DisplaySize: size}, []string{"move 960,540", "down 0", "up 0"}},
		{"enter", Command{Type: CommandKey, Key: "Enter", KeyCode: "Enter"}, []string{"press Enter"}},
		{"arrow", Command{Type: CommandKey, Key: "ArrowLeft", KeyCode: "ArrowLeft"}, []string{"press ArrowLeft"}},
		{"letter", Command{Type: CommandKey, Key: "a", KeyCode: "KeyA"}, []string{"type a"}},
		{"unnamed", Command{Type: CommandKey, Key: "F5", KeyCode: "F5"}, []string{"type F5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			if err := NewDispatcher(sink, 1920, 1080).Dispatch(&tt.cmd); err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if fmt.Sprint(sink.calls) != fmt.Sprint(tt.want) {
				t.Errorf("calls = %v, want %v", sink.calls, tt.want)
			}
		})
	}
}

func TestLookupKeyNames(t *testing.T) {
	for name, k := range namedKeys {
		if k.String() != name {
			t.Errorf("%v.String() = %q, want %q", int(k), k.String(), name)
		}
	}
	if _, ok := LookupKey("enter"); ok {
		t.Error("key lookup is case-insensitive")
	}
}

func TestNewSink(t *testing.T) {
	if _, err := NewSink("log", nil); err != nil {
		t.Fatalf("NewSink(log): %v", err)
	}
	if _, err := NewSink("missing", nil); err == nil {
		t.Fatal("NewSink accepted an unknown name")
	}
}
