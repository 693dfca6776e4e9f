//go:build darwin && cgo

package input

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>

static void moveMouse(double x, double y) {
    CGEventRef event = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved,
        CGPointMake(x, y), kCGMouseButtonLeft);
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
}

static void mouseButton(double x, double y, int button, int down) {
    CGEventType type;
    CGMouseButton btn;
    switch (button) {
        case 1:  type = down ? kCGEventRightMouseDown : kCGEventRightMouseUp; btn = kCGMouseButtonRight;  break;
        case 2:  type = down ? kCGEventOtherMouseDown : kCGEventOtherMouseUp; btn = kCGMouseButtonCenter; break;
        default: type = down ? kCGEventLeftMouseDown  : kCGEventLeftMouseUp;  btn = kCGMouseButtonLeft;   break;
    }
    CGEventRef event = CGEventCreateMouseEvent(NULL, type, CGPointMake(x, y), btn);
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
}

static void keyStroke(CGKeyCode keyCode) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, keyCode, true);
    CGEventPost(kCGHIDEventTap, down);
    CFRelease(down);
    CGEventRef up = CGEventCreateKeyboardEvent(NULL, keyCode, false);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(up);
}

static void typeUnicode(const UniChar *chars, int n) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, 0, true);
    CGEventKeyboardSetUnicodeString(down, n, chars);
    CGEventPost(kCGHIDEventTap, down);
    CFRelease(down);
    CGEventRef up = CGEventCreateKeyboardEvent(NULL, 0, false);
    CGEventKeyboardSetUnicodeString(up, n, chars);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(up);
}
*/
import "C"

import (
	"fmt"
	"log/slog"
	"unicode/utf16"
	"unsafe"
)

// macOS virtual key codes.
var macKeyCodes = map[Key]C.CGKeyCode{
	KeyEnter:      0x24,
	KeyBackspace:  0x33,
	KeyTab:        0x30,
	KeyEscape:     0x35,
	KeyCapsLock:   0x39,
	KeySpace:      0x31,
	KeyShift:      0x38,
	KeyControl:    0x3B,
	KeyAlt:        0x3A,
	KeyMeta:       0x37,
	KeyArrowLeft:  0x7B,
	KeyArrowRight: 0x7C,
	KeyArrowDown:  0x7D,
	KeyArrowUp:    0x7E,
	KeyDelete:     0x75,
	KeyHome:       0x73,
	KeyEnd:        0x77,
	KeyPageUp:     0x74,
	KeyPageDown:   0x79,
}

func init() {
	registeredSinks["cgevent"] = func(*slog.Logger) (Sink, error) { return NewCGEventSink(), nil }
}

// CGEventSink injects input via CoreGraphics CGEvent APIs. Buttons are
// pressed at the last position passed to MoveTo.
type CGEventSink struct {
	x, y float64
}

func NewCGEventSink() *CGEventSink {
	return &CGEventSink{}
}

func (s *CGEventSink) Open() error  { return nil }
func (s *CGEventSink) Close() error { return nil }

func (s *CGEventSink) MoveTo(x, y int) error {
	s.x, s.y = float64(x), float64(y)
	C.moveMouse(C.double(s.x), C.double(s.y))
	return nil
}

func (s *CGEventSink) ButtonDown(b MouseButton) error {
	C.mouseButton(C.double(s.x), C.double(s.y), C.int(b), C.int(1))
	return nil
}

func (s *CGEventSink) ButtonUp(b MouseButton) error {
	C.mouseButton(C.double(s.x), C.double(s.y), C.int(b), C.int(0))
	return nil
}

func (s *CGEventSink) PressKey(k Key) error {
	code, ok := macKeyCodes[k]
	if !ok {
		return fmt.Errorf("no key code for %s", k)
	}
	C.keyStroke(code)
	return nil
}

func (s *CGEventSink) TypeText(text string) error {
	chars := utf16.Encode([]rune(text))
	if len(chars) == 0 {
		return nil
	}
	C.typeUnicode((*C.UniChar)(unsafe.Pointer(&chars[0])), C.int(len(chars)))
	return nil
}
