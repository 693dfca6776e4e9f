package input

// Key is a named key that is pressed rather than typed.
type Key int

const (
	KeyEnter Key = iota + 1
	KeyBackspace
	KeyTab
	KeyEscape
	KeyCapsLock
	KeySpace
	KeyShift
	KeyControl
	KeyAlt
	KeyMeta
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

var namedKeys = map[string]Key{
	"Enter":      KeyEnter,
	"Backspace":  KeyBackspace,
	"Tab":        KeyTab,
	"Escape":     KeyEscape,
	"CapsLock":   KeyCapsLock,
	"Space":      KeySpace,
	"Shift":      KeyShift,
	"Control":    KeyControl,
	"Alt":        KeyAlt,
	"Meta":       KeyMeta,
	"ArrowLeft":  KeyArrowLeft,
	"ArrowRight": KeyArrowRight,
	"ArrowUp":    KeyArrowUp,
	"ArrowDown":  KeyArrowDown,
	"Delete":     KeyDelete,
	"Home":       KeyHome,
	"End":        KeyEnd,
	"PageUp":     KeyPageUp,
	"PageDown":   KeyPageDown,
}

// LookupKey returns the named key for a browser key name.
func LookupKey(name string) (Key, bool) {
	k, ok := namedKeys[name]
	return k, ok
}

func (k Key) String() string {
	for name, v := range namedKeys {
		if v == k {
			return name
		}
	}
	return "Unknown"
}
