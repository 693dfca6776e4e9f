package permissions

import "errors"

// ErrNotGranted is returned when the OS has not granted a permission the
// bridge needs. The user has to grant it and restart the process.
var ErrNotGranted = errors.New("permissions: not granted")

// Need lists the permissions to check.
type Need struct {
	ScreenRecording bool
	Accessibility   bool
}
