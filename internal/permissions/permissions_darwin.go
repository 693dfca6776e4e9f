//go:build darwin && cgo

package permissions

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation -framework CoreGraphics
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <CoreGraphics/CoreGraphics.h>

static int accessibilityTrusted(int prompt) {
    CFMutableDictionaryRef opts = CFDictionaryCreateMutable(NULL, 0, NULL, NULL);
    CFDictionarySetValue(opts, kAXTrustedCheckOptionPrompt, prompt ? kCFBooleanTrue : kCFBooleanFalse);
    Boolean trusted = AXIsProcessTrustedWithOptions(opts);
    CFRelease(opts);
    return trusted ? 1 : 0;
}

// Available since macOS 10.15.
static int screenCaptureAllowed(int prompt) {
    return prompt ? CGRequestScreenCaptureAccess() : CGPreflightScreenCaptureAccess();
}
*/
import "C"

import "fmt"

// HasScreenRecording reports whether the process may capture the screen.
func HasScreenRecording() bool {
	return C.screenCaptureAllowed(0) != 0
}

// RequestScreenRecording shows the system prompt if the permission is
// missing.
func RequestScreenRecording() bool {
	return C.screenCaptureAllowed(1) != 0
}

// HasAccessibility reports whether the process may post input events.
func HasAccessibility() bool {
	return C.accessibilityTrusted(0) != 0
}

// RequestAccessibility opens the Accessibility pane if the permission is
// missing.
func RequestAccessibility() bool {
	return C.accessibilityTrusted(1) != 0
}

// Check verifies the needed permissions, prompting for any that are
// missing.
func Check(n Need) error {
	if n.ScreenRecording && !HasScreenRecording() {
		RequestScreenRecording()
		return fmt.Errorf("%w: screen recording (grant it in System Settings and restart)", ErrNotGranted)
	}
	if n.Accessibility && !HasAccessibility() {
		RequestAccessibility()
		return fmt.Errorf("%w: accessibility (grant it in System Settings and restart)", ErrNotGranted)
	}
	return nil
}
