//go:build !darwin || !cgo

package permissions

import "testing"

func TestCheckWithoutPermissionModel(t *testing.T) {
	if err := Check(Need{ScreenRecording: true, Accessibility: true}); err != nil {
		t.Fatalf("Check = %v, want nil", err)
	}
}
