//go:build !darwin || !cgo

package permissions

// Check is a no-op on platforms without a permission model for capture
// and input.
func Check(Need) error { return nil }
