package input

// Remap converts a client position to host coordinates. The result is
// clamped to the host screen. Without a usable client size the position
// passes through unchanged.
func Remap(x, y int, client *DisplaySize, hostW, hostH int) (int, int) {
	if client == nil || client.Width <= 0 || client.Height <= 0 || hostW <= 0 || hostH <= 0 {
		return x, y
	}
	hx := x * hostW / client.Width
	hy := y * hostH / client.Height
	return clamp(hx, 0, hostW-1), clamp(hy, 0, hostH-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
