// Package scroll keeps a highlighted row inside a fixed-height window.
package scroll

// Align returns a row offset that keeps sel away from the window edges,
// moving the window just enough to leave a small buffer of rows.
func Align(sel, off, h, total int) int {
	if h <= 0 || total <= 0 {
		return 0
	}
	sel = clamp(sel, 0, total-1)
	if h > total {
		h = total
	}
	maxOff := total - h
	off = clamp(off, 0, maxOff)

	if sel >= total-1 {
		return maxOff
	}

	buf := h / 4
	if buf < 1 {
		buf = 1
	}
	top := off + buf
	bot := off + h - 1 - buf
	if sel < top {
		return clamp(sel-buf, 0, maxOff)
	}
	if sel > bot {
		return clamp(off+sel-bot, 0, maxOff)
	}
	return off
}

// Window returns the half-open row range [start, end) shown at off.
func Window(off, h, total int) (int, int) {
	if h <= 0 || total <= 0 {
		return 0, 0
	}
	start := clamp(off, 0, total-1)
	end := start + h
	if end > total {
		end = total
	}
	return start, end
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
