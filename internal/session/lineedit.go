package session

// cutToWordStart drops the last word and any spaces after it, keeping the
// space that precedes the word.
func cutToWordStart(s string) string {
	r := []rune(s)
	cutLetter := false
	for len(r) > 0 {
		last := r[len(r)-1]
		r = r[:len(r)-1]
		if last == ' ' {
			if cutLetter {
				r = append(r, ' ')
				break
			}
			continue
		}
		cutLetter = true
	}
	return string(r)
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// editLine applies a line editing event to s. ok is false for events that do
// not edit text.
func editLine(s string, ev Event) (string, bool) {
	switch ev.Kind {
	case EventInput:
		return s + ev.Text, true
	case EventBackspace:
		return dropLastRune(s), true
	case EventCutWord:
		return cutToWordStart(s), true
	case EventClearLine:
		return "", true
	default:
		return s, false
	}
}

func clampIndex(idx, n int) int {
	if n == 0 {
		return -1
	}
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
