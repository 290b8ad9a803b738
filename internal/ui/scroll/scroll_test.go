package scroll

import "testing"

func TestAlignKeepsSelectionVisible(t *testing.T) {
	cases := []struct {
		name             string
		sel, off, h, tot int
		want             int
	}{
		{name: "fits", sel: 2, off: 0, h: 10, tot: 5, want: 0},
		{name: "top", sel: 0, off: 4, h: 4, tot: 20, want: 0},
		{name: "scroll down", sel: 6, off: 0, h: 4, tot: 20, want: 4},
		{name: "inside buffer", sel: 5, off: 4, h: 4, tot: 20, want: 4},
		{name: "last row", sel: 19, off: 0, h: 4, tot: 20, want: 16},
		{name: "empty", sel: 0, off: 3, h: 4, tot: 0, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Align(tc.sel, tc.off, tc.h, tc.tot); got != tc.want {
				t.Fatalf("Align(%d,%d,%d,%d) = %d, want %d", tc.sel, tc.off, tc.h, tc.tot, got, tc.want)
			}
		})
	}
}

func TestAlignedWindowContainsSelection(t *testing.T) {
	off := 0
	for sel := 0; sel < 30; sel++ {
		off = Align(sel, off, 6, 30)
		start, end := Window(off, 6, 30)
		if sel < start || sel >= end {
			t.Fatalf("sel %d outside window [%d,%d)", sel, start, end)
		}
	}
	for sel := 29; sel >= 0; sel-- {
		off = Align(sel, off, 6, 30)
		start, end := Window(off, 6, 30)
		if sel < start || sel >= end {
			t.Fatalf("sel %d outside window [%d,%d)", sel, start, end)
		}
	}
}

func TestWindowClamps(t *testing.T) {
	if s, e := Window(8, 5, 10); s != 8 || e != 10 {
		t.Fatalf("Window = [%d,%d)", s, e)
	}
	if s, e := Window(0, 5, 0); s != 0 || e != 0 {
		t.Fatalf("empty Window = [%d,%d)", s, e)
	}
}
