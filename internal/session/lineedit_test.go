package session

import "testing"

func TestCutToWordStart(t *testing.T) {
	cases := map[string]string{
		"one two three four":  "one two three ",
		"one two three four ": "one two three ",
		"one ":                "",
		"one  ":               "",
		"one   two   three":   "one   two   ",
		"a":                   "",
		"":                    "",
		"héllo wörld":         "héllo ",
	}
	for in, want := range cases {
		if got := cutToWordStart(in); got != want {
			t.Fatalf("cutToWordStart(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDropLastRune(t *testing.T) {
	if got := dropLastRune("abç"); got != "ab" {
		t.Fatalf("expected multibyte rune to be dropped whole, got %q", got)
	}
	if got := dropLastRune(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestClampIndex(t *testing.T) {
	cases := []struct{ idx, n, want int }{
		{-1, 0, -1},
		{3, 0, -1},
		{-1, 3, 0},
		{5, 3, 2},
		{1, 3, 1},
	}
	for _, tc := range cases {
		if got := clampIndex(tc.idx, tc.n); got != tc.want {
			t.Fatalf("clampIndex(%d, %d) = %d, want %d", tc.idx, tc.n, got, tc.want)
		}
	}
}
