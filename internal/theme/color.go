package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	rgbPattern     = regexp.MustCompile(`^rgb\((\d+),\s?(\d+),\s?(\d+)\)$`)
	indexedPattern = regexp.MustCompile(`^indexed\((\d+)\)$`)
	hexPattern     = regexp.MustCompile(`^#([0-9a-f]{3}|[0-9a-f]{6})$`)
)

var namedColors = map[string]string{
	"black":        "0",
	"red":          "1",
	"green":        "2",
	"yellow":       "3",
	"blue":         "4",
	"magenta":      "5",
	"cyan":         "6",
	"gray":         "7",
	"grey":         "7",
	"darkgray":     "8",
	"darkgrey":     "8",
	"lightred":     "9",
	"lightgreen":   "10",
	"lightyellow":  "11",
	"lightblue":    "12",
	"lightmagenta": "13",
	"lightcyan":    "14",
	"white":        "15",
}

// ParseColor accepts ANSI colour names, rgb(r, g, b), indexed(n), a bare
// ANSI index or a #hex value.
func ParseColor(value string) (lipgloss.Color, error) {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return "", errors.New("colour value may not be empty")
	}
	if code, ok := namedColors[lowered]; ok {
		return lipgloss.Color(code), nil
	}
	if hexPattern.MatchString(lowered) {
		return lipgloss.Color(lowered), nil
	}
	if m := rgbPattern.FindStringSubmatch(lowered); m != nil {
		var rgb [3]uint8
		for i := range rgb {
			n, err := strconv.ParseUint(m[i+1], 10, 8)
			if err != nil {
				return "", fmt.Errorf("could not parse %q as an rgb colour", value)
			}
			rgb[i] = uint8(n)
		}
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])), nil
	}
	index := lowered
	if m := indexedPattern.FindStringSubmatch(lowered); m != nil {
		index = m[1]
	}
	if n, err := strconv.ParseUint(index, 10, 8); err == nil {
		return lipgloss.Color(strconv.FormatUint(n, 10)), nil
	}
	return "", fmt.Errorf("unknown colour %q", value)
}

type colorErrors []error

func (c *colorErrors) add(field string, err error) {
	*c = append(*c, fmt.Errorf("colors.%s: %w", field, err))
}

func (c colorErrors) err() error {
	return errors.Join(c...)
}
