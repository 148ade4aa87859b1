package style

import (
	"strconv"
	"strings"
)

const defaultFontSize = 16.0

// ParseLength converts a CSS length into px. Percentages resolve against
// containerSize, em against fontSize.
func ParseLength(value string, containerSize, fontSize, defaultValue float64) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "auto" || value == "normal" {
		return defaultValue
	}
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	num := func(s string) (float64, bool) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}

	switch {
	case strings.HasSuffix(value, "%"):
		if f, ok := num(value[:len(value)-1]); ok {
			return containerSize * f / 100
		}
	case strings.HasSuffix(value, "px"):
		if f, ok := num(value[:len(value)-2]); ok {
			return f
		}
	case strings.HasSuffix(value, "rem"):
		if f, ok := num(value[:len(value)-3]); ok {
			return f * defaultFontSize
		}
	case strings.HasSuffix(value, "em"):
		if f, ok := num(value[:len(value)-2]); ok {
			return f * fontSize
		}
	case strings.HasSuffix(value, "pt"):
		if f, ok := num(value[:len(value)-2]); ok {
			return f * 96 / 72
		}
	case strings.HasSuffix(value, "in"):
		if f, ok := num(value[:len(value)-2]); ok {
			return f * 96
		}
	default:
		if f, ok := num(value); ok {
			return f
		}
	}
	return defaultValue
}

// ParseBoxShorthand parses "a", "a b", "a b c" or "a b c d" into top, right, bottom, left
func ParseBoxShorthand(value string, containerSize, fontSize, def float64) (float64, float64, float64, float64) {
	parts := strings.Fields(value)
	to := func(s string) float64 { return ParseLength(s, containerSize, fontSize, def) }
	switch len(parts) {
	case 0:
		return def, def, def, def
	case 1:
		a := to(parts[0])
		return a, a, a, a
	case 2:
		tb, rl := to(parts[0]), to(parts[1])
		return tb, rl, tb, rl
	case 3:
		rl := to(parts[1])
		return to(parts[0]), rl, to(parts[2]), rl
	default:
		return to(parts[0]), to(parts[1]), to(parts[2]), to(parts[3])
	}
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32, "xxx-large": 48,
}

// ParseFontSize resolves a font-size value against the parent's size
func ParseFontSize(value string, parentSize float64) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if px, ok := fontSizeKeywords[value]; ok {
		return px
	}
	switch value {
	case "smaller":
		return parentSize / 1.2
	case "larger":
		return parentSize * 1.2
	}
	if strings.HasSuffix(value, "%") {
		return ParseLength(value, parentSize, parentSize, parentSize)
	}
	size := ParseLength(value, parentSize, parentSize, parentSize)
	if size <= 0 {
		return parentSize
	}
	return size
}

// FontSize returns the resolved font size in px
func (s ComputedStyle) FontSize() float64 {
	v := s.Get("font-size")
	if v == "" {
		return defaultFontSize
	}
	return ParseLength(v, defaultFontSize, defaultFontSize, defaultFontSize)
}

// LineHeight returns the used line height in px. "normal" is 1.2 times the font size.
func (s ComputedStyle) LineHeight() float64 {
	fs := s.FontSize()
	v := s.Get("line-height")
	if v == "" || v == "normal" {
		return 1.2 * fs
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f * fs
	}
	return ParseLength(v, fs, fs, 1.2*fs)
}

// Bold reports whether the font weight is bold
func (s ComputedStyle) Bold() bool {
	switch s.Get("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

// Italic reports whether the font style is italic or oblique
func (s ComputedStyle) Italic() bool {
	v := s.Get("font-style")
	return v == "italic" || v == "oblique"
}

// Family returns the first family of the font-family list, unquoted
func (s ComputedStyle) Family() string {
	first, _, _ := strings.Cut(s.Get("font-family"), ",")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(first), `'"`))
}

// PreservesWhitespace reports whether white-space keeps newlines and runs of spaces
func (s ComputedStyle) PreservesWhitespace() bool {
	switch s.Get("white-space") {
	case "pre", "pre-wrap", "pre-line", "break-spaces":
		return true
	}
	return false
}
