package text

import (
	"math"

	"github.com/rivo/uniseg"
)

// Length returns the number of user-perceived characters in s
func Length(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// ByteOffset returns the byte offset at which the n-th grapheme cluster starts.
// n is clamped to [0, Length(s)].
func ByteOffset(s string, n int) int {
	if n <= 0 {
		return 0
	}
	g := uniseg.NewGraphemes(s)
	i := 0
	for g.Next() {
		if i == n {
			start, _ := g.Positions()
			return start
		}
		i++
	}
	return len(s)
}

// SplitOffset returns the byte offset that keeps floor(Length(s)*ratio)
// characters before it
func SplitOffset(s string, ratio float64) int {
	keep := int(math.Floor(float64(Length(s)) * ratio))
	return ByteOffset(s, keep)
}
