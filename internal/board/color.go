package board

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf16"
)

// Light returns pastel colours for a column on a light background.
func Light(id string) Color {
	if strings.TrimSpace(id) == "" {
		return Color{
			Background: hsl(0, 0, 90),
			Text:       hsl(0, 0, 30),
			Dot:        hsl(0, 0, 50),
		}
	}
	h := hashString(id)
	sat := 60 + h%15
	return Color{
		Background: hsl(h%360, sat, 85+h%8),
		Text:       hsl(h%360, sat+10, 25+h%15),
		Dot:        hsl(h%360, sat+15, 45+h%15),
	}
}

// Dark returns muted colours for a column on a dark background.
func Dark(id string) Color {
	if strings.TrimSpace(id) == "" {
		return Color{
			Background: hsl(0, 0, 20),
			Text:       hsl(0, 0, 80),
			Dot:        hsl(0, 0, 60),
		}
	}
	h := hashString(id)
	sat := 40 + h%15
	return Color{
		Background: hsl(h%360, sat, 20+h%10),
		Text:       hsl(h%360, sat+10, 70+h%15),
		Dot:        hsl(h%360, sat+15, 55+h%15),
	}
}

// hashString is the classic 31-multiplier string hash over UTF-16 code units,
// wrapped to 32 bits and made non-negative.
func hashString(s string) int64 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// hsl converts hue (degrees), saturation and lightness (percent) to #rrggbb.
func hsl(h, s, l int64) string {
	sf := float64(s) / 100
	lf := float64(l) / 100
	c := (1 - math.Abs(2*lf-1)) * sf
	hp := float64(h) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := lf - c/2
	return fmt.Sprintf("#%02x%02x%02x", channel(r+m), channel(g+m), channel(b+m))
}

func channel(v float64) int {
	n := int(math.Round(v * 255))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
