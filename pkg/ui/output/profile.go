package output

import (
	"fmt"

	"github.com/muesli/termenv"

	"github.com/odvcencio/lattice/pkg/ui/compositor"
)

// degradeColor maps c onto the closest color p can display.
func degradeColor(p termenv.Profile, c compositor.Color) compositor.Color {
	var tc termenv.Color
	switch c.Mode {
	case compositor.ColorModeRGB:
		tc = termenv.RGBColor(fmt.Sprintf("#%06x", c.Value))
	case compositor.ColorMode256:
		tc = termenv.ANSI256Color(c.Value)
	case compositor.ColorMode16:
		if p == termenv.Ascii {
			return compositor.ColorNone
		}
		return c
	default:
		return c
	}

	switch v := p.Convert(tc).(type) {
	case termenv.RGBColor:
		return c
	case termenv.ANSI256Color:
		return compositor.Color256(uint8(v))
	case termenv.ANSIColor:
		return compositor.Color16(uint8(v))
	default:
		return compositor.ColorNone
	}
}
