package render

import "image/color"

var (
	ColorBackground = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	ColorWalkable   = color.RGBA{R: 0x4a, G: 0x7a, B: 0x3c, A: 0xff}
	ColorBlocked    = color.RGBA{R: 0x5a, G: 0x55, B: 0x50, A: 0xff}
	ColorGridLine   = color.RGBA{R: 0x1e, G: 0x2a, B: 0x1a, A: 0xb0}
	ColorHover      = color.RGBA{R: 0xff, G: 0xf0, B: 0x80, A: 0xff}
	ColorObserver   = color.RGBA{R: 0x60, G: 0xc0, B: 0xff, A: 0xff}
	ColorLabel      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ColorHPBack     = color.RGBA{R: 0x30, G: 0x10, B: 0x10, A: 0xd0}
	ColorHPFill     = color.RGBA{R: 0xd0, G: 0x30, B: 0x30, A: 0xff}
	ColorDamage     = color.RGBA{R: 0xff, G: 0x50, B: 0x40, A: 0xff}
	ColorCritical   = color.RGBA{R: 0xff, G: 0xa0, B: 0x20, A: 0xff}
	ColorMiss       = color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}
)
