// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import "image/color"

// RGB565 is a 16 bits color, 5 bits red, 6 bits green, 5 bits blue, as the
// panel stores it.
type RGB565 uint16

// RGBA implements color.Color.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r = uint32(c>>11) & 0x1F
	g = uint32(c>>5) & 0x3F
	b = uint32(c) & 0x1F
	// Replicate the high bits into the low bits to span the full range.
	r = (r<<11 | r<<6 | r<<1) | r>>4
	g = (g<<10 | g<<4) | g>>2
	b = (b<<11 | b<<6 | b<<1) | b>>4
	return r, g, b, 0xFFFF
}

// RGB565Model converts any color to RGB565.
var RGB565Model = color.ModelFunc(toRGB565)

func toRGB565(c color.Color) color.Color {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB565((r>>11)<<11 | (g>>10)<<5 | b>>11)
}
