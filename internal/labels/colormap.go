package labels

import (
	"image/color"
	"math/rand"
)

// ColorMap maps labels to their display colors.
//
// The mapping is independent of allocator state: a color set for a label
// persists even after the label is freed, and is only replaced when the label
// is reassigned a color. This keeps re-added objects visually stable.
type ColorMap map[Label]color.RGBA

// NewColorMap returns an empty color map.
func NewColorMap() ColorMap { return make(ColorMap) }

// Set assigns a color to a label.
func (m ColorMap) Set(l Label, c color.RGBA) { m[l] = c }

// Get returns the color for a label and whether one has been assigned.
func (m ColorMap) Get(l Label) (color.RGBA, bool) {
	c, ok := m[l]
	return c, ok
}

// RandomColor returns a fully saturated, fully bright color with a random
// hue. Objects added without an explicit color get one of these.
func RandomColor(rng *rand.Rand) color.RGBA {
	r, g, b := hsvToRGB(rng.Float64(), 1.0, 1.0)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// hsvToRGB converts HSV (all components in [0,1]) to RGB bytes.
func hsvToRGB(h, s, v float64) (r, g, b uint8) {
	if s == 0 {
		c := uint8(v * 255)
		return c, c, c
	}
	h = h - float64(int(h)) // wrap into [0,1)
	if h < 0 {
		h += 1
	}
	h *= 6
	sector := int(h)
	f := h - float64(sector)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var rf, gf, bf float64
	switch sector {
	case 0:
		rf, gf, bf = v, t, p
	case 1:
		rf, gf, bf = q, v, p
	case 2:
		rf, gf, bf = p, v, t
	case 3:
		rf, gf, bf = p, q, v
	case 4:
		rf, gf, bf = t, p, v
	default:
		rf, gf, bf = v, p, q
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}
