package flexbatch

import (
	"image/color"
	"math"
)

// PackedColor is four 8-bit color channels packed into a single 32-bit
// value, laid out as alpha in the high byte down to red in the low byte
// (ABGR). A vertex carries its color as one packed value rather than four
// floats, so tinting a batchable touches a single slot per vertex.
type PackedColor uint32

// White is the default batchable color: fully opaque, no tint.
const White PackedColor = 0xffffffff

// PackRGBA packs four channel values in [0, 1] into a PackedColor.
// Values outside the range are clamped.
func PackRGBA(r, g, b, a float64) PackedColor {
	return PackedColor(clampByte(a)<<24 | clampByte(b)<<16 | clampByte(g)<<8 | clampByte(r))
}

// PackColor packs a standard color.Color into a PackedColor.
func PackColor(c color.Color) PackedColor {
	r, g, b, a := c.RGBA()
	return PackedColor(uint32(a>>8)<<24 | uint32(b>>8)<<16 | uint32(g>>8)<<8 | uint32(r>>8))
}

// Float returns the packed color reinterpreted as a float32, suitable for
// writing into a single float slot of an interleaved vertex record. The two
// high bits of alpha are masked off so the bit pattern can never form a NaN
// or infinity that buffer transfers might canonicalize.
func (c PackedColor) Float() float32 {
	return math.Float32frombits(uint32(c) & 0xfeffffff)
}

// R returns the red channel in [0, 1].
func (c PackedColor) R() float64 { return float64(c&0xff) / 255 }

// G returns the green channel in [0, 1].
func (c PackedColor) G() float64 { return float64(c>>8&0xff) / 255 }

// B returns the blue channel in [0, 1].
func (c PackedColor) B() float64 { return float64(c>>16&0xff) / 255 }

// A returns the alpha channel in [0, 1].
func (c PackedColor) A() float64 { return float64(c>>24&0xff) / 255 }

// Color converts the packed value to the standard color.Color interface.
func (c PackedColor) Color() color.Color {
	return color.NRGBA{
		R: uint8(c & 0xff),
		G: uint8(c >> 8 & 0xff),
		B: uint8(c >> 16 & 0xff),
		A: uint8(c >> 24 & 0xff),
	}
}

func clampByte(v float64) uint32 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint32(v*255 + 0.5)
}
