package common

// Color is an RGBA color with float32 components in [0, 1].
//
// Values above 1 are allowed for HDR-style light accumulation; nothing in
// the engine clamps them.
type Color struct {
	R, G, B, A float32
}

// NewColor creates an opaque color from RGB components.
//
// Parameters:
//   - r: the red component
//   - g: the green component
//   - b: the blue component
//
// Returns:
//   - Color: the color with alpha set to 1
func NewColor(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Scale multiplies the RGB components by a factor, leaving alpha untouched.
//
// Parameters:
//   - factor: the multiplier applied to R, G and B
//
// Returns:
//   - Color: the scaled color
func (c Color) Scale(factor float32) Color {
	return Color{R: c.R * factor, G: c.G * factor, B: c.B * factor, A: c.A}
}

// Add sums the RGB components of two colors, keeping the receiver's alpha.
//
// Parameters:
//   - other: the color to add
//
// Returns:
//   - Color: the component-wise sum
func (c Color) Add(other Color) Color {
	return Color{R: c.R + other.R, G: c.G + other.G, B: c.B + other.B, A: c.A}
}
