package render

// Context is the drawing surface for one frame, coordinates are logical pixels
type Context interface {
	// Size returns logical dimensions
	Size() (width, height float64)
	// Clear fills the whole surface
	Clear(bg RGB)
	// RadialGlow adds a soft disc fading from alpha at the center to zero at radius
	RadialGlow(cx, cy, radius float64, c RGB, alpha float64)
	// Line draws a segment of the given width blended at alpha
	Line(x0, y0, x1, y1, width float64, c RGB, alpha float64)
	// Disc draws a filled circle with an anti-aliased rim
	Disc(cx, cy, radius float64, c RGB, alpha float64)
	// Present publishes the frame to the host
	Present() error
}

// Canvas hands out a Context when the host surface is ready
// ok=false means the surface is not mounted yet and the frame must be skipped
type Canvas interface {
	Context() (ctx Context, ok bool)
}

// Resizer is implemented by canvases that own a backing store sized from the viewport
type Resizer interface {
	Resize(width, height int, pixelRatio float64)
}
