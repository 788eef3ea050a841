package render

import (
	"image"
	"image/color"
	"math"
)

// Framebuffer is a software raster implementing Context
// Logical coordinates are scaled by the pixel ratio into the backing store
type Framebuffer struct {
	pixels []RGB

	width, height   int // logical
	bwidth, bheight int // backing
	ratio           float64
}

// NewFramebuffer creates a framebuffer of logical size width x height
func NewFramebuffer(width, height int, pixelRatio float64) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height, pixelRatio)
	return fb
}

// BackingDims returns backing store dimensions for a logical size and pixel ratio
func BackingDims(width, height int, pixelRatio float64) (int, int) {
	if pixelRatio <= 0 || math.IsNaN(pixelRatio) {
		pixelRatio = 1
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return int(math.Ceil(float64(width) * pixelRatio)), int(math.Ceil(float64(height) * pixelRatio))
}

// Resize adjusts dimensions, reallocates only if capacity insufficient
func (f *Framebuffer) Resize(width, height int, pixelRatio float64) {
	if pixelRatio <= 0 || math.IsNaN(pixelRatio) {
		pixelRatio = 1
	}
	bw, bh := BackingDims(width, height, pixelRatio)
	size := bw * bh
	if cap(f.pixels) < size {
		f.pixels = make([]RGB, size)
	} else {
		f.pixels = f.pixels[:size]
	}
	f.width = max(width, 0)
	f.height = max(height, 0)
	f.bwidth = bw
	f.bheight = bh
	f.ratio = pixelRatio
	f.Clear(RGBBlack)
}

// Context implements Canvas, a zero-area framebuffer is not ready
func (f *Framebuffer) Context() (Context, bool) {
	if f.bwidth == 0 || f.bheight == 0 {
		return nil, false
	}
	return f, true
}

// Size returns logical dimensions
func (f *Framebuffer) Size() (float64, float64) {
	return float64(f.width), float64(f.height)
}

// BackingSize returns backing store dimensions in device pixels
func (f *Framebuffer) BackingSize() (int, int) {
	return f.bwidth, f.bheight
}

// PixelRatio returns the device pixel ratio
func (f *Framebuffer) PixelRatio() float64 {
	return f.ratio
}

// At returns the backing pixel at (x, y), out of bounds reads black
func (f *Framebuffer) At(x, y int) RGB {
	if x < 0 || y < 0 || x >= f.bwidth || y >= f.bheight {
		return RGBBlack
	}
	return f.pixels[y*f.bwidth+x]
}

// Clear fills all pixels using exponential copy
func (f *Framebuffer) Clear(bg RGB) {
	if len(f.pixels) == 0 {
		return
	}
	f.pixels[0] = bg
	for filled := 1; filled < len(f.pixels); filled *= 2 {
		copy(f.pixels[filled:], f.pixels[:filled])
	}
}

// box converts a logical bounding box into clipped backing pixel bounds
func (f *Framebuffer) box(minX, minY, maxX, maxY float64) (int, int, int, int) {
	x0 := max(int(math.Floor(minX*f.ratio)), 0)
	y0 := max(int(math.Floor(minY*f.ratio)), 0)
	x1 := min(int(math.Ceil(maxX*f.ratio)), f.bwidth-1)
	y1 := min(int(math.Ceil(maxY*f.ratio)), f.bheight-1)
	return x0, y0, x1, y1
}

// RadialGlow adds c with quadratic falloff
func (f *Framebuffer) RadialGlow(cx, cy, radius float64, c RGB, alpha float64) {
	if radius <= 0 || alpha <= 0 {
		return
	}
	x0, y0, x1, y1 := f.box(cx-radius, cy-radius, cx+radius, cy+radius)
	bcx, bcy := cx*f.ratio, cy*f.ratio
	inv := 1 / (radius * f.ratio)

	for y := y0; y <= y1; y++ {
		dy := (float64(y) + 0.5 - bcy) * inv
		row := y * f.bwidth
		for x := x0; x <= x1; x++ {
			dx := (float64(x) + 0.5 - bcx) * inv
			d := dx*dx + dy*dy
			if d >= 1 {
				continue
			}
			fall := 1 - math.Sqrt(d)
			f.pixels[row+x] = Add(f.pixels[row+x], c, alpha*fall*fall)
		}
	}
}

// Disc blends a filled circle, at least half a device pixel wide
func (f *Framebuffer) Disc(cx, cy, radius float64, c RGB, alpha float64) {
	if alpha <= 0 {
		return
	}
	br := math.Max(radius*f.ratio, 0.5)
	lr := br/f.ratio + 1
	x0, y0, x1, y1 := f.box(cx-lr, cy-lr, cx+lr, cy+lr)
	bcx, bcy := cx*f.ratio, cy*f.ratio

	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - bcy
		row := y * f.bwidth
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - bcx
			cover := br + 0.5 - math.Sqrt(dx*dx+dy*dy)
			if cover <= 0 {
				continue
			}
			f.pixels[row+x] = Blend(f.pixels[row+x], c, alpha*math.Min(cover, 1))
		}
	}
}

// Line screens a segment onto the buffer with distance-based coverage
func (f *Framebuffer) Line(x0, y0, x1, y1, width float64, c RGB, alpha float64) {
	if alpha <= 0 {
		return
	}
	half := math.Max(width*f.ratio, 1) / 2
	ax, ay := x0*f.ratio, y0*f.ratio
	vx, vy := (x1-x0)*f.ratio, (y1-y0)*f.ratio
	lenSq := vx*vx + vy*vy

	f.spans(ax, ay, ax+vx, ay+vy, half+1, func(x, y int) {
		px, py := float64(x)+0.5, float64(y)+0.5
		t := 0.0
		if lenSq > 0 {
			t = ((px-ax)*vx + (py-ay)*vy) / lenSq
			t = math.Max(0, math.Min(1, t))
		}
		dx := px - (ax + vx*t)
		dy := py - (ay + vy*t)
		cover := half + 0.5 - math.Sqrt(dx*dx+dy*dy)
		if cover <= 0 {
			return
		}
		i := y*f.bwidth + x
		f.pixels[i] = Screen(f.pixels[i], c, alpha*math.Min(cover, 1))
	})
}

// spans visits each backing pixel within reach of segment a-b once, clipped to the buffer
// It walks the major axis and covers a short cross-axis run per step, so work follows length
func (f *Framebuffer) spans(ax, ay, bx, by, reach float64, plot func(x, y int)) {
	steep := math.Abs(by-ay) > math.Abs(bx-ax)
	majorMax, minorMax := f.bwidth-1, f.bheight-1
	if steep {
		ax, ay = ay, ax
		bx, by = by, bx
		majorMax, minorMax = minorMax, majorMax
	}
	if ax > bx {
		ax, bx = bx, ax
		ay, by = by, ay
	}

	slope := 0.0
	if bx > ax {
		slope = (by - ay) / (bx - ax)
	}
	// every point within reach of the segment is within reach of its line
	across := reach * math.Sqrt(1+slope*slope)

	m0 := max(int(math.Floor(ax-reach)), 0)
	m1 := min(int(math.Ceil(bx+reach)), majorMax)
	for m := m0; m <= m1; m++ {
		mid := ay + (float64(m)+0.5-ax)*slope
		n0 := max(int(math.Floor(mid-across)), 0)
		n1 := min(int(math.Ceil(mid+across)), minorMax)
		for n := n0; n <= n1; n++ {
			if steep {
				plot(n, m)
			} else {
				plot(m, n)
			}
		}
	}
}

// Present is a no-op for headless use
func (f *Framebuffer) Present() error {
	return nil
}

// Image copies the backing store into an RGBA image
func (f *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.bwidth, f.bheight))
	for y := 0; y < f.bheight; y++ {
		row := y * f.bwidth
		for x := 0; x < f.bwidth; x++ {
			p := f.pixels[row+x]
			img.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return img
}
