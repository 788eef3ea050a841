package render

import (
	"fmt"
	"image/png"
	"io"
)

// EncodePNG writes the framebuffer backing store as a PNG image
func EncodePNG(w io.Writer, f *Framebuffer) error {
	if f.bwidth == 0 || f.bheight == 0 {
		return fmt.Errorf("encode png: empty framebuffer %dx%d", f.bwidth, f.bheight)
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, f.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
