// internal/imaging/preview.go
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"printer-service/internal/escpos"
)

var previewPalette = color.Palette{color.Black, color.White}

// RenderRaster draws a raster as it will be printed: black where the head
// burns, white elsewhere, full PrintHeadWidth wide.
func RenderRaster(r *escpos.Raster) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, escpos.PrintHeadWidth, r.Height()), previewPalette)
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < escpos.PrintHeadWidth; x++ {
			// palette index 1 is white, matching the raster bit
			img.SetColorIndex(x, y, r.Bit(x, y))
		}
	}
	return img
}

// WritePreviewPNG encodes the raster preview as PNG
func WritePreviewPNG(w io.Writer, r *escpos.Raster) error {
	if err := png.Encode(w, RenderRaster(r)); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}
