// internal/escpos/raster.go
package escpos

import (
	"fmt"
)

// Print head geometry and raster command limits
const (
	PrintHeadWidth = 384
	RowBytes       = PrintHeadWidth / 8
	MaxChunkRows   = 255

	DefaultBlackThreshold = 48
	DefaultAlphaThreshold = 127
)

// PixelBuffer is an 8-bit image with 1 (gray), 3 (RGB) or 4 (RGBA) samples
// per pixel, row-major without padding. The encoder never modifies it.
type PixelBuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Encoder binarizes pixel buffers into rasters
type Encoder struct {
	// Pixels darker than BlackThreshold print as ink.
	BlackThreshold int
	// RGBA pixels with alpha at or below AlphaThreshold never print.
	AlphaThreshold int
}

// NewEncoder returns an encoder with the default thresholds
func NewEncoder() *Encoder {
	return &Encoder{
		BlackThreshold: DefaultBlackThreshold,
		AlphaThreshold: DefaultAlphaThreshold,
	}
}

// Encode converts buf into a PrintHeadWidth wide monochrome raster. Narrower
// images are padded with white on the right. Either the whole raster is
// returned or an error and nothing.
func (e *Encoder) Encode(buf PixelBuffer) (*Raster, error) {
	w, h, ch := buf.Width, buf.Height, buf.Channels

	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("encode %dx%d: %w", w, h, ErrEmptyImage)
	}
	if w > PrintHeadWidth {
		return nil, fmt.Errorf("encode width %d > %d: %w", w, PrintHeadWidth, ErrImageTooWide)
	}

	var ink func(px []byte) bool
	switch ch {
	case 1:
		ink = func(px []byte) bool {
			return int(px[0]) < e.BlackThreshold
		}
	case 3:
		ink = e.darkRGB
	case 4:
		ink = func(px []byte) bool {
			return e.darkRGB(px) && int(px[3]) > e.AlphaThreshold
		}
	default:
		return nil, fmt.Errorf("encode %d channels: %w", ch, ErrUnsupportedPixelFormat)
	}

	// w*h*ch can overflow; compare rows instead
	if h > len(buf.Pix)/(w*ch) {
		return nil, fmt.Errorf("encode %dx%dx%d from %d samples: %w", w, h, ch, len(buf.Pix), ErrEmptyImage)
	}

	rows := make([][]byte, h)
	for y := 0; y < h; y++ {
		row := make([]byte, RowBytes)
		for i := range row {
			row[i] = 0xFF
		}

		offset := y * w * ch
		for x := 0; x < w; x++ {
			px := buf.Pix[offset+x*ch : offset+(x+1)*ch]
			if ink(px) {
				row[x/8] &^= 1 << (7 - uint(x%8))
			}
		}
		rows[y] = row
	}

	return &Raster{rows: rows}, nil
}

// darkRGB averages only the first two channels but divides by three. Printed
// output depends on this exact formula, so it must not be "corrected".
func (e *Encoder) darkRGB(px []byte) bool {
	return float64(int(px[0])+int(px[1]))/3.0 < float64(e.BlackThreshold)
}

// Raster is a packed monochrome bitmap PrintHeadWidth dots wide. A set bit is
// white, a clear bit is ink. Rows are MSB first.
type Raster struct {
	rows [][]byte
}

// Height is the number of rows
func (r *Raster) Height() int {
	return len(r.rows)
}

// Row returns a copy of row y
func (r *Raster) Row(y int) []byte {
	return append([]byte(nil), r.rows[y]...)
}

// Bit returns 1 for white and 0 for ink at (x, y)
func (r *Raster) Bit(x, y int) byte {
	return (r.rows[y][x/8] >> (7 - uint(x%8))) & 1
}

// Chunks splits the raster into runs of at most MaxChunkRows rows
func (r *Raster) Chunks() []RasterChunk {
	chunks := make([]RasterChunk, 0, (len(r.rows)+MaxChunkRows-1)/MaxChunkRows)
	for start := 0; start < len(r.rows); start += MaxChunkRows {
		end := start + MaxChunkRows
		if end > len(r.rows) {
			end = len(r.rows)
		}
		chunks = append(chunks, RasterChunk{Rows: r.rows[start:end]})
	}
	return chunks
}

// RasterChunk is one raster command worth of rows
type RasterChunk struct {
	Rows [][]byte
}

// Header is the 4 byte chunk header: marker, row count, row width in bytes
func (c RasterChunk) Header(marker [2]byte) []byte {
	return []byte{marker[0], marker[1], byte(len(c.Rows)), RowBytes}
}

// FrameKind tells the writer which settle delay follows a frame
type FrameKind int

const (
	FrameHeader FrameKind = iota
	FrameRow
)

// Frame is one write of a raster transfer
type Frame struct {
	Kind FrameKind
	Data []byte
}

// RasterFrames lays the raster out on the wire: each chunk header, then every
// row preceded by the dialect's separator, except the last row of the image.
// Frames must be written in order.
func (d *Dialect) RasterFrames(r *Raster) []Frame {
	chunks := r.Chunks()
	frames := make([]Frame, 0, len(chunks)+r.Height())

	remaining := r.Height()
	for _, chunk := range chunks {
		frames = append(frames, Frame{Kind: FrameHeader, Data: chunk.Header(d.RasterMarker)})

		for _, row := range chunk.Rows {
			remaining--
			data := make([]byte, 0, len(d.Separator)+RowBytes)
			if remaining > 0 {
				data = append(data, d.Separator...)
			}
			data = append(data, row...)
			frames = append(frames, Frame{Kind: FrameRow, Data: data})
		}
	}
	return frames
}

// EncodeRaster is Encode followed by RasterFrames flattened into one stream
func (d *Dialect) EncodeRaster(e *Encoder, buf PixelBuffer) ([]byte, error) {
	r, err := e.Encode(buf)
	if err != nil {
		return nil, err
	}

	var out []byte
	for _, f := range d.RasterFrames(r) {
		out = append(out, f.Data...)
	}
	return out, nil
}
