package escpos

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func gray(w, h int, v byte) PixelBuffer {
	return PixelBuffer{Width: w, Height: h, Channels: 1, Pix: bytes.Repeat([]byte{v}, w*h)}
}

func TestEncodeWhite(t *testing.T) {
	for _, w := range []int{1, 100, PrintHeadWidth} {
		r, err := NewEncoder().Encode(gray(w, 10, 255))
		if err != nil {
			t.Fatalf("width %d: %v", w, err)
		}
		if r.Height() != 10 {
			t.Fatalf("width %d: height %d", w, r.Height())
		}
		want := bytes.Repeat([]byte{0xFF}, RowBytes)
		for y := 0; y < r.Height(); y++ {
			if !bytes.Equal(r.Row(y), want) {
				t.Errorf("width %d row %d = %x", w, y, r.Row(y))
			}
		}
	}
}

func TestEncodeBlackIsPadded(t *testing.T) {
	r, err := NewEncoder().Encode(gray(100, 2, 0))
	if err != nil {
		t.Fatal(err)
	}

	want := make([]byte, RowBytes)
	// 96 ink columns fill 12 bytes, columns 96..99 are the top nibble of byte 12.
	want[12] = 0x0F
	for i := 13; i < RowBytes; i++ {
		want[i] = 0xFF
	}
	for y := 0; y < 2; y++ {
		if diff := cmp.Diff(want, r.Row(y)); diff != "" {
			t.Errorf("row %d (-want +got):\n%s", y, diff)
		}
	}
}

func TestEncodeFullWidthBlack(t *testing.T) {
	r, err := NewEncoder().Encode(gray(PrintHeadWidth, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r.Row(0), make([]byte, RowBytes)) {
		t.Errorf("row = %x", r.Row(0))
	}
}

func TestEncodeMSBFirst(t *testing.T) {
	buf := gray(16, 1, 255)
	buf.Pix[0] = 0
	buf.Pix[9] = 0

	r, err := NewEncoder().Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	row := r.Row(0)
	if row[0] != 0x7F || row[1] != 0xBF {
		t.Errorf("row starts %x %x, want 7f bf", row[0], row[1])
	}
	if r.Bit(0, 0) != 0 || r.Bit(1, 0) != 1 || r.Bit(9, 0) != 0 {
		t.Errorf("Bit mismatch")
	}
}

func TestEncodeThreshold(t *testing.T) {
	buf := PixelBuffer{Width: 3, Height: 1, Channels: 1, Pix: []byte{47, 48, 49}}
	r, err := NewEncoder().Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	got := []byte{r.Bit(0, 0), r.Bit(1, 0), r.Bit(2, 0)}
	if diff := cmp.Diff([]byte{0, 1, 1}, got); diff != "" {
		t.Errorf("bits (-want +got):\n%s", diff)
	}
}

func TestEncodeRGBUsesFirstTwoChannels(t *testing.T) {
	buf := PixelBuffer{Width: 3, Height: 1, Channels: 3, Pix: []byte{
		70, 70, 255, // (70+70)/3 = 46.7: ink although blue is bright
		72, 72, 0, // (72+72)/3 = 48: not below threshold
		0, 100, 0, // 33.3: ink
	}}
	r, err := NewEncoder().Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	got := []byte{r.Bit(0, 0), r.Bit(1, 0), r.Bit(2, 0)}
	if diff := cmp.Diff([]byte{0, 1, 0}, got); diff != "" {
		t.Errorf("bits (-want +got):\n%s", diff)
	}
}

func TestEncodeRGBAAlpha(t *testing.T) {
	buf := PixelBuffer{Width: 3, Height: 1, Channels: 4, Pix: []byte{
		0, 0, 0, 128,
		0, 0, 0, 127,
		255, 255, 255, 255,
	}}
	r, err := NewEncoder().Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	got := []byte{r.Bit(0, 0), r.Bit(1, 0), r.Bit(2, 0)}
	if diff := cmp.Diff([]byte{0, 1, 1}, got); diff != "" {
		t.Errorf("bits (-want +got):\n%s", diff)
	}
}

func TestEncodeTransparentIsWhite(t *testing.T) {
	w, h := 50, 4
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = byte(i), 0, byte(i*7), 0
	}

	r, err := NewEncoder().Encode(PixelBuffer{Width: w, Height: h, Channels: 4, Pix: pix})
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		if !bytes.Equal(r.Row(y), bytes.Repeat([]byte{0xFF}, RowBytes)) {
			t.Errorf("row %d = %x", y, r.Row(y))
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  PixelBuffer
		want error
	}{
		{"too wide", gray(500, 1, 0), ErrImageTooWide},
		{"just too wide", gray(PrintHeadWidth+1, 1, 0), ErrImageTooWide},
		{"two channels", PixelBuffer{Width: 1, Height: 1, Channels: 2, Pix: []byte{0, 0}}, ErrUnsupportedPixelFormat},
		{"zero height", PixelBuffer{Width: 10, Height: 0, Channels: 1}, ErrEmptyImage},
		{"zero width", PixelBuffer{Width: 0, Height: 10, Channels: 1}, ErrEmptyImage},
		{"short buffer", PixelBuffer{Width: 10, Height: 10, Channels: 3, Pix: make([]byte, 299)}, ErrEmptyImage},
		{"overflowing height", PixelBuffer{Width: PrintHeadWidth, Height: math.MaxInt / 2, Channels: 4, Pix: []byte{1}}, ErrEmptyImage},
		{"nil pixels", PixelBuffer{Width: 1, Height: 1, Channels: 1}, ErrEmptyImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewEncoder().Encode(tt.buf)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if r != nil {
				t.Errorf("raster returned with error")
			}
			out, err := PortIPC40.EncodeRaster(NewEncoder(), tt.buf)
			if err == nil || out != nil {
				t.Errorf("EncodeRaster = %d bytes, %v", len(out), err)
			}
		})
	}
}

func TestChunks(t *testing.T) {
	r, err := NewEncoder().Encode(gray(8, 300, 255))
	if err != nil {
		t.Fatal(err)
	}

	chunks := r.Chunks()
	if len(chunks) != 2 {
		t.Fatalf("%d chunks, want 2", len(chunks))
	}
	if len(chunks[0].Rows) != 255 || len(chunks[1].Rows) != 45 {
		t.Errorf("chunk rows %d, %d, want 255, 45", len(chunks[0].Rows), len(chunks[1].Rows))
	}
	if diff := cmp.Diff([]byte{DC2, 0x2A, 45, 48}, chunks[1].Header(PortIPC40.RasterMarker)); diff != "" {
		t.Errorf("header (-want +got):\n%s", diff)
	}
}

func TestRasterFramesSeparators(t *testing.T) {
	r, err := NewEncoder().Encode(gray(8, 300, 0))
	if err != nil {
		t.Fatal(err)
	}

	frames := PortIPC40.RasterFrames(r)
	if len(frames) != 302 {
		t.Fatalf("%d frames, want 302", len(frames))
	}
	if frames[0].Kind != FrameHeader || frames[256].Kind != FrameHeader {
		t.Errorf("headers not at 0 and 256")
	}

	var rows, separated int
	for i, f := range frames {
		if f.Kind != FrameRow {
			continue
		}
		rows++
		if bytes.HasPrefix(f.Data, PortIPC40.Separator) {
			separated++
			if len(f.Data) != len(PortIPC40.Separator)+RowBytes {
				t.Errorf("frame %d length %d", i, len(f.Data))
			}
		}
	}
	if rows != 300 || separated != 299 {
		t.Errorf("rows %d separated %d, want 300 and 299", rows, separated)
	}
	if last := frames[len(frames)-1]; len(last.Data) != RowBytes {
		t.Errorf("last row has %d bytes, want bare row", len(last.Data))
	}
}

func TestEncodeRasterStream(t *testing.T) {
	out, err := PortIPC40.EncodeRaster(NewEncoder(), gray(384, 2, 255))
	if err != nil {
		t.Fatal(err)
	}

	var want []byte
	want = append(want, DC2, 0x2A, 2, 48)
	want = append(want, ESC, 0x57)
	want = append(want, bytes.Repeat([]byte{0xFF}, 48)...)
	want = append(want, bytes.Repeat([]byte{0xFF}, 48)...)
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("stream (-want +got):\n%s", diff)
	}

	// a2 has no separator
	out, err = A2.EncodeRaster(NewEncoder(), gray(384, 2, 255))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 4+2*RowBytes {
		t.Errorf("a2 stream length %d", len(out))
	}
}

func TestEncodeDoesNotMutateInput(t *testing.T) {
	buf := gray(20, 3, 30)
	orig := append([]byte(nil), buf.Pix...)
	if _, err := NewEncoder().Encode(buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(orig, buf.Pix) {
		t.Errorf("input modified")
	}
}
