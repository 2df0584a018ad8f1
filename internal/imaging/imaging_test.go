package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"

	"printer-service/internal/escpos"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	return img
}

func TestLoadPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, checker(4, 2)); err != nil {
		t.Fatal(err)
	}

	pb, format, err := Load(&buf, false)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || pb.Width != 4 || pb.Height != 2 || pb.Channels != 4 {
		t.Fatalf("got %s %dx%dx%d", format, pb.Width, pb.Height, pb.Channels)
	}
	if diff := cmp.Diff([]byte{0, 0, 0, 255, 255, 255, 255, 255}, pb.Pix[:8]); diff != "" {
		t.Errorf("first pixels (-want +got):\n%s", diff)
	}
}

func TestLoadBMPGray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 1))
	gray.Pix = []byte{0, 128, 255}

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, gray); err != nil {
		t.Fatal(err)
	}

	pb, format, err := Load(&buf, false)
	if err != nil {
		t.Fatal(err)
	}
	if format != "bmp" {
		t.Errorf("format = %s", format)
	}

	// decoded as paletted or gray depending on the writer; either way the
	// luminance order must survive
	r, err := escpos.NewEncoder().Encode(pb)
	if err != nil {
		t.Fatal(err)
	}
	if r.Bit(0, 0) != 0 || r.Bit(1, 0) != 1 || r.Bit(2, 0) != 1 {
		t.Errorf("bits %d %d %d", r.Bit(0, 0), r.Bit(1, 0), r.Bit(2, 0))
	}
}

func TestToPixelBufferGray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.Pix = []byte{1, 2, 3, 4}

	pb := ToPixelBuffer(gray.SubImage(image.Rect(1, 0, 2, 2)))
	want := escpos.PixelBuffer{Width: 1, Height: 2, Channels: 1, Pix: []byte{2, 4}}
	if diff := cmp.Diff(want, pb); diff != "" {
		t.Errorf("buffer (-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, _, err := Decode(strings.NewReader("not an image"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestFitWidth(t *testing.T) {
	img := checker(768, 100)
	fitted := FitWidth(img, escpos.PrintHeadWidth)
	if b := fitted.Bounds(); b.Dx() != 384 || b.Dy() != 50 {
		t.Errorf("fitted to %v", b)
	}

	small := checker(100, 10)
	if FitWidth(small, escpos.PrintHeadWidth) != image.Image(small) {
		t.Errorf("narrow image was rescaled")
	}
}

func TestPreviewMatchesRaster(t *testing.T) {
	pb := escpos.PixelBuffer{Width: 2, Height: 1, Channels: 1, Pix: []byte{0, 255}}
	r, err := escpos.NewEncoder().Encode(pb)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WritePreviewPNG(&buf, r); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if img.Bounds().Dx() != escpos.PrintHeadWidth || img.Bounds().Dy() != 1 {
		t.Fatalf("preview bounds %v", img.Bounds())
	}
	black := color.GrayModel.Convert(img.At(0, 0)).(color.Gray)
	white := color.GrayModel.Convert(img.At(1, 0)).(color.Gray)
	pad := color.GrayModel.Convert(img.At(383, 0)).(color.Gray)
	if black.Y != 0 || white.Y != 255 || pad.Y != 255 {
		t.Errorf("preview pixels %d %d %d", black.Y, white.Y, pad.Y)
	}
}
