// internal/imaging/decode.go
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"printer-service/internal/escpos"
)

var (
	// ErrUnknownFormat is returned for data no registered decoder recognises
	ErrUnknownFormat = errors.New("unknown image format")
	// ErrInvalidImage is returned for recognised but corrupt data
	ErrInvalidImage = errors.New("invalid image data")
)

// MaxUploadBytes bounds the encoded image size accepted by Decode
const MaxUploadBytes = 8 << 20

// Decode reads a PNG, JPEG, GIF, BMP or WebP image
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("decode image: %w", ErrUnknownFormat)
		}
		return nil, "", fmt.Errorf("decode image: %w: %w", ErrInvalidImage, err)
	}
	return img, format, nil
}

// FitWidth scales img down proportionally so it is at most maxWidth wide.
// Narrower images are returned unchanged.
func FitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth || maxWidth <= 0 {
		return img
	}

	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ToPixelBuffer flattens img into the encoder's input format. Gray images
// become one channel; everything else becomes non-premultiplied RGBA so
// transparency reaches the alpha threshold.
func ToPixelBuffer(img image.Image) escpos.PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		pix := make([]byte, 0, w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			pix = append(pix, src.Pix[off:off+w]...)
		}
		return escpos.PixelBuffer{Width: w, Height: h, Channels: 1, Pix: pix}

	case *image.NRGBA:
		pix := make([]byte, 0, w*h*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			pix = append(pix, src.Pix[off:off+w*4]...)
		}
		return escpos.PixelBuffer{Width: w, Height: h, Channels: 4, Pix: pix}
	}

	pix := make([]byte, 0, w*h*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix = append(pix, c.R, c.G, c.B, c.A)
		}
	}
	return escpos.PixelBuffer{Width: w, Height: h, Channels: 4, Pix: pix}
}

// Load decodes r and converts it, optionally fitting it to the print head
func Load(r io.Reader, fit bool) (escpos.PixelBuffer, string, error) {
	img, format, err := Decode(r)
	if err != nil {
		return escpos.PixelBuffer{}, "", err
	}
	if fit {
		img = FitWidth(img, escpos.PrintHeadWidth)
	}
	return ToPixelBuffer(img), format, nil
}
