package decoder

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"

	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Formats lists the encodings ImageDecoder understands.
var Formats = []string{"qoi", "png", "bmp"}

// ImageDecoder decodes QOI, PNG and BMP bytes into a tightly packed
// *image.RGBA anchored at the origin.
type ImageDecoder struct{}

func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{}
}

func (d *ImageDecoder) Decode(data []byte) (*image.RGBA, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	rgba, err := pack(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	return rgba, nil
}

// pack returns img as an RGBA whose Pix holds exactly Dx*Dy*4 bytes.
func pack(img image.Image) (*image.RGBA, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == b.Dx()*4 {
		return rgba, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}
