package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
)

// RGBASurface is an in-memory Surface used for preview and export
type RGBASurface struct {
	img        *image.RGBA
	background image.Image
}

var _ Surface = (*RGBASurface)(nil)

// NewRGBASurface allocates a width x height surface filled with bg
func NewRGBASurface(width, height int, bg color.Color) *RGBASurface {
	s := &RGBASurface{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		background: image.NewUniform(bg),
	}
	s.Clear()
	return s
}

func (s *RGBASurface) Size() image.Point { return s.img.Bounds().Size() }

func (s *RGBASurface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), s.background, image.Point{}, draw.Src)
}

func (s *RGBASurface) DrawImage(img image.Image, dst image.Rectangle) {
	src := img
	if b := img.Bounds(); b.Dx() != dst.Dx() || b.Dy() != dst.Dy() {
		src = resize.Resize(uint(dst.Dx()), uint(dst.Dy()), img, resize.Bilinear)
	}
	draw.Draw(s.img, dst, src, src.Bounds().Min, draw.Over)
}

// Image returns the backing image. It is overwritten by the next frame.
func (s *RGBASurface) Image() *image.RGBA { return s.img }

// Pix returns the raw RGBA bytes, row-major without padding
func (s *RGBASurface) Pix() []byte { return s.img.Pix }

// ParseHexColor parses #rgb or #rrggbb
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
