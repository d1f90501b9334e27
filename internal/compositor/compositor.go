// Package compositor draws the active visual clips of a frame onto a surface.
package compositor

import (
	"image"
	"math"

	"github.com/rs/zerolog"
)

// Surface is the 2D drawing target the compositor renders into
type Surface interface {
	Size() image.Point
	Clear()
	// DrawImage scales img into dst
	DrawImage(img image.Image, dst image.Rectangle)
}

// Layer is one visual clip's picture for the current frame
type Layer struct {
	ClipID string
	Image  image.Image
}

// Compositor renders layers in list order; later layers are drawn on top
type Compositor struct {
	logger zerolog.Logger
}

// New creates a compositor
func New(logger zerolog.Logger) *Compositor {
	return &Compositor{logger: logger.With().Str("component", "compositor").Logger()}
}

// Compose clears s and draws every layer aspect-fit and centred. It returns
// the number of layers drawn.
func (c *Compositor) Compose(s Surface, layers []Layer) int {
	s.Clear()
	size := s.Size()

	drawn := 0
	for _, l := range layers {
		if l.Image == nil {
			continue
		}
		dst := Fit(l.Image.Bounds().Size(), size)
		if dst.Empty() {
			continue
		}
		s.DrawImage(l.Image, dst)
		drawn++
	}
	return drawn
}

// Fit returns the largest rectangle with the aspect ratio of src that fits
// inside a surface of size dst, centred on it
func Fit(src, dst image.Point) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 || dst.X <= 0 || dst.Y <= 0 {
		return image.Rectangle{}
	}

	scale := math.Min(float64(dst.X)/float64(src.X), float64(dst.Y)/float64(src.Y))
	w := int(math.Round(float64(src.X) * scale))
	h := int(math.Round(float64(src.Y) * scale))
	if w > dst.X {
		w = dst.X
	}
	if h > dst.Y {
		h = dst.Y
	}

	x := (dst.X - w) / 2
	y := (dst.Y - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
