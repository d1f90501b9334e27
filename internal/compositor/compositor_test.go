package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/rs/zerolog"
)

type drawCall struct {
	img image.Image
	dst image.Rectangle
}

type recordingSurface struct {
	size   image.Point
	clears int
	calls  []drawCall
}

func (s *recordingSurface) Size() image.Point { return s.size }

func (s *recordingSurface) Clear() {
	s.clears++
	s.calls = nil
}

func (s *recordingSurface) DrawImage(img image.Image, dst image.Rectangle) {
	s.calls = append(s.calls, drawCall{img: img, dst: dst})
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestFit(t *testing.T) {
	tests := []struct {
		name string
		src  image.Point
		dst  image.Point
		want image.Rectangle
	}{
		{"same aspect", image.Pt(640, 360), image.Pt(1280, 720), image.Rect(0, 0, 1280, 720)},
		{"pillarbox", image.Pt(100, 100), image.Pt(1280, 720), image.Rect(280, 0, 1000, 720)},
		{"letterbox", image.Pt(400, 100), image.Pt(800, 600), image.Rect(0, 200, 800, 400)},
		{"downscale", image.Pt(3840, 2160), image.Pt(640, 480), image.Rect(0, 60, 640, 420)},
		{"empty source", image.Pt(0, 10), image.Pt(640, 480), image.Rectangle{}},
		{"empty surface", image.Pt(10, 10), image.Pt(0, 0), image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fit(tt.src, tt.dst); got != tt.want {
				t.Errorf("Fit(%v, %v) = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestComposeLayering(t *testing.T) {
	s := &recordingSurface{size: image.Pt(200, 100)}
	c := New(zerolog.Nop())

	first := solid(200, 100, color.RGBA{R: 255, A: 255})
	second := solid(50, 50, color.RGBA{B: 255, A: 255})

	drawn := c.Compose(s, []Layer{
		{ClipID: "a", Image: first},
		{ClipID: "missing"},
		{ClipID: "b", Image: second},
	})
	if drawn != 2 {
		t.Fatalf("Compose() drew %d layers, want 2", drawn)
	}
	if s.clears != 1 {
		t.Errorf("surface cleared %d times, want 1", s.clears)
	}
	if s.calls[0].img != first || s.calls[1].img != second {
		t.Error("layers not drawn in list order")
	}
	if want := image.Rect(50, 0, 150, 100); s.calls[1].dst != want {
		t.Errorf("second layer dst = %v, want %v", s.calls[1].dst, want)
	}
}

func TestComposeNothingActiveClears(t *testing.T) {
	s := &recordingSurface{size: image.Pt(10, 10)}
	s.calls = []drawCall{{}}

	if drawn := New(zerolog.Nop()).Compose(s, nil); drawn != 0 {
		t.Errorf("Compose(nil) drew %d layers", drawn)
	}
	if s.clears != 1 || len(s.calls) != 0 {
		t.Errorf("clears = %d, calls = %d, want cleared surface", s.clears, len(s.calls))
	}
}

func TestRGBASurface(t *testing.T) {
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	s := NewRGBASurface(40, 20, bg)
	c := New(zerolog.Nop())

	if got := s.Image().RGBAAt(0, 0); got != bg {
		t.Errorf("fresh surface pixel = %v, want background %v", got, bg)
	}

	red := color.RGBA{R: 255, A: 255}
	c.Compose(s, []Layer{{ClipID: "a", Image: solid(10, 10, red)}})

	// 10x10 fits as 20x20 centred at x=10
	if got := s.Image().RGBAAt(20, 10); got != red {
		t.Errorf("centre pixel = %v, want %v", got, red)
	}
	if got := s.Image().RGBAAt(2, 10); got != bg {
		t.Errorf("pillarbox pixel = %v, want background", got)
	}

	blue := color.RGBA{B: 255, A: 255}
	c.Compose(s, []Layer{
		{ClipID: "a", Image: solid(40, 20, red)},
		{ClipID: "b", Image: solid(40, 20, blue)},
	})
	if got := s.Image().RGBAAt(5, 5); got != blue {
		t.Errorf("overlapping pixel = %v, want last layer %v", got, blue)
	}

	c.Compose(s, nil)
	if got := s.Image().RGBAAt(20, 10); got != bg {
		t.Errorf("cleared pixel = %v, want background", got)
	}
	if len(s.Pix()) != 40*20*4 {
		t.Errorf("Pix() length = %d", len(s.Pix()))
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#000000", want: color.RGBA{A: 255}},
		{in: "#ff8000", want: color.RGBA{R: 255, G: 128, A: 255}},
		{in: "#fff", want: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{in: "12ab34", want: color.RGBA{R: 0x12, G: 0xab, B: 0x34, A: 255}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
