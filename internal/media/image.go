package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
)

// ImageAdapter decodes a still picture once. It has no clock: seeking and
// playing are accepted and ignored.
type ImageAdapter struct {
	*lifecycle
	logger zerolog.Logger
	img    image.Image
	local  time.Duration
}

var (
	_ Visual = (*ImageAdapter)(nil)
	_ Waiter = (*ImageAdapter)(nil)
)

// NewImageAdapter creates an adapter and decodes clip.Source in the background
func NewImageAdapter(clip clips.Clip, opts Options) *ImageAdapter {
	a := &ImageAdapter{
		lifecycle: newLifecycle(opts.Context, clip),
		logger:    opts.logger().With().Str("component", "image-adapter").Str("clip", clip.ID).Logger(),
	}
	open := opts.Open
	if open == nil {
		open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	go a.load(open, clip.Source)
	return a
}

func (a *ImageAdapter) load(open func(string) (io.ReadCloser, error), path string) {
	rc, err := open(path)
	if err != nil {
		a.logger.Warn().Err(err).Msg("image failed to open")
		a.finish(fmt.Errorf("open image: %w", err))
		return
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		a.logger.Warn().Err(err).Msg("image failed to decode")
		a.finish(fmt.Errorf("decode image: %w", err))
		return
	}
	a.img = img
	a.finish(nil)
}

// SeekTo only records the commanded time
func (a *ImageAdapter) SeekTo(local time.Duration) { a.local = local }

func (a *ImageAdapter) SetPlaying(bool) {}

func (a *ImageAdapter) Playing() bool { return false }

func (a *ImageAdapter) Position() time.Duration { return a.local }

func (a *ImageAdapter) NaturalDuration() (time.Duration, bool) { return 0, false }

func (a *ImageAdapter) SetVolume(float64) {}

func (a *ImageAdapter) Frame() image.Image {
	if !a.ready() {
		return nil
	}
	return a.img
}

func (a *ImageAdapter) Close() error {
	a.close()
	return nil
}
