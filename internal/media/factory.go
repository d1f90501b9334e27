package media

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/ffmpeg"
)

// Options are shared by every adapter constructor
type Options struct {
	// Context bounds background loading; cancelled adapters stop decoding
	Context context.Context
	// Clock drives timed adapters; the system clock when nil
	Clock  TimeSource
	Logger *zerolog.Logger
	// Open overrides how image sources are read
	Open func(path string) (io.ReadCloser, error)
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// Factory builds the adapter for a clip
type Factory interface {
	New(clip clips.Clip) (Adapter, error)
}

// FactoryFunc adapts a function to Factory
type FactoryFunc func(clip clips.Clip) (Adapter, error)

func (f FactoryFunc) New(clip clips.Clip) (Adapter, error) { return f(clip) }

// DefaultFactory maps clip kinds onto the ffmpeg, beep and image adapters
type DefaultFactory struct {
	Executor *ffmpeg.Executor
	// Output plays audio clips; nil decodes without sound
	Output         *AudioOutput
	MaxFrameWidth  int
	MaxFrameHeight int
	Options        Options
}

func (f *DefaultFactory) New(clip clips.Clip) (Adapter, error) {
	switch clip.Kind {
	case clips.KindVideo:
		var src FrameSource = unavailableSource{}
		if f.Executor != nil {
			src = NewFFmpegSource(f.Executor, clip.Source, f.MaxFrameWidth, f.MaxFrameHeight)
		}
		return NewVideoAdapter(clip, src, f.Options), nil
	case clips.KindAudio:
		return NewAudioAdapter(clip, NewBeepBackend(clip.Source, f.Output), f.Options), nil
	case clips.KindImage:
		return NewImageAdapter(clip, f.Options), nil
	default:
		return nil, fmt.Errorf("no adapter for kind %s", clip.Kind)
	}
}
