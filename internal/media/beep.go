package media

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const resampleQuality = 4

// AudioOutput owns the process-wide speaker. It is initialised lazily by the
// first backend that needs it.
type AudioOutput struct {
	sampleRate beep.SampleRate
	buffer     time.Duration

	once    sync.Once
	err     error
	started atomic.Bool
}

// NewAudioOutput configures the speaker without opening the device
func NewAudioOutput(sampleRate int, buffer time.Duration) *AudioOutput {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}
	return &AudioOutput{sampleRate: beep.SampleRate(sampleRate), buffer: buffer}
}

func (o *AudioOutput) start() error {
	o.once.Do(func() {
		o.err = speaker.Init(o.sampleRate, o.sampleRate.N(o.buffer))
		if o.err == nil {
			o.started.Store(true)
		}
	})
	return o.err
}

// Close releases the audio device if it was opened
func (o *AudioOutput) Close() {
	if o != nil && o.started.Load() {
		speaker.Close()
	}
}

// BeepBackend decodes a file with beep and, when given an AudioOutput,
// plays it through the shared speaker mixer
type BeepBackend struct {
	path   string
	output *AudioOutput

	mu       sync.Mutex
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	closed   atomic.Bool
}

var _ AudioBackend = (*BeepBackend)(nil)

// NewBeepBackend creates a backend for path; output may be nil for
// decode-only use
func NewBeepBackend(path string, output *AudioOutput) *BeepBackend {
	return &BeepBackend{path: path, output: output}
}

func (b *BeepBackend) Open() (time.Duration, error) {
	f, err := os.Open(b.path)
	if err != nil {
		return 0, err
	}

	streamer, format, err := decodeAudio(f, b.path)
	if err != nil {
		f.Close()
		return 0, err
	}

	b.file = f
	b.streamer = streamer
	b.format = format
	b.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	b.volume = &effects.Volume{Streamer: b.ctrl, Base: 2}

	if b.output != nil {
		if err := b.output.start(); err != nil {
			streamer.Close()
			f.Close()
			return 0, fmt.Errorf("init speaker: %w", err)
		}
		var s beep.Streamer = b.volume
		if format.SampleRate != b.output.sampleRate {
			s = beep.Resample(resampleQuality, format.SampleRate, b.output.sampleRate, s)
		}
		speaker.Play(&sustain{Streamer: s, closed: &b.closed})
	}

	return format.SampleRate.D(streamer.Len()), nil
}

func decodeAudio(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

func (b *BeepBackend) lock() func() {
	if b.output != nil && b.output.started.Load() {
		speaker.Lock()
		return speaker.Unlock
	}
	b.mu.Lock()
	return b.mu.Unlock
}

func (b *BeepBackend) Seek(local time.Duration) error {
	defer b.lock()()
	n := b.format.SampleRate.N(local)
	if n < 0 {
		n = 0
	}
	if max := b.streamer.Len(); n > max {
		n = max
	}
	return b.streamer.Seek(n)
}

func (b *BeepBackend) SetPaused(paused bool) {
	defer b.lock()()
	b.ctrl.Paused = paused
}

func (b *BeepBackend) Position() time.Duration {
	defer b.lock()()
	return b.format.SampleRate.D(b.streamer.Position())
}

// SetVolume maps a linear 0..1 gain onto beep's logarithmic volume
func (b *BeepBackend) SetVolume(v float64) {
	defer b.lock()()
	if v <= 0 {
		b.volume.Silent = true
		return
	}
	b.volume.Silent = false
	b.volume.Volume = math.Log2(math.Min(v, 1))
}

func (b *BeepBackend) Clocked() bool {
	return b.output != nil
}

func (b *BeepBackend) Close() error {
	if b.streamer == nil {
		return nil
	}
	unlock := b.lock()
	b.closed.Store(true)
	b.ctrl.Paused = true
	err := b.streamer.Close()
	unlock()
	b.file.Close()
	return err
}

// sustain keeps a stream registered with the mixer after it runs out so a
// later seek can resume it; it ends only once the backend is closed
type sustain struct {
	beep.Streamer
	closed *atomic.Bool
}

func (s *sustain) Stream(samples [][2]float64) (int, bool) {
	if s.closed.Load() {
		return 0, false
	}
	n, _ := s.Streamer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}
