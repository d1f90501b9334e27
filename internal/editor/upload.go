package editor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/ffmpeg"
	"github.com/kikiluvv/slopstudio/pkg/util"
)

// DefaultImageDuration is how long a dropped still stays on screen
const DefaultImageDuration = 5 * time.Second

// Prober reports the natural duration of a media file
type Prober interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// LocalUploader stores dropped files under a work directory and turns them
// into assets
type LocalUploader struct {
	dir           string
	prober        Prober
	imageDuration time.Duration
	logger        zerolog.Logger
}

// NewLocalUploader copies uploads into workDir/media
func NewLocalUploader(workDir string, prober Prober, imageDuration time.Duration, logger zerolog.Logger) *LocalUploader {
	if imageDuration <= 0 {
		imageDuration = DefaultImageDuration
	}
	return &LocalUploader{
		dir:           filepath.Join(workDir, "media"),
		prober:        prober,
		imageDuration: imageDuration,
		logger:        logger.With().Str("component", "uploader").Logger(),
	}
}

// Upload copies path into the media directory and describes it
func (u *LocalUploader) Upload(ctx context.Context, path string) (Asset, error) {
	kind, err := clips.KindFromPath(path)
	if err != nil {
		return Asset{}, err
	}

	duration := u.imageDuration
	if kind.Timed() {
		if u.prober == nil {
			return Asset{}, fmt.Errorf("cannot determine duration of %s: no prober", path)
		}
		info, err := u.prober.ProbeVideo(ctx, path)
		if err != nil {
			return Asset{}, fmt.Errorf("probe %s: %w", path, err)
		}
		if info.Duration <= 0 {
			return Asset{}, fmt.Errorf("%s has no duration", path)
		}
		duration = info.Duration
	}

	ext := strings.ToLower(util.GetExtension(path))
	dst := filepath.Join(u.dir, uuid.NewString()+ext)
	if err := util.CopyFile(path, dst); err != nil {
		return Asset{}, fmt.Errorf("store upload: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	u.logger.Info().
		Str("file", path).
		Str("stored", dst).
		Str("kind", kind.String()).
		Dur("duration", duration).
		Msg("upload stored")

	return Asset{Kind: kind, Source: dst, Duration: duration, Name: name}, nil
}
