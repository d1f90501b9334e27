package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Executor runs ffmpeg and ffprobe on behalf of media adapters and the exporter
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// Options selects binaries and threading for an Executor
type Options struct {
	BinaryPath string
	ProbePath  string
	Threads    int
}

// New resolves the ffmpeg and ffprobe binaries and creates an executor
func New(logger zerolog.Logger, opts Options) (*Executor, error) {
	binary := opts.BinaryPath
	if binary == "" {
		binary = "ffmpeg"
	}
	probe := opts.ProbePath
	if probe == "" {
		probe = "ffprobe"
	}

	ffmpegPath, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	ffprobePath, err := exec.LookPath(probe)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     opts.Threads,
	}, nil
}

// Run executes ffmpeg with the given arguments and streams progress
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	args := e.baseArgs(opts)
	args = append(args, opts.Args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// Stream stderr (progress + logs)
	go func() {
		defer wg.Done()
		e.streamOutput(stderr, opts.ProgressHandler, opts.LogHandler)
	}()

	// Stdout is either raw payload or more log lines
	go func() {
		defer wg.Done()
		if opts.Stdout != nil {
			if _, err := io.Copy(opts.Stdout, stdout); err != nil {
				e.logger.Debug().Err(err).Msg("stdout copy interrupted")
			}
			return
		}
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if opts.LogHandler != nil {
				opts.LogHandler(scanner.Text())
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

func (e *Executor) baseArgs(opts RunOptions) []string {
	loglevel := "info"
	if opts.Quiet {
		loglevel = "error"
	}
	args := []string{"-y", "-hide_banner", "-loglevel", loglevel}

	if e.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.threads))
	}
	if !opts.Quiet {
		args = append(args, "-progress", "pipe:2")
	}
	return args
}

// streamOutput parses ffmpeg output and calls handlers
func (e *Executor) streamOutput(r io.Reader, progressHandler func(*Progress), logHandler func(string)) {
	scanner := bufio.NewScanner(r)
	progressData := &Progress{}

	for scanner.Scan() {
		line := scanner.Text()

		if logHandler != nil {
			logHandler(line)
		}

		if parseProgressLine(progressData, line) {
			if progressHandler != nil && progressData.Frame > 0 {
				progressHandler(progressData)
			}
			progressData = &Progress{}
		}
	}
}

// parseProgressLine folds one "-progress" key=value line into p and reports
// whether it closed a progress block
func parseProgressLine(p *Progress, line string) bool {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "frame":
		fmt.Sscanf(value, "%d", &p.Frame)
	case "fps":
		fmt.Sscanf(value, "%f", &p.FPS)
	case "bitrate":
		p.Bitrate = value
	case "out_time":
		p.Time = value
	case "speed":
		p.Speed = value
	case "progress":
		return true
	}
	return false
}
