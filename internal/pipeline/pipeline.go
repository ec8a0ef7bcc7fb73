package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/keagan/videomaker/internal/config"
	"github.com/keagan/videomaker/internal/ffmpeg"
	"github.com/keagan/videomaker/internal/render"
	"github.com/rs/zerolog"
)

// Pipeline wires configuration, the ffmpeg executor and the renderer, and
// opens editing sessions on source videos
type Pipeline struct {
	logger   zerolog.Logger
	config   *config.Config
	ffmpeg   *ffmpeg.Executor
	renderer *render.Renderer
}

// Option customizes a Pipeline
type Option func(*ffmpeg.Options)

// WithProgress reports ffmpeg progress for every render step
func WithProgress(fn ffmpeg.ProgressFunc) Option {
	return func(o *ffmpeg.Options) {
		o.Progress = fn
	}
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	execOpts := cfg.ExecutorOptions()
	for _, opt := range opts {
		opt(&execOpts)
	}

	ffmpegExec, err := ffmpeg.New(logger, execOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		config:   cfg,
		ffmpeg:   ffmpegExec,
		renderer: render.NewRenderer(logger, ffmpegExec.StepRunner(), cfg.TempDir),
	}, nil
}

// Executor returns the underlying ffmpeg executor
func (p *Pipeline) Executor() *ffmpeg.Executor {
	return p.ffmpeg
}

// Probe extracts metadata from a video
func (p *Pipeline) Probe(ctx context.Context, input string) (*ffmpeg.VideoInfo, error) {
	if input == "" {
		return nil, fmt.Errorf("input path cannot be empty")
	}
	return p.ffmpeg.ProbeVideo(ctx, input)
}

// Open probes input and starts a session whose timeline spans the whole video
func (p *Pipeline) Open(ctx context.Context, input string) (*Session, error) {
	info, err := p.Probe(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}

	p.logger.Info().
		Str("input", input).
		Dur("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Bool("has_audio", info.HasAudio).
		Msg("video metadata extracted")

	opts, err := p.sessionOptions()
	if err != nil {
		return nil, err
	}

	// timeline positions are whole milliseconds
	s, err := NewSession(p.logger, input, info.Duration.Truncate(time.Millisecond), opts)
	if err != nil {
		return nil, err
	}
	s.info = info
	return s, nil
}

func (p *Pipeline) sessionOptions() (SessionOptions, error) {
	opts, err := OptionsFromConfig(p.config)
	if err != nil {
		return SessionOptions{}, err
	}
	opts.Renderer = p.renderer
	return opts, nil
}

// OptionsFromConfig builds session options without a renderer, for sessions
// that only edit and plan
func OptionsFromConfig(cfg *config.Config) (SessionOptions, error) {
	anchor, err := cfg.DefaultAnchor()
	if err != nil {
		return SessionOptions{}, err
	}
	return SessionOptions{
		DisplayWidth:  float64(cfg.Timeline.DisplayWidth),
		Registry:      cfg.Registry(),
		DefaultAnchor: anchor,
		TempDir:       cfg.TempDir,
	}, nil
}
