package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"log/slog"

	"unmix/internal/config"
	"unmix/internal/job"
	"unmix/internal/logging"
	"unmix/internal/media/ffprobe"
	"unmix/internal/media/wavio"
	"unmix/internal/publish"
	"unmix/internal/services"
	"unmix/internal/services/demucs"
	"unmix/internal/services/ffmpeg"
	"unmix/internal/workspace"
)

// Converter is the ffmpeg behaviour the decode and encode stages need.
type Converter interface {
	Decode(ctx context.Context, input, output string, total time.Duration, progress func(ffmpeg.Progress)) error
	Encode(ctx context.Context, input, output, bitrate string, total time.Duration, progress func(ffmpeg.Progress)) error
}

// Separator is the demucs behaviour the separation stage needs.
type Separator interface {
	Separate(ctx context.Context, wavPath, outRoot, model, device string, progress func(demucs.ProgressUpdate)) (demucs.Stems, error)
}

// Prober inspects the input media before decoding.
type Prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// ProgressFunc receives raw stage progress, ungated by the log sampler.
// Percent is -1 when the stage cannot estimate completion. Observers run on
// the subprocess reader goroutine and must not block.
type ProgressFunc func(stage string, percent float64)

// Option configures the runner.
type Option func(*Runner)

// WithConverter injects a custom converter (primarily for tests).
func WithConverter(converter Converter) Option {
	return func(r *Runner) {
		if converter != nil {
			r.converter = converter
		}
	}
}

// WithSeparator injects a custom separator (primarily for tests).
func WithSeparator(separator Separator) Option {
	return func(r *Runner) {
		if separator != nil {
			r.separator = separator
		}
	}
}

// WithProber injects a custom prober (primarily for tests).
func WithProber(prober Prober) Option {
	return func(r *Runner) {
		if prober != nil {
			r.probe = prober
		}
	}
}

// WithProgress registers an observer for stage progress, typically an
// interactive terminal renderer.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// Runner executes the pipeline stages for one job at a time.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	converter Converter
	separator Separator
	publisher *publish.Publisher
	probe     Prober
	progress  ProgressFunc
}

// Result summarizes a completed job.
type Result struct {
	Job              *job.Job
	VocalsPath       string
	InstrumentalPath string
	// Workspace is the retained temp directory when the job asked to keep
	// it, empty otherwise.
	Workspace string
	Elapsed   time.Duration
}

// New constructs a runner wired to the configured external tools.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:       cfg,
		logger:    logger,
		publisher: publish.New(logger),
		probe:     ffprobe.Inspect,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.converter == nil {
		client, err := ffmpeg.New(cfg.FFmpegBinary())
		if err != nil {
			return nil, err
		}
		r.converter = client
	}
	if r.separator == nil {
		client, err := demucs.New(cfg.SeparatorBinary())
		if err != nil {
			return nil, err
		}
		r.separator = client
	}
	return r, nil
}

// Run executes the pipeline for one job. The workspace is cleaned on every
// return path unless the job asked to keep it.
func (r *Runner) Run(ctx context.Context, j *job.Job) (*Result, error) {
	if j == nil {
		return nil, errors.New("pipeline requires a job")
	}
	start := time.Now()
	ctx = services.WithJobID(ctx, j.ID)
	logger := logging.WithContext(ctx, r.logger)

	logger.Info("starting job",
		logging.String(logging.FieldPath, j.Params.InputPath),
		logging.String("slug", j.Slug),
		logging.String(logging.FieldModel, j.Params.Model),
		logging.String(logging.FieldDevice, j.Params.Device),
		logging.String("bitrate", j.Params.Bitrate),
		logging.Int64("input_bytes", j.InputSize),
	)

	ws, err := workspace.Create(r.cfg.Workspace.Root, j.Params.KeepTemp, r.logger)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer ws.Cleanup()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	total := r.probeInput(ctx, j)

	intermediate, err := r.decode(ctx, j, ws, total)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stems, err := r.separate(ctx, j, ws, intermediate)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stemFiles, err := r.writeStems(ctx, ws, stems)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	encoded, err := r.encode(ctx, j, ws, stemFiles)
	if err != nil {
		return nil, err
	}

	if err := r.publishOutputs(ctx, j, encoded); err != nil {
		return nil, err
	}

	result := &Result{
		Job:              j,
		VocalsPath:       j.VocalsPath(),
		InstrumentalPath: j.InstrumentalPath(),
		Elapsed:          time.Since(start),
	}
	if j.Params.KeepTemp {
		result.Workspace = ws.Root
	}
	logger.Info("job complete",
		logging.String("vocals", result.VocalsPath),
		logging.String("instrumental", result.InstrumentalPath),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (r *Runner) stageContext(ctx context.Context, stage string) (context.Context, *slog.Logger) {
	ctx = services.WithStage(ctx, stage)
	return ctx, logging.WithContext(ctx, r.logger)
}

func (r *Runner) observeProgress(stage string, percent float64) {
	if r.progress != nil {
		r.progress(stage, percent)
	}
}

// probeInput inspects the source so decode progress can be reported as a
// percentage. Probe failures are logged, never fatal.
func (r *Runner) probeInput(ctx context.Context, j *job.Job) time.Duration {
	ctx, logger := r.stageContext(ctx, "probe")
	result, err := r.probe(ctx, r.cfg.FFprobeBinary(), j.Params.InputPath)
	if err != nil {
		logger.Warn("ffprobe inspection failed; decode progress will be unknown", logging.Error(err))
		return 0
	}
	if !result.HasAudio() {
		logger.Warn("input reports no audio stream; decode may fail")
	}
	seconds := result.DurationSeconds()
	logger.Debug("input inspected",
		logging.Float64("duration_seconds", seconds),
		logging.Int("audio_streams", result.AudioStreamCount()),
	)
	return time.Duration(seconds * float64(time.Second))
}

func (r *Runner) decode(ctx context.Context, j *job.Job, ws *workspace.Workspace, total time.Duration) (string, error) {
	ctx, logger := r.stageContext(ctx, "decode")
	intermediate := ws.IntermediatePath(j.Slug)
	logger.Info("decoding input to intermediate wav", logging.String(logging.FieldPath, intermediate))

	sampler := logging.NewProgressSampler(5)
	onProgress := func(p ffmpeg.Progress) {
		r.observeProgress("decode", p.Percent)
		if !sampler.ShouldLog(p.Percent, "decode") {
			return
		}
		attrs := []logging.Attr{}
		if p.Percent >= 0 {
			attrs = append(attrs, logging.Float64(logging.FieldPercent, p.Percent))
		}
		if p.Speed != "" {
			attrs = append(attrs, logging.String("speed", p.Speed))
		}
		logger.Info("decode progress", logging.Args(attrs...)...)
	}
	if err := r.converter.Decode(ctx, j.Params.InputPath, intermediate, total, onProgress); err != nil {
		return "", services.Wrap(services.ErrDecode, "decode", "run ffmpeg", "", err)
	}
	return intermediate, nil
}

func (r *Runner) separate(ctx context.Context, j *job.Job, ws *workspace.Workspace, wavPath string) (demucs.Stems, error) {
	ctx, logger := r.stageContext(ctx, "separate")

	device, err := demucs.ResolveDevice(ctx, j.Params.Device)
	if err != nil {
		return demucs.Stems{}, err
	}
	logger.Info("separating stems",
		logging.String(logging.FieldModel, j.Params.Model),
		logging.String(logging.FieldDevice, device),
	)

	sampler := logging.NewProgressSampler(5)
	onProgress := func(u demucs.ProgressUpdate) {
		r.observeProgress("separate", u.Percent)
		if !sampler.ShouldLog(u.Percent, "separate") {
			return
		}
		logger.Info("separation progress", logging.Float64(logging.FieldPercent, u.Percent))
	}
	stems, err := r.separator.Separate(ctx, wavPath, ws.SeparatedRoot(), j.Params.Model, device, onProgress)
	if err != nil {
		return demucs.Stems{}, err
	}
	logger.Debug("stems located",
		logging.String("vocals", stems.Vocals),
		logging.String("accompaniment", stems.Accompaniment),
	)
	return stems, nil
}

// stemFile pairs a stem name with its workspace WAV and duration.
type stemFile struct {
	name     string
	path     string
	duration time.Duration
}

func (r *Runner) writeStems(ctx context.Context, ws *workspace.Workspace, stems demucs.Stems) ([]stemFile, error) {
	_, logger := r.stageContext(ctx, "write stems")

	sources := []struct {
		name string
		path string
	}{
		{job.StemVocals, stems.Vocals},
		{job.StemInstrumental, stems.Accompaniment},
	}
	files := make([]stemFile, 0, len(sources))
	for _, src := range sources {
		buf, err := wavio.ReadFile(src.path)
		if err != nil {
			return nil, services.Wrap(services.ErrStemWrite, "write stems", "read "+src.name, "", err)
		}
		target := ws.StemPath(src.name)
		if err := wavio.WriteFile(target, buf); err != nil {
			return nil, services.Wrap(services.ErrStemWrite, "write stems", "write "+src.name, "", err)
		}
		logger.Debug("stem written",
			logging.String(logging.FieldStem, src.name),
			logging.String(logging.FieldPath, target),
			logging.Int("frames", buf.Frames()),
			logging.Int("channels", buf.Channels()),
			logging.Int("sample_rate", buf.SampleRate()),
			logging.Duration("stem_duration", buf.Duration()),
		)
		files = append(files, stemFile{name: src.name, path: target, duration: buf.Duration()})
	}
	return files, nil
}

func (r *Runner) encode(ctx context.Context, j *job.Job, ws *workspace.Workspace, stems []stemFile) ([]publish.Request, error) {
	ctx, logger := r.stageContext(ctx, "encode")

	requests := make([]publish.Request, 0, len(stems))
	for _, stem := range stems {
		finalName := j.OutputName(stem.name)
		target := ws.EncodePath(finalName)
		logger.Info("encoding stem",
			logging.String(logging.FieldStem, stem.name),
			logging.String("bitrate", j.Params.Bitrate),
		)
		sampler := logging.NewProgressSampler(5)
		stemName := stem.name
		onProgress := func(p ffmpeg.Progress) {
			r.observeProgress("encode "+stemName, p.Percent)
			if p.Percent < 0 || !sampler.ShouldLog(p.Percent, "encode "+stemName) {
				return
			}
			logger.Info("encode progress",
				logging.String(logging.FieldStem, stemName),
				logging.Float64(logging.FieldPercent, p.Percent),
			)
		}
		if err := r.converter.Encode(ctx, stem.path, target, j.Params.Bitrate, stem.duration, onProgress); err != nil {
			return nil, services.Wrap(services.ErrEncode, "encode", "encode "+stem.name, "", err)
		}
		requests = append(requests, publish.Request{
			Source: target,
			Target: filepath.Join(j.Params.OutputDir, finalName),
		})
	}
	return requests, nil
}

func (r *Runner) publishOutputs(ctx context.Context, j *job.Job, requests []publish.Request) error {
	ctx, logger := r.stageContext(ctx, "publish")
	logger.Info("publishing outputs", logging.String(logging.FieldPath, j.Params.OutputDir))
	if err := r.publisher.Publish(ctx, j.Params.OutputDir, requests...); err != nil {
		return services.Wrap(services.ErrPublish, "publish", "move outputs", "", err)
	}
	return nil
}
