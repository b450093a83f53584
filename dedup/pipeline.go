package dedup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/dendrascience/imgdedup/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Options configures a Run.
type Options struct {
	Input   string
	Output  string
	Quality int
	// Workers bounds the number of files processed at once.
	// Zero means runtime.NumCPU().
	Workers int
	// Logger receives per-file diagnostics. Nil means no logging.
	Logger *zap.Logger
	// Progress receives "Processing: <path>" lines. Nil discards them.
	Progress io.Writer
	// OnFile is called once per file after it has been accounted.
	// It may be called from several goroutines at once.
	OnFile func(Result)
}

// Result describes how one input file was handled.
type Result struct {
	Path     string
	Digest   string
	Outcome  Outcome
	Original int64 // bytes read from the source
	Output   int64 // bytes counted towards the output total
	Err      error
}

// artifact is what a digest resolved to. owner is the source path whose
// conversion produced it during this run, empty when it pre-existed.
type artifact struct {
	state util.ArtifactState
	size  int64
	owner string
}

type pipeline struct {
	opts   Options
	log    *zap.Logger
	stats  Stats
	flight singleflight.Group
	memo   sync.Map // digest -> artifact, filled once this run produced it
	outMu  sync.Mutex
}

// Run walks opts.Input and converts every unique image into
// opts.Output/<digest>.webp. Per-file problems are logged, counted and
// skipped. Run returns an error only when the run cannot start or ctx is
// cancelled; the summary is valid in both cases.
func Run(ctx context.Context, opts Options) (Summary, error) {
	start := time.Now()
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	p := &pipeline{opts: opts, log: opts.Logger}

	summarize := func() Summary {
		sum := p.stats.Summarize(time.Since(start))
		sum.Input, sum.Output, sum.Quality = opts.Input, opts.Output, opts.Quality
		return sum
	}

	if opts.Quality < 0 || opts.Quality > 100 {
		return summarize(), fmt.Errorf("%w: got %d", ErrInvalidQuality, opts.Quality)
	}
	if info, err := os.Stat(opts.Input); err != nil {
		return summarize(), fmt.Errorf("input directory: %w", err)
	} else if !info.IsDir() {
		return summarize(), fmt.Errorf("input directory %s: %w", opts.Input, util.ErrExpectedDirectory)
	}
	if util.PathWithin(opts.Input, opts.Output) && util.PathWithin(opts.Output, opts.Input) {
		return summarize(), ErrSameDirectory
	}
	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return summarize(), fmt.Errorf("create output directory: %w", err)
	}

	var prune []string
	if util.PathWithin(opts.Output, opts.Input) {
		p.log.Debug("output directory is inside input, excluding it from the walk", zap.String("output", opts.Output))
		prune = append(prune, opts.Output)
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)

	walkErr := util.WalkFiles(opts.Input, prune, func(path string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			p.finish(p.processFile(path))
			return nil
		})
		return nil
	}, p.walkError)

	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	sum := summarize()
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return sum, walkErr
		}
		return sum, fmt.Errorf("walk %s: %w", opts.Input, walkErr)
	}
	return sum, nil
}

func (p *pipeline) walkError(path string, err error) {
	if errors.Is(err, util.ErrUnexpectedSymlink) {
		p.log.Debug("skipping symlink", zap.String("path", path))
		p.finish(Result{Path: path, Outcome: OutcomeSkipped, Err: err})
		return
	}
	p.log.Warn("cannot read path", zap.String("path", path), zap.Error(err))
	p.finish(Result{Path: path, Outcome: OutcomeFailed, Err: err})
}

func (p *pipeline) finish(r Result) {
	p.stats.Record(r.Outcome, r.Original, r.Output)
	if p.opts.OnFile != nil {
		p.opts.OnFile(r)
	}
}

func (p *pipeline) printf(format string, args ...any) {
	if p.opts.Progress == nil {
		return
	}
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.opts.Progress, format, args...)
}

// processFile never returns an error: every failure is folded into the Result.
func (p *pipeline) processFile(path string) Result {
	r := Result{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		p.log.Warn("cannot read file", zap.String("path", path), zap.Error(err))
		r.Outcome, r.Err = OutcomeFailed, err
		return r
	}
	r.Original = int64(len(raw))
	r.Digest = util.HashBytes(raw)

	a, err := p.resolve(path, r.Digest, raw)
	switch {
	case errors.Is(err, ErrUnsupportedImage):
		p.log.Debug("skipping non-image file", zap.String("path", path), zap.String("digest", r.Digest))
		r.Outcome, r.Err = OutcomeSkipped, err
		return r
	case err != nil:
		p.log.Warn("cannot convert file", zap.String("path", path), zap.String("digest", r.Digest), zap.Error(err))
		r.Outcome, r.Err = OutcomeFailed, err
		return r
	}

	r.Output = a.size
	if a.state == util.ArtifactMarker {
		r.Output = r.Original
	}
	switch {
	case a.owner == "":
		r.Outcome = OutcomeReused
	case a.owner != path:
		r.Outcome = OutcomeDeduplicated
	case a.state == util.ArtifactMarker:
		r.Outcome = OutcomeDeclined
	default:
		r.Outcome = OutcomeConverted
	}
	return r
}

// resolve returns the artifact for digest, converting raw if no artifact
// exists yet. Concurrent callers with the same digest share one conversion.
func (p *pipeline) resolve(path, digest string, raw []byte) (artifact, error) {
	v, err, _ := p.flight.Do(digest, func() (any, error) {
		if a, ok := p.memo.Load(digest); ok {
			return a, nil
		}
		out := util.ArtifactPathFromHash(p.opts.Output, digest)
		state, size, err := util.StatArtifact(out)
		if err != nil {
			return nil, err
		}
		if state != util.ArtifactMissing {
			return artifact{state: state, size: size}, nil
		}

		a, err := p.convert(path, raw, out)
		if err != nil {
			return nil, err
		}
		p.memo.Store(digest, a)
		return a, nil
	})
	if err != nil {
		return artifact{}, err
	}
	return v.(artifact), nil
}

func (p *pipeline) convert(path string, raw []byte, out string) (artifact, error) {
	p.printf("Processing: %s\n", path)

	encoded, err := Convert(raw, p.opts.Quality)
	if err != nil {
		return artifact{}, err
	}

	a := artifact{owner: path}
	if worthKeeping(len(encoded), len(raw)) {
		a.state, a.size = util.ArtifactEncoded, int64(len(encoded))
	} else {
		encoded = nil
		a.state = util.ArtifactMarker
	}
	if err := util.WriteFileAtomic(out, encoded); err != nil {
		return artifact{}, fmt.Errorf("write artifact: %w", err)
	}
	p.log.Debug("wrote artifact",
		zap.String("path", path),
		zap.String("artifact", out),
		zap.Stringer("state", a.state),
		zap.Int("original", len(raw)),
		zap.Int64("size", a.size))
	return a, nil
}
