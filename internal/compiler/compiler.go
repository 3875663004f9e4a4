package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/lvlc/internal/model"
	"github.com/udisondev/lvlc/internal/schema"
)

// Result is the outcome of compiling one source file.
type Result struct {
	Source   string
	Output   string
	Planets  int
	Enemies  int
	Size     int
	Checksum [blake2b.Size256]byte // BLAKE2b-256 of the artifact, zero on failure
	Duration time.Duration
	Err      error
}

// OK reports whether the file compiled and was written.
func (r Result) OK() bool {
	return r.Err == nil
}

// Recorder receives every Result, e.g. to persist it in the build ledger.
// A Recorder error is logged and never changes the compile outcome.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// Report summarizes a directory run. Results follow sorted source order.
type Report struct {
	Dir     string
	Results []Result
	Failed  int
}

// Options configures a Compiler.
type Options struct {
	SourceExtensions []string
	OutputExtension  string
	Workers          int
	Recorder         Recorder     // optional
	OnResult         func(Result) // optional, called once per file as it finishes
}

// Compiler compiles level sources found on disk.
type Compiler struct {
	opts Options
	mu   sync.Mutex // serializes OnResult
}

// New creates a Compiler. Workers below 1 mean sequential.
func New(opts Options) *Compiler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.OutputExtension == "" {
		opts.OutputExtension = ".lvl"
	}
	if len(opts.SourceExtensions) == 0 {
		opts.SourceExtensions = []string{".json"}
	}
	return &Compiler{opts: opts}
}

// Matches reports whether path has one of the configured source extensions.
func (c *Compiler) Matches(path string) bool {
	return slices.Contains(c.opts.SourceExtensions, filepath.Ext(path))
}

// CompileFile compiles src into its sibling artifact.
// Nothing is written unless every stage succeeded.
func (c *Compiler) CompileFile(ctx context.Context, src string) Result {
	start := time.Now()
	res := Result{Source: src, Output: OutputPath(src, c.opts.OutputExtension)}

	data, err := os.ReadFile(src)
	if err != nil {
		res.Err = fmt.Errorf("%w: reading %s: %v", model.ErrIOFailure, src, err)
	} else if lvl, out, err := Compile(data, schema.FormatFromPath(src)); err != nil {
		res.Err = err
	} else if err := WriteAtomic(res.Output, out); err != nil {
		res.Err = err
	} else {
		res.Planets = len(lvl.Planets)
		res.Enemies = len(lvl.Enemies)
		res.Size = len(out)
		res.Checksum = blake2b.Sum256(out)
	}
	res.Duration = time.Since(start)

	if res.OK() {
		slog.Debug("compiled level", "file", src, "planets", res.Planets, "enemies", res.Enemies, "bytes", res.Size)
	} else {
		slog.Debug("level failed", "file", src, "err", res.Err)
	}

	c.record(ctx, res)
	return res
}

func (c *Compiler) record(ctx context.Context, res Result) {
	if c.opts.Recorder != nil {
		if err := c.opts.Recorder.Record(ctx, res); err != nil {
			slog.Warn("recording compile result", "file", res.Source, "err", err)
		}
	}
	if c.opts.OnResult != nil {
		c.mu.Lock()
		c.opts.OnResult(res)
		c.mu.Unlock()
	}
}

// FindSources lists the source files directly inside dir, sorted by name.
func (c *Compiler) FindSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading directory %s: %v", model.ErrIOFailure, dir, err)
	}

	var files []string
	for _, e := range entries {
		if !c.Matches(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path) // follows symlinks
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	slices.Sort(files)
	return files, nil
}

// CompileDir compiles every source directly inside dir.
// One file's failure never stops the others; the returned error is only for
// problems with dir itself or a cancelled context.
func (c *Compiler) CompileDir(ctx context.Context, dir string) (Report, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Report{}, fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %s: %v", model.ErrIOFailure, abs, err)
	}
	if !info.IsDir() {
		return Report{}, fmt.Errorf("%s is not a directory", abs)
	}

	files, err := c.FindSources(abs)
	if err != nil {
		return Report{}, err
	}
	return c.CompileFiles(ctx, abs, files)
}

// CompileFiles compiles an already listed set of sources from dir.
// Sources that would write the same artifact (a.json and a.yaml) all fail
// and nothing is written for them.
func (c *Compiler) CompileFiles(ctx context.Context, dir string, files []string) (Report, error) {
	report := Report{Dir: dir, Results: make([]Result, len(files))}
	if len(files) == 0 {
		return report, nil
	}

	clashes := c.collisions(files)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if others, ok := clashes[f]; ok {
				report.Results[i] = c.reject(gctx, f, others)
				return nil
			}
			report.Results[i] = c.CompileFile(gctx, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("compiling %s: %w", dir, err)
	}

	for _, r := range report.Results {
		if !r.OK() {
			report.Failed++
		}
	}
	return report, nil
}

// collisions maps every source that shares its artifact path with another
// source to the list of those other sources.
func (c *Compiler) collisions(files []string) map[string][]string {
	byOutput := make(map[string][]string, len(files))
	for _, f := range files {
		out := OutputPath(f, c.opts.OutputExtension)
		byOutput[out] = append(byOutput[out], f)
	}

	clashes := make(map[string][]string)
	for _, group := range byOutput {
		if len(group) < 2 {
			continue
		}
		for _, f := range group {
			clashes[f] = slices.DeleteFunc(slices.Clone(group), func(o string) bool { return o == f })
		}
	}
	return clashes
}

func (c *Compiler) reject(ctx context.Context, src string, others []string) Result {
	res := Result{Source: src, Output: OutputPath(src, c.opts.OutputExtension)}
	names := make([]string, len(others))
	for i, o := range others {
		names[i] = filepath.Base(o)
	}
	res.Err = fmt.Errorf("%w: output collision: %s is also produced by %s",
		model.ErrIOFailure, filepath.Base(res.Output), strings.Join(names, ", "))
	slog.Debug("level failed", "file", src, "err", res.Err)
	c.record(ctx, res)
	return res
}
