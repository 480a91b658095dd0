package imagepkg

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchJob is one source file of a batch.
type BatchJob struct {
	Name string
	Data []byte
}

// BatchResult is the outcome of one job. Raster is kept when only encoding
// failed so the caller can retry the encode.
type BatchResult struct {
	Name     string
	Filename string
	Data     []byte
	Raster   *image.NRGBA
	Err      error
}

// BatchOption configures ProcessBatch.
type BatchOption func(*batchOptions)

type batchOptions struct {
	workers int
	render  []Option
}

// WithWorkers bounds the number of images processed at once.
func WithWorkers(n int) BatchOption {
	return func(o *batchOptions) { o.workers = n }
}

// WithRenderOptions passes options through to Composite.
func WithRenderOptions(opts ...Option) BatchOption {
	return func(o *batchOptions) { o.render = append(o.render, opts...) }
}

// ProcessBatch decodes, composites and encodes every job with the shared
// cfg. Jobs are independent and run in parallel; a failing job never stops
// the others. Jobs not yet started when ctx is done fail with ctx.Err().
// Results are in job order.
func ProcessBatch(ctx context.Context, jobs []BatchJob, cfg StyleConfig, opts ...BatchOption) []BatchResult {
	o := batchOptions{workers: runtime.NumCPU()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	results := make([]BatchResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = runJob(ctx, job, cfg, o.render)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runJob(ctx context.Context, job BatchJob, cfg StyleConfig, opts []Option) BatchResult {
	res := BatchResult{Name: job.Name, Filename: OutputFilename(job.Name, cfg)}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	src, err := Decode(job.Data)
	if err != nil {
		res.Err = err
		return res
	}
	out, err := Composite(src, cfg, opts...)
	if err != nil {
		res.Err = err
		return res
	}
	res.Raster = out
	res.Data, res.Err = EncodeBytes(out, cfg.OutputFormat, cfg.Quality)
	return res
}
