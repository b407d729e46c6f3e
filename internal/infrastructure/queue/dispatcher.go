package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/api/metrics"
	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

const (
	defaultWorkers    = 4
	defaultBuffer     = 64
	defaultJobTimeout = 2 * time.Minute
)

// Options tunes the dispatcher. Zero values select the defaults.
type Options struct {
	Workers    int
	Buffer     int
	JobTimeout time.Duration
}

// Dispatcher is a bounded worker pool for report jobs. Workers share one
// buffered channel; Submit never blocks and refuses work once the buffer is
// full.
type Dispatcher struct {
	jobs       chan ports.ReportJob
	runner     ports.ReportRunner
	workers    int
	jobTimeout time.Duration
	log        zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(runner ports.ReportRunner, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = defaultJobTimeout
	}
	return &Dispatcher{
		jobs:       make(chan ports.ReportJob, opts.Buffer),
		runner:     runner,
		workers:    opts.Workers,
		jobTimeout: opts.JobTimeout,
		log:        log,
	}
}

// Start launches the workers. ctx is the parent of every job context;
// cancelling it aborts in-flight jobs but does not stop the workers, use
// Shutdown for that.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Submit enqueues job without blocking. It returns domain.ErrQueueFull when
// the buffer is saturated or the dispatcher is shutting down.
func (d *Dispatcher) Submit(job ports.ReportJob) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return domain.ErrQueueFull
	}

	select {
	case d.jobs <- job:
		metrics.ReportQueueDepth.Set(float64(len(d.jobs)))
		return nil
	default:
		metrics.ReportQueueRejectedTotal.Inc()
		d.log.Warn().Int64("report_id", job.ReportID).Msg("report queue full, rejecting job")
		return domain.ErrQueueFull
	}
}

// Shutdown stops intake and waits for queued and in-flight jobs to finish,
// or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for job := range d.jobs {
		metrics.ReportQueueDepth.Set(float64(len(d.jobs)))
		d.process(ctx, id, job)
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, job ports.ReportJob) {
	jobCtx, cancel := context.WithTimeout(ctx, d.jobTimeout)
	defer cancel()

	start := time.Now()
	status := d.runner.Run(jobCtx, job)

	label := string(status)
	if label == "" {
		label = "discarded"
	}
	metrics.ReportsProcessedTotal.WithLabelValues(label).Inc()
	metrics.ReportProcessingDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	d.log.Debug().
		Int64("report_id", job.ReportID).
		Int("worker_id", id).
		Str("status", label).
		Dur("elapsed", time.Since(start)).
		Msg("report job finished")
}

// Inline runs each job synchronously inside Submit. It gives tests and
// single-shot tools run-to-completion semantics.
type Inline struct {
	runner ports.ReportRunner
}

func NewInline(runner ports.ReportRunner) *Inline {
	return &Inline{runner: runner}
}

func (i *Inline) Submit(job ports.ReportJob) error {
	i.runner.Run(context.Background(), job)
	return nil
}
