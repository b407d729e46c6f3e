package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

type stubRunner struct {
	mu      sync.Mutex
	ran     []int64
	release chan struct{}
	started chan int64
}

func (r *stubRunner) Run(ctx context.Context, job ports.ReportJob) domain.ReportStatus {
	if r.started != nil {
		r.started <- job.ReportID
	}
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	r.ran = append(r.ran, job.ReportID)
	r.mu.Unlock()
	return domain.ReportCompleted
}

func (r *stubRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ran)
}

func TestDispatcher_RunsAllJobs(t *testing.T) {
	runner := &stubRunner{}
	d := NewDispatcher(runner, Options{Workers: 3, Buffer: 16}, zerolog.Nop())
	d.Start(context.Background())

	for i := int64(1); i <= 10; i++ {
		if err := d.Submit(ports.ReportJob{ReportID: i}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if runner.count() != 10 {
		t.Fatalf("expected 10 jobs to run, got %d", runner.count())
	}
}

func TestDispatcher_RejectsWhenSaturated(t *testing.T) {
	runner := &stubRunner{release: make(chan struct{}), started: make(chan int64, 1)}
	d := NewDispatcher(runner, Options{Workers: 1, Buffer: 1}, zerolog.Nop())
	d.Start(context.Background())

	if err := d.Submit(ports.ReportJob{ReportID: 1}); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	<-runner.started // worker is busy with job 1

	if err := d.Submit(ports.ReportJob{ReportID: 2}); err != nil {
		t.Fatalf("submit 2 should fill the buffer: %v", err)
	}
	if err := d.Submit(ports.ReportJob{ReportID: 3}); err != domain.ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	runner.started = nil
	close(runner.release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if runner.count() != 2 {
		t.Fatalf("expected 2 jobs to run, got %d", runner.count())
	}
}

func TestDispatcher_SubmitAfterShutdown(t *testing.T) {
	d := NewDispatcher(&stubRunner{}, Options{}, zerolog.Nop())
	d.Start(context.Background())
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := d.Submit(ports.ReportJob{ReportID: 1}); err != domain.ErrQueueFull {
		t.Fatalf("expected ErrQueueFull after shutdown, got %v", err)
	}
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown should be a no-op: %v", err)
	}
}

func TestDispatcher_ShutdownTimeout(t *testing.T) {
	runner := &stubRunner{release: make(chan struct{}), started: make(chan int64, 1)}
	d := NewDispatcher(runner, Options{Workers: 1}, zerolog.Nop())
	d.Start(context.Background())
	_ = d.Submit(ports.ReportJob{ReportID: 1})
	<-runner.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Shutdown(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(runner.release)
}

func TestInline_RunsSynchronously(t *testing.T) {
	runner := &stubRunner{}
	inline := NewInline(runner)
	if err := inline.Submit(ports.ReportJob{ReportID: 7}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if runner.count() != 1 {
		t.Fatalf("expected job to have run before Submit returned")
	}
}
