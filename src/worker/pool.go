package worker

import (
	"context"
	"image"
	"log"
	"runtime"
	"sync"
)

// Applier stamps a watermark onto an image. *watermark.Manager implements it.
type Applier interface {
	Apply(img image.Image) image.Image
}

// Job is one image to watermark. Load runs on the worker goroutine.
type Job struct {
	Name string
	Load func() (image.Image, error)
}

// ResultCallback is invoked on completion (from a worker goroutine).
type ResultCallback func(name string, out image.Image, err error)

// Pool is a fixed-size watermark worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	applier Applier
	jobs    chan queued
	wg      sync.WaitGroup
}

type queued struct {
	ctx context.Context
	job Job
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int, applier Applier) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{applier: applier, jobs: make(chan queued, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for q := range p.jobs {
				out, err := p.run(q.ctx, q.job)
				if err != nil {
					log.Printf("Worker: %s failed: %v", q.job.Name, err)
				}
				if q.cb != nil {
					q.cb(q.job.Name, out, err)
				}
			}
		}()
	}
}

func (p *Pool) run(ctx context.Context, j Job) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := j.Load()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := src.Bounds()
	log.Printf("Worker: Watermarking %s (%dx%d)", j.Name, b.Dx(), b.Dy())
	return p.applier.Apply(src), nil
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, j Job, cb ResultCallback) bool {
	select {
	case p.jobs <- queued{ctx: ctx, job: j, cb: cb}:
		return true
	default:
		return false
	}
}

// SubmitWait blocks until the job is queued or ctx is done.
func (p *Pool) SubmitWait(ctx context.Context, j Job, cb ResultCallback) error {
	select {
	case p.jobs <- queued{ctx: ctx, job: j, cb: cb}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
