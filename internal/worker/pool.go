// Package worker implements a fixed-size parallel match executor: goroutines
// pull jobs off a buffered channel until it closes, coordinated by a
// sync.WaitGroup, capped by default at runtime.NumCPU.
package worker

import (
	"context"
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/clawforge/skirmish/internal/match"
)

// RunFunc executes one match job. It is injected so the pool has no import
// dependency on the match package's internals beyond the Spec/Result shape.
type RunFunc func(spec match.Spec) (match.Result, error)

type job struct {
	index int
	spec  match.Spec
	resCh chan<- indexedResult
}

type indexedResult struct {
	index  int
	result match.Result
	err    error
}

// Metrics are package-level singletons, registered once regardless of how
// many Pool instances a process creates (a training run may rebuild its
// pool across phases, and tests construct several in one binary).
var (
	occupancy = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skirmish",
		Subsystem: "worker",
		Name:      "pool_occupancy",
		Help:      "Number of worker goroutines currently running a job.",
	})
	duration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skirmish",
		Subsystem: "worker",
		Name:      "match_duration_seconds",
		Help:      "Wall-clock duration of one match job.",
		Buckets:   prometheus.DefBuckets,
	})
	failures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skirmish",
		Subsystem: "worker",
		Name:      "job_failures_total",
		Help:      "Worker job failures (never crash the pool).",
	})
)

// Pool is a fixed-size in-process goroutine worker pool. Each job's output
// depends only on its spec, never on pool occupancy or scheduling order,
// satisfying the determinism invariant in the concurrency model.
type Pool struct {
	numWorkers int
	jobCh      chan job
	wg         sync.WaitGroup
	run        RunFunc
}

// New builds a pool with numWorkers goroutines (defaulting to
// runtime.NumCPU when numWorkers <= 0) backed by run for each job.
func New(numWorkers int, run RunFunc) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	p := &Pool{
		numWorkers: numWorkers,
		jobCh:      make(chan job, numWorkers*2),
		run:        run,
	}

	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobCh {
		occupancy.Inc()
		timer := prometheus.NewTimer(duration)
		result, err := p.safeRun(j.spec)
		timer.ObserveDuration()
		occupancy.Dec()
		if err != nil {
			failures.Inc()
		}
		j.resCh <- indexedResult{index: j.index, result: result, err: err}
	}
}

// safeRun recovers a panicking job so one bad spec can never crash the
// pool; it surfaces as an ordinary worker failure instead.
func (p *Pool) safeRun(spec match.Spec) (result match.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return p.run(spec)
}

// PanicError wraps a recovered panic value as a worker failure.
type PanicError struct{ Value interface{} }

func (e *PanicError) Error() string { return "worker: job panicked" }

// RunBatch submits specs in arrival order and returns results aligned to
// that same order (by explicit index, not completion order), since
// Elo updates and candidateSide selectors are both submission-order
// dependent. ctx is accepted but not observed: there is no cancellation,
// mid-job or between jobs.
func (p *Pool) RunBatch(ctx context.Context, specs []match.Spec) ([]match.Result, []error) {
	_ = ctx // no mid-job cancellation; accepted for API symmetry with Close's phase-boundary cooperation
	resCh := make(chan indexedResult, len(specs))
	for i, s := range specs {
		p.jobCh <- job{index: i, spec: s, resCh: resCh}
	}

	results := make([]match.Result, len(specs))
	errs := make([]error, len(specs))
	for range specs {
		r := <-resCh
		results[r.index] = r.result
		errs[r.index] = r.err
	}
	return results, errs
}

// Close awaits all pending jobs and releases workers. Closing is
// cooperative and only happens at phase boundaries; there is no mid-job
// cancellation in the core.
func (p *Pool) Close() {
	close(p.jobCh)
	p.wg.Wait()
}
