// Package workerpool implements the fixed-job worker pool that
// parallelizes the per-tile graph-cut phase: every job is enumerated
// up front, then a bounded set of goroutines drain the job list via a
// shared atomic cursor. There is no dependency between jobs; callers
// synchronize any shared output themselves.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is a nullary side-effecting unit of work.
type Job func()

// Pool has three lifecycle phases: Add (single-threaded), Start
// (spawns workers), and Wait (joins). No new jobs may be added after
// Start.
type Pool struct {
	jobs    []Job
	index   atomic.Int64
	started bool
	wg      sync.WaitGroup
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{}
}

// Add appends a job to the pool. It panics if called after Start.
func (p *Pool) Add(j Job) {
	if p.started {
		panic("workerpool: Add called after Start")
	}
	p.jobs = append(p.jobs, j)
}

// Start spawns max(1, min(runtime.NumCPU()/2, len(jobs))) worker
// goroutines, each repeatedly fetching-and-incrementing a shared index
// into the job list and running the job at that index until the index
// reaches the job count. Ordering of completion is unspecified.
func (p *Pool) Start() {
	p.started = true
	jobCount := len(p.jobs)
	if jobCount == 0 {
		return
	}
	workerCount := runtime.NumCPU() / 2
	if workerCount > jobCount {
		workerCount = jobCount
	}
	if workerCount < 1 {
		workerCount = 1
	}
	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer p.wg.Done()
			for {
				idx := int(p.index.Add(1)) - 1
				if idx >= jobCount {
					return
				}
				p.jobs[idx]()
			}
		}()
	}
}

// Wait blocks until every spawned worker has drained the job list.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Run is a convenience for the common case: add every job in jobs,
// start the pool, and wait for completion.
func Run(jobs []Job) {
	p := New()
	for _, j := range jobs {
		p.Add(j)
	}
	p.Start()
	p.Wait()
}
