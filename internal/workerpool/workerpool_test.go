package workerpool

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunExecutesEveryJobExactlyOnce(t *testing.T) {
	const n = 200
	var counts [n]int32
	jobs := make([]Job, n)
	for i := 0; i < n; i++ {
		i := i
		jobs[i] = func() {
			atomic.AddInt32(&counts[i], 1)
		}
	}
	Run(jobs)
	for i, c := range counts {
		if c != 1 {
			t.Fatalf("job %d ran %d times, want 1", i, c)
		}
	}
}

func TestPoolLifecycle(t *testing.T) {
	p := New()
	var mu sync.Mutex
	var seen []int
	for i := 0; i < 50; i++ {
		i := i
		p.Add(func() {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
		})
	}
	p.Start()
	p.Wait()

	sort.Ints(seen)
	if len(seen) != 50 {
		t.Fatalf("got %d completions, want 50", len(seen))
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("missing job %d in completion set", i)
		}
	}
}

func TestAddAfterStartPanics(t *testing.T) {
	p := New()
	p.Add(func() {})
	p.Start()
	p.Wait()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when adding after Start")
		}
	}()
	p.Add(func() {})
}

func TestEmptyPool(t *testing.T) {
	p := New()
	p.Start()
	p.Wait() // must not hang or panic on zero jobs
}
