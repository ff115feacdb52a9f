package main

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/drops/config"
)

// seedJob is one headless run for a pool worker.
type seedJob struct {
	idx  int
	seed int64
	cfg  *config.Config
}

// seedDone reports a finished job.
type seedDone struct {
	idx    int
	result runResult
}

// runFunc executes one headless run. Each call builds its own kernel context.
type runFunc func(cfg *config.Config, seed int64) runResult

// seedPool runs seed evaluations on persistent worker goroutines.
type seedPool struct {
	numWorkers int
	run        runFunc

	workChan chan seedJob
	doneChan chan seedDone
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// newSeedPool creates a pool with up to GOMAXPROCS workers, never more than maxWorkers.
func newSeedPool(maxWorkers int, run runFunc) *seedPool {
	n := runtime.GOMAXPROCS(0)
	if maxWorkers > 0 && n > maxWorkers {
		n = maxWorkers
	}
	if n < 1 {
		n = 1
	}
	return &seedPool{numWorkers: n, run: run}
}

// start launches the worker goroutines.
func (p *seedPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan seedJob, p.numWorkers)
	p.doneChan = make(chan seedDone, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *seedPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *seedPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case job, ok := <-p.workChan:
			if !ok {
				return
			}
			p.doneChan <- seedDone{idx: job.idx, result: p.run(job.cfg, job.seed)}
		}
	}
}

// runAll evaluates cfg once per seed and returns results in seed order.
func (p *seedPool) runAll(cfg *config.Config, seeds []int64) []runResult {
	p.start()

	results := make([]runResult, len(seeds))
	go func() {
		for i, s := range seeds {
			p.workChan <- seedJob{idx: i, seed: s, cfg: cfg}
		}
	}()
	for range seeds {
		d := <-p.doneChan
		results[d.idx] = d.result
	}
	return results
}
