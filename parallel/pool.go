package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

type Pool struct {
	wg      sync.WaitGroup
	Workers int
	Do      WorkerFunc
	Wait    WaitFunc
	Cancel  CancelFunc
}

// Start creates a pool of numWorkers goroutines consuming closures handed to
// Do. With a single worker the pool degenerates to inline execution. Wait(true)
// closes the work channel and joins the workers; Do must not be called after.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Workers: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for {
					f, ok := <-workChan
					if !ok {
						return
					}
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

// Join runs each task through the pool and blocks until all of them have
// finished, without shutting the pool down. Used to fan out inside a single
// operation while the pool keeps serving other callers afterwards.
func (p *Pool) Join(tasks []func()) {
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		p.Do(func() {
			defer wg.Done()
			task()
		})
	}
	wg.Wait()
}
