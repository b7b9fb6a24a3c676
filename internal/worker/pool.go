// Package worker runs background jobs, mainly the usage recording kicked off
// after a chat stream completes.
package worker

import "sync"

type Job func()

type Pool struct {
	jobs chan Job
	once sync.Once
	wg   sync.WaitGroup
}

func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		jobs: make(chan Job, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit enqueues a job, blocking if the queue is full. Submitting after
// Shutdown panics.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// Shutdown closes the queue and waits for already-queued jobs to finish.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
