package linkcheck

import (
	"context"
	"net/http"
	"sync"
)

// Pool multiplexes N fetch workers over a shared dispatch channel,
// serializing their results back onto a single results channel
// (§4.6). Closing dispatch causes workers to drain, complete any
// in-flight task, and the pool closes results once the last worker
// exits — the same graceful-shutdown choreography
// cametumbling-web-crawler's Coordinator uses around its workCh/resultsCh.
type Pool struct {
	dispatch chan Task
	results  chan WorkResult
	workers  sync.WaitGroup
}

// NewPool starts n workers immediately; they block on dispatch until
// work arrives or it is closed.
func NewPool(ctx context.Context, n int, client *http.Client, userAgent string) *Pool {
	p := &Pool{
		dispatch: make(chan Task),
		results:  make(chan WorkResult),
	}

	for i := 0; i < n; i++ {
		p.workers.Add(1)
		go p.runWorker(ctx, client, userAgent)
	}

	go func() {
		p.workers.Wait()
		close(p.results)
	}()

	return p
}

func (p *Pool) runWorker(ctx context.Context, client *http.Client, userAgent string) {
	defer p.workers.Done()
	for task := range p.dispatch {
		result := p.runTaskRecovered(ctx, client, userAgent, task)
		p.results <- *result
	}
}

// runTaskRecovered isolates fetchOne behind a recover so a worker
// panic (a malformed response triggering a bug deep in the HTML
// parser, say) is reported as a TransportFailure for that task's URL
// instead of taking down the whole crawl (§7).
func (p *Pool) runTaskRecovered(ctx context.Context, client *http.Client, userAgent string, task Task) (result *WorkResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &WorkResult{Result: &DestinationResult{
				URL:           task.URL,
				DidNotConnect: true,
			}}
		}
	}()
	return fetchOne(ctx, client, userAgent, task)
}

// Dispatch sends task to a worker. It blocks until a worker is free,
// providing the backpressure §5 relies on.
func (p *Pool) Dispatch(task Task) {
	p.dispatch <- task
}

// DispatchChan exposes the raw send side of the dispatch channel so
// the coordinator can select on it alongside Results(), the same
// nil-channel-when-empty trick the teacher's Crawl loop uses around
// its own tofetch channel.
func (p *Pool) DispatchChan() chan<- Task {
	return p.dispatch
}

// Results returns the channel workers publish WorkResults on. It is
// closed once CloseDispatch has been called and every in-flight task
// has completed.
func (p *Pool) Results() <-chan WorkResult {
	return p.results
}

// CloseDispatch signals that no more work will be sent. Workers drain
// any tasks already queued, finish in-flight tasks, then exit.
func (p *Pool) CloseDispatch() {
	close(p.dispatch)
}
