package linkcheck

import (
	"net/url"
)

// destState is the lifecycle state a destination key occupies in the
// coordinator (§4.7): exactly one of undiscovered / pending /
// in-flight / checked. Undiscovered destinations have no entry at all.
type destState int

const (
	statePending destState = iota
	stateInFlight
	stateChecked
)

// coordinator owns the crawl's mutable state: the destination store,
// the set of URLs dispatched but not yet resolved, and the queue of
// URLs not yet dispatched. It is the sole writer of all three (§5).
type coordinator struct {
	store   *Store
	matcher *Matcher
	opts    Options

	state   map[string]destState
	pending []string
	inFlow  int // count of in-flight tasks, for the "pending ∪ inFlight ≠ ∅" loop condition

	links         []Link
	checkExternal bool
}

// Crawl seeds the frontier with seeds, classifies internal/external
// against hostGlobs (or each seed's own implicit "<seed>**" glob when
// hostGlobs is empty), and runs the crawl to completion. It is the
// single entry point named in §6.
func Crawl(seeds []string, hostGlobs []string, opts Options) (*CrawlResult, error) {
	opts = opts.withDefaults()

	globs := hostGlobs
	if len(globs) == 0 {
		for _, seed := range seeds {
			globs = append(globs, SeedGlob(seed))
		}
	}

	c := &coordinator{
		store:         NewStore(),
		matcher:       NewMatcher(globs),
		opts:          opts,
		state:         make(map[string]destState),
		checkExternal: !opts.DisableExternal,
	}

	for _, seed := range seeds {
		d := c.store.Intern(seed)
		d.IsExternal = false
		if !c.markTerminalIfNeeded(d) {
			c.enqueue(d.URL)
		}
	}

	pool := NewPool(opts.Context, opts.NumWorkers, opts.Client, opts.UserAgent)

	if err := c.run(pool); err != nil {
		return nil, err
	}

	return c.assembleResult(), nil
}

// run drives the dispatch/receive loop of §4.7 step 2 to completion.
func (c *coordinator) run(pool *Pool) error {
	for len(c.pending) > 0 || c.inFlow > 0 {
		var dispatchCh chan<- Task
		var next Task
		if len(c.pending) > 0 {
			dispatchCh = pool.DispatchChan()
			d, ok := c.store.Lookup(c.pending[0])
			if !ok {
				return newCoordinatorError("I1", "pending destination %q missing from store", c.pending[0])
			}
			next = Task{URL: d.URL, ShouldParse: !d.IsExternal}
		}

		select {
		case dispatchCh <- next:
			c.pending = c.pending[1:]
			c.state[next.URL] = stateInFlight
			c.inFlow++

		case wr, open := <-pool.Results():
			if !open {
				// All workers have exited; nothing left in flight can
				// arrive. The outer loop condition will now be false.
				continue
			}
			if err := c.handleResult(wr); err != nil {
				return err
			}
		}
	}

	pool.CloseDispatch()
	// Drain any results produced between the last dispatch and the
	// close (none should remain given the loop invariant above, but
	// draining keeps the pool's closer goroutine from blocking).
	for range pool.Results() {
	}
	return nil
}

// handleResult implements §4.7 steps 2.c-2.d: merge the result, then
// process every outbound link it carried.
func (c *coordinator) handleResult(wr WorkResult) error {
	key := wr.Result.URL
	if c.state[key] != stateInFlight {
		return newCoordinatorError("I5", "result for %q arrived while not in-flight", key)
	}
	c.inFlow--
	c.state[key] = stateChecked

	if err := c.store.Merge(wr.Result); err != nil {
		return err
	}

	d, ok := c.store.Lookup(key)
	if !ok {
		return newCoordinatorError("I1", "merged destination %q missing from store", key)
	}

	for _, raw := range wr.OutboundLinks {
		c.processOutbound(d, raw)
	}
	return nil
}

// processOutbound implements §4.7 step 2.d for a single (origin, href)
// pair: resolve, classify, and — unless it is external and external
// checking is disabled, in which case it is skipped before ever
// touching the store — intern, record the edge, and enqueue if new.
func (c *coordinator) processOutbound(origin *Destination, raw RawLink) {
	base := origin.URI
	if base == nil {
		base = &url.URL{}
	}
	if origin.FinalURL != "" {
		if parsedFinal, err := url.Parse(origin.FinalURL); err == nil {
			base = parsedFinal
		}
	}

	resolved, err := resolve(base, raw.Href)
	if err != nil {
		return
	}

	_, fragment, parsed, _ := normalize(resolved)
	isExternal := !c.matcher.MatchesAsInternal(parsed)
	if isExternal && !c.checkExternal {
		return
	}

	target := c.store.Intern(resolved)

	c.links = append(c.links, Link{
		Origin:      Origin{URL: raw.Origin},
		Destination: target.URL,
		Fragment:    fragment,
	})

	if _, seen := c.state[target.URL]; !seen {
		target.IsExternal = isExternal
		if c.markTerminalIfNeeded(target) {
			return
		}
		c.enqueue(target.URL)
	}
}

// markTerminalIfNeeded marks d checked-without-dispatch when it is
// invalid or carries an unsupported scheme (§7: both are "never
// dispatched"). Returns true when it did so.
func (c *coordinator) markTerminalIfNeeded(d *Destination) bool {
	if d.IsInvalid {
		c.state[d.URL] = stateChecked
		return true
	}
	if d.URI != nil && !supportedSchemes[d.URI.Scheme] {
		d.IsUnsupportedScheme = true
		c.state[d.URL] = stateChecked
		return true
	}
	return false
}

func (c *coordinator) enqueue(key string) {
	if _, seen := c.state[key]; seen {
		return
	}
	c.state[key] = statePending
	c.pending = append(c.pending, key)
}
