package linkcheck

import "fmt"

// CoordinatorError reports a violation of a crawl invariant: a
// programming error in the coordinator itself, never a per-destination
// failure. It is the only error Crawl returns.
type CoordinatorError struct {
	Invariant string
	Detail    string
}

func (e *CoordinatorError) Error() string {
	return fmt.Sprintf("linkcheck: invariant %s violated: %s", e.Invariant, e.Detail)
}

func newCoordinatorError(invariant, format string, args ...any) error {
	return &CoordinatorError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)}
}
