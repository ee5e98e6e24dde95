package linkcheck

// Store is a deduplicating map from normalized URL to Destination. It
// is single-writer: only the coordinator goroutine touches it, so no
// locking is needed (§5, "Shared-resource policy").
type Store struct {
	byURL map[string]*Destination
	order []string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byURL: make(map[string]*Destination)}
}

// Intern returns the existing Destination for raw's key, or creates,
// inserts, and returns a new one. If raw carries a fragment, it is
// added to the Destination's Fragments (I2). raw never fails: an
// unparseable URL yields an IsInvalid Destination retaining the
// original text as its key.
func (s *Store) Intern(raw string) *Destination {
	key, fragment, parsed, ok := normalize(raw)

	d, exists := s.byURL[key]
	if !exists {
		d = newDestination(key, parsed, !ok)
		s.byURL[key] = d
		s.order = append(s.order, key)
	}
	d.updateFragmentsFrom(fragment)
	return d
}

// Lookup returns the Destination already interned for key, if any.
func (s *Store) Lookup(key string) (*Destination, bool) {
	d, ok := s.byURL[key]
	return d, ok
}

// Merge locates the Destination by result.URL (which must already
// exist; a miss is a programming error, I5) and copies the worker's
// findings into it. Per Destination lifecycle, a Destination's mutable
// fields transition from unset to set exactly once: merging twice for
// the same URL is also a programming error.
func (s *Store) Merge(result *DestinationResult) error {
	d, ok := s.byURL[result.URL]
	if !ok {
		return newCoordinatorError("I5", "merge for unknown destination %q", result.URL)
	}
	if d.wasTried() {
		return newCoordinatorError("I5", "duplicate merge for already-checked destination %q", result.URL)
	}

	d.FinalURL = result.FinalURL
	d.StatusCode = result.StatusCode
	d.ContentType = result.ContentType
	d.Redirects = result.Redirects
	d.IsSource = result.IsSource
	d.Anchors = result.Anchors
	d.DidNotConnect = result.DidNotConnect
	d.IsUnsupportedScheme = result.IsUnsupportedScheme
	return nil
}

// All returns every interned Destination in insertion order.
func (s *Store) All() []*Destination {
	out := make([]*Destination, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byURL[key])
	}
	return out
}
