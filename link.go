package linkcheck

// Origin is the (source page, textual location) where a link was
// found. The HTML/CSS parser does not report positions, so the
// coordinator leaves Line/Column at zero, which means "unknown", not
// "start of file".
type Origin struct {
	URL    string
	Line   int
	Column int
}

// Link is an edge from an Origin to a Destination, carrying the
// specific fragment (if any) the origin requested. The fragment
// governs anchor validation distinct from link reachability (§3).
type Link struct {
	Origin      Origin
	Destination string // Destination.URL of the target
	Fragment    string
}
