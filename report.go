package linkcheck

// AnchorWarning records a fragment a source page linked to that was
// never declared as an anchor on its target (§4.7 "Fragment
// validation"). It is a warning, not a broken link (I4/P5 exclude it
// from IsBroken).
type AnchorWarning struct {
	OriginURL string
	TargetURL string
	Fragment  string
}

// CrawlResult is the crawl's final, immutable view: every Destination
// discovered, every Link edge recorded, and the two classifications a
// report writer needs (broken links, anchor warnings). This is the
// "Reporter adapter" component of §2: it does no rendering itself, it
// only classifies what the coordinator already produced.
type CrawlResult struct {
	Destinations   []*Destination
	Links          []Link
	Broken         []*Destination
	AnchorWarnings []AnchorWarning
}

// assembleResult implements §4.7 step 3 and the post-crawl "Fragment
// validation" pass: it runs once, after the dispatch/receive loop has
// terminated and every destination is checked (P3).
func (c *coordinator) assembleResult() *CrawlResult {
	destinations := c.store.All()

	result := &CrawlResult{
		Destinations: destinations,
		Links:        c.links,
	}

	for _, d := range destinations {
		if d.IsBroken() {
			result.Broken = append(result.Broken, d)
		}
	}

	for _, link := range c.links {
		if link.Fragment == "" {
			continue
		}
		target, ok := c.store.Lookup(link.Destination)
		if !ok || !target.IsSource {
			continue
		}
		if !hasAnchor(target.Anchors, link.Fragment) {
			result.AnchorWarnings = append(result.AnchorWarnings, AnchorWarning{
				OriginURL: link.Origin.URL,
				TargetURL: link.Destination,
				Fragment:  link.Fragment,
			})
		}
	}

	return result
}

func hasAnchor(anchors []string, fragment string) bool {
	for _, a := range anchors {
		if a == fragment {
			return true
		}
	}
	return false
}
