package linkcheck

import (
	"encoding/json"
	"net/url"
	"sort"
)

// BasicRedirectInfo is one hop of a redirect chain, in the order it
// was followed.
type BasicRedirectInfo struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
}

// ContentType splits a response's MIME type into its primary and sub
// parts, e.g. "text"/"html".
type ContentType struct {
	PrimaryType string `json:"primaryType"`
	SubType     string `json:"subType"`
}

// Destination is a resource identified by its URL with the fragment
// stripped. Two Destinations are equal iff their URL is equal (I1);
// fragments are not part of identity.
type Destination struct {
	URL string
	URI *url.URL

	// Fragments is the union of fragments requested by every Origin
	// that targeted this Destination (I2).
	Fragments map[string]struct{}

	StatusCode  *int
	ContentType *ContentType
	Redirects   []BasicRedirectInfo
	FinalURL    string

	// Anchors is only meaningful when IsSource holds (I3).
	Anchors []string

	IsExternal    bool
	IsSource      bool
	IsInvalid     bool
	DidNotConnect bool
	// IsUnsupportedScheme marks a scheme outside {http, https, file};
	// such destinations are never dispatched and are excluded from
	// IsBroken (I4).
	IsUnsupportedScheme bool
}

// newDestination creates a Destination for key/parsed. invalid is true
// when the original text failed to parse as a URL.
func newDestination(key string, parsed *url.URL, invalid bool) *Destination {
	return &Destination{
		URL:       key,
		URI:       parsed,
		Fragments: make(map[string]struct{}),
		IsInvalid: invalid,
	}
}

// updateFragmentsFrom adds fragment to d.Fragments if non-empty (I2).
func (d *Destination) updateFragmentsFrom(fragment string) {
	if fragment == "" {
		return
	}
	d.Fragments[fragment] = struct{}{}
}

// wasTried reports whether this Destination has been dispatched and a
// result merged into it (I5): didNotConnect, or a statusCode was set.
func (d *Destination) wasTried() bool {
	return d.DidNotConnect || d.StatusCode != nil
}

// isChecked reports whether this Destination is done: tried, or
// skipped for cause (invalid URL or unsupported scheme) (P3).
func (d *Destination) isChecked() bool {
	return d.wasTried() || d.IsInvalid || d.IsUnsupportedScheme
}

// IsBroken implements I4/P5: unsupported-scheme destinations are never
// broken; everything else is broken if it's invalid, didn't connect,
// or didn't resolve to a 200 after following redirects.
func (d *Destination) IsBroken() bool {
	if d.IsUnsupportedScheme {
		return false
	}
	if d.IsInvalid || d.DidNotConnect {
		return true
	}
	return d.StatusCode == nil || *d.StatusCode != 200
}

// sortedFragments returns d.Fragments as a sorted slice, for
// deterministic reporting and serialization.
func (d *Destination) sortedFragments() []string {
	out := make([]string, 0, len(d.Fragments))
	for f := range d.Fragments {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ToMap renders the Destination in the canonical wire form fixed by
// the field names in §6: url, statusCode, primaryType, subType,
// redirects, finalUrl, isExternal, isSource, anchors, isInvalid,
// didNotConnect, isUnsupportedScheme.
func (d *Destination) ToMap() map[string]any {
	m := map[string]any{
		"url":                 d.URL,
		"redirects":           d.Redirects,
		"finalUrl":            d.FinalURL,
		"isExternal":          d.IsExternal,
		"isSource":            d.IsSource,
		"anchors":             d.Anchors,
		"isInvalid":           d.IsInvalid,
		"didNotConnect":       d.DidNotConnect,
		"isUnsupportedScheme": d.IsUnsupportedScheme,
	}
	if d.StatusCode != nil {
		m["statusCode"] = *d.StatusCode
	} else {
		m["statusCode"] = nil
	}
	if d.ContentType != nil {
		m["primaryType"] = d.ContentType.PrimaryType
		m["subType"] = d.ContentType.SubType
	} else {
		m["primaryType"] = nil
		m["subType"] = nil
	}
	return m
}

// DestinationResult is the serializable message a worker produces for
// one Destination. url is the correlation key the coordinator uses to
// find the Destination to merge into (§4.3 merge).
type DestinationResult struct {
	URL                 string              `json:"url"`
	StatusCode          *int                `json:"statusCode"`
	ContentType         *ContentType        `json:"contentType,omitempty"`
	Redirects           []BasicRedirectInfo `json:"redirects"`
	FinalURL            string              `json:"finalUrl"`
	IsSource            bool                `json:"isSource"`
	Anchors             []string            `json:"anchors"`
	IsExternal          bool                `json:"isExternal"`
	IsInvalid           bool                `json:"isInvalid"`
	DidNotConnect       bool                `json:"didNotConnect"`
	IsUnsupportedScheme bool                `json:"isUnsupportedScheme"`
}

// ToMap renders the result using the same canonical field names as
// Destination.ToMap, per §6's "Serialization" requirement that both
// types share one wire form.
func (r *DestinationResult) ToMap() map[string]any {
	m := map[string]any{
		"url":                 r.URL,
		"redirects":           r.Redirects,
		"finalUrl":            r.FinalURL,
		"isSource":            r.IsSource,
		"anchors":             r.Anchors,
		"isExternal":          r.IsExternal,
		"isInvalid":           r.IsInvalid,
		"didNotConnect":       r.DidNotConnect,
		"isUnsupportedScheme": r.IsUnsupportedScheme,
	}
	if r.StatusCode != nil {
		m["statusCode"] = *r.StatusCode
	} else {
		m["statusCode"] = nil
	}
	if r.ContentType != nil {
		m["primaryType"] = r.ContentType.PrimaryType
		m["subType"] = r.ContentType.SubType
	} else {
		m["primaryType"] = nil
		m["subType"] = nil
	}
	return m
}

// FromDestinationResultMap reconstructs a DestinationResult from the
// canonical map form produced by ToMap — the reverse half of the
// round-trip §8 requires. It accepts both the native Go values ToMap
// itself produces and the generic types encoding/json decodes a map
// into (float64 for numbers, []any for slices), so it works whether
// the map came straight from ToMap or through a MarshalJSON/
// UnmarshalJSON hop.
func FromDestinationResultMap(m map[string]any) *DestinationResult {
	r := &DestinationResult{
		URL:                 asString(m["url"]),
		FinalURL:            asString(m["finalUrl"]),
		IsSource:            asBool(m["isSource"]),
		IsExternal:          asBool(m["isExternal"]),
		IsInvalid:           asBool(m["isInvalid"]),
		DidNotConnect:       asBool(m["didNotConnect"]),
		IsUnsupportedScheme: asBool(m["isUnsupportedScheme"]),
		Redirects:           asRedirects(m["redirects"]),
		Anchors:             asStrings(m["anchors"]),
	}
	if sc := m["statusCode"]; sc != nil {
		n := asInt(sc)
		r.StatusCode = &n
	}
	if pt := m["primaryType"]; pt != nil {
		r.ContentType = &ContentType{PrimaryType: asString(pt), SubType: asString(m["subType"])}
	}
	return r
}

// MarshalJSON serializes via ToMap, so the JSON form matches the
// canonical map form byte-for-byte in field names.
func (r *DestinationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON is the reverse of MarshalJSON, via FromDestinationResultMap.
func (r *DestinationResult) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = *FromDestinationResultMap(m)
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			out = append(out, asString(e))
		}
		return out
	default:
		return nil
	}
}

func asRedirects(v any) []BasicRedirectInfo {
	switch r := v.(type) {
	case []BasicRedirectInfo:
		return r
	case []any:
		out := make([]BasicRedirectInfo, 0, len(r))
		for _, e := range r {
			switch m := e.(type) {
			case map[string]any:
				out = append(out, BasicRedirectInfo{URL: asString(m["url"]), StatusCode: asInt(m["statusCode"])})
			case BasicRedirectInfo:
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
