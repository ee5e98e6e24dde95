package linkcheck

import (
	"net/url"
	"strings"
)

// normalize splits raw into its destination key (fragment removed,
// canonically serialized) and its fragment (everything after the
// first '#', preserved verbatim). If raw does not parse as a URL, ok
// is false and key holds the original text unchanged.
func normalize(raw string) (key string, fragment string, parsed *url.URL, ok bool) {
	hashIdx := strings.IndexByte(raw, '#')
	fragment = ""
	withoutFragment := raw
	if hashIdx >= 0 {
		fragment = raw[hashIdx+1:]
		withoutFragment = raw[:hashIdx]
	}

	u, err := url.Parse(withoutFragment)
	if err != nil {
		return raw, fragment, nil, false
	}
	u.Fragment = ""

	canon := canonicalize(u)
	return canon.String(), fragment, canon, true
}

// canonicalize returns a copy of u with scheme/host lower-cased and
// the scheme's default port stripped, so that two URLs differing only
// in case or an explicit default port collapse to the same destination
// key (I1).
func canonicalize(u *url.URL) *url.URL {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	if c.Host != "" {
		c.Host = strings.ToLower(stripDefaultPort(c.Scheme, c.Host))
	}
	return &c
}

func stripDefaultPort(scheme, host string) string {
	var defaultPort string
	switch scheme {
	case "http":
		defaultPort = ":80"
	case "https":
		defaultPort = ":443"
	default:
		return host
	}
	return strings.TrimSuffix(host, defaultPort)
}

// resolve resolves href against base, returning the absolute URL
// string. It mirrors net/url's ResolveReference, the same primitive
// the teacher's Crawl loop uses to resolve scraped hrefs.
func resolve(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
