package linkcheck

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultNumWorkers is the worker pool size used when Options.NumWorkers
	// is unset (§4.6: "N (configurable; default e.g. 4)").
	DefaultNumWorkers = 4
	// DefaultRequestTimeout is the per-fetch timeout used when
	// Options.RequestTimeout is unset (§5: "e.g. 20s").
	DefaultRequestTimeout = 20 * time.Second
	// DefaultUserAgent is sent on every request.
	DefaultUserAgent = "linkcheck/1.0"
)

// Options configures a crawl.
type Options struct {
	// NumWorkers is the fetch worker pool size. Zero uses DefaultNumWorkers.
	NumWorkers int
	// RequestTimeout bounds a single fetch. Zero uses DefaultRequestTimeout.
	RequestTimeout time.Duration
	// DisableExternal, when true, skips external destinations
	// entirely: they are never interned, never fetched, and never
	// appear in the crawl result. The spec's "--external" flag
	// defaults to on, so the zero value of this field (false) matches
	// that default: external destinations are fetched for status (but
	// never recursed into) unless this is explicitly set.
	DisableExternal bool
	// UserAgent is sent as the User-Agent header on every HTTP request.
	UserAgent string
	// Context governs crawl-wide cancellation. Defaults to
	// context.Background.
	Context context.Context
	// Client overrides the HTTP client used by fetch workers. Callers
	// that leave it nil get a client honoring standard proxy
	// environment variables via http.ProxyFromEnvironment (§6).
	Client *http.Client
}

func (o Options) withDefaults() Options {
	out := o
	if out.NumWorkers <= 0 {
		out.NumWorkers = DefaultNumWorkers
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = DefaultRequestTimeout
	}
	if out.UserAgent == "" {
		out.UserAgent = DefaultUserAgent
	}
	if out.Context == nil {
		out.Context = context.Background()
	}
	if out.Client == nil {
		out.Client = &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		}
	}
	// followRedirects (worker.go) walks the redirect chain itself so it
	// can record each hop's status code; net/http's own following must
	// be disabled on whatever client the caller supplied.
	client := *out.Client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if client.Timeout == 0 {
		client.Timeout = out.RequestTimeout
	}
	out.Client = &client
	return out
}
