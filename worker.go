package linkcheck

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
)

var errTooManyRedirects = errors.New("linkcheck: too many redirects")

// supportedSchemes are the only schemes a fetch worker will dispatch a
// request for (§4.5 step 1).
var supportedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"file":  true,
}

// maxRedirects bounds a single task's redirect chain so a malformed
// server (or a redirect loop) cannot hang a worker forever.
const maxRedirects = 20

// maxBodySize caps how much of a response body a worker will read,
// following the teacher-adjacent cametumbling-web-crawler httpclient's
// io.LimitReader pattern.
const maxBodySize = 4 * 1024 * 1024

// Task is one unit of dispatch work: fetch url, and if shouldParse,
// extract its outbound links and anchors.
type Task struct {
	URL         string
	ShouldParse bool
}

// RawLink is an (origin, href) pair exactly as scraped from a page,
// before the coordinator resolves href against the page's final URL
// and interns the target (§4.4, §4.7.d).
type RawLink struct {
	Origin string
	Href   string
}

// WorkResult is what a fetch worker sends back on the results channel:
// the DestinationResult for the dispatched URL, plus any outbound
// links discovered while parsing it.
type WorkResult struct {
	Result        *DestinationResult
	OutboundLinks []RawLink
}

// fetchOne executes task and produces its WorkResult. It never panics
// outward: the pool recovers worker panics and reports them as
// TransportFailure for the task's URL (§7).
func fetchOne(ctx context.Context, client *http.Client, userAgent string, task Task) *WorkResult {
	u, err := url.Parse(task.URL)
	if err != nil || !supportedSchemes[u.Scheme] {
		return &WorkResult{Result: &DestinationResult{
			URL:                 task.URL,
			IsUnsupportedScheme: true,
		}}
	}

	if u.Scheme == "file" {
		return fetchFile(task, u)
	}
	return fetchHTTPTask(ctx, client, userAgent, task)
}

func fetchFile(task Task, u *url.URL) *WorkResult {
	path := u.Path
	f, err := os.Open(path)
	if err != nil {
		return &WorkResult{Result: &DestinationResult{
			URL:           task.URL,
			DidNotConnect: true,
		}}
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxBodySize))
	if err != nil {
		return &WorkResult{Result: &DestinationResult{
			URL:           task.URL,
			DidNotConnect: true,
		}}
	}

	status := 200
	ct := contentTypeFromPath(path, body)
	result := &DestinationResult{
		URL:         task.URL,
		StatusCode:  &status,
		ContentType: ct,
		FinalURL:    task.URL,
	}
	links, anchors := parseIfAppropriate(task.ShouldParse, ct, body, result)
	result.Anchors = anchors
	return &WorkResult{Result: result, OutboundLinks: links}
}

func contentTypeFromPath(path string, body []byte) *ContentType {
	switch {
	case strings.HasSuffix(path, ".html") || strings.HasSuffix(path, ".htm"):
		return &ContentType{PrimaryType: "text", SubType: "html"}
	case strings.HasSuffix(path, ".css"):
		return &ContentType{PrimaryType: "text", SubType: "css"}
	default:
		return parseContentType(http.DetectContentType(body))
	}
}

func fetchHTTPTask(ctx context.Context, client *http.Client, userAgent string, task Task) *WorkResult {
	redirects, finalURL, resp, err := followRedirects(ctx, client, userAgent, task.URL)
	if err != nil {
		return &WorkResult{Result: &DestinationResult{
			URL:           task.URL,
			DidNotConnect: true,
		}}
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	ct := parseContentType(resp.Header.Get("Content-Type"))
	result := &DestinationResult{
		URL:         task.URL,
		StatusCode:  &status,
		ContentType: ct,
		Redirects:   redirects,
		FinalURL:    finalURL,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		// A body read failure after a successful status exchange still
		// counts as a successful fetch: the destination responded, it
		// just couldn't be read. The body is not parsed, so isSource
		// stays false and anchors stay nil.
		result.Anchors = nil
		return &WorkResult{Result: result}
	}

	links, anchors := parseIfAppropriate(task.ShouldParse, ct, body, result)
	result.Anchors = anchors
	return &WorkResult{Result: result, OutboundLinks: links}
}

// parseIfAppropriate implements §4.5 steps 5-6: parse only when asked
// to and the content-type is parseable; otherwise leave isSource false
// and anchors empty. A parse error degrades to isSource=true with
// empty anchors rather than propagating, per the "Failure semantics"
// note in §4.7.
func parseIfAppropriate(shouldParse bool, ct *ContentType, body []byte, result *DestinationResult) ([]RawLink, []string) {
	if !shouldParse || !IsParseable(ct) {
		return nil, nil
	}

	var (
		hrefs   []string
		anchors []string
		err     error
	)
	if ct.SubType == "html" {
		hrefs, anchors, err = ParseHTML(body)
	} else {
		hrefs, err = ParseCSS(body)
	}

	result.IsSource = true
	if err != nil {
		return nil, nil
	}

	links := make([]RawLink, 0, len(hrefs))
	for _, href := range hrefs {
		links = append(links, RawLink{Origin: result.URL, Href: href})
	}
	if anchors == nil {
		anchors = []string{}
	}
	return links, anchors
}

func parseContentType(header string) *ContentType {
	if header == "" {
		return &ContentType{}
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		mediaType = header
	}
	parts := strings.SplitN(mediaType, "/", 2)
	if len(parts) != 2 {
		return &ContentType{PrimaryType: strings.TrimSpace(mediaType)}
	}
	return &ContentType{PrimaryType: strings.TrimSpace(parts[0]), SubType: strings.TrimSpace(parts[1])}
}

// followRedirects issues the request for startURL and manually follows
// any redirect chain, recording each hop, so the coordinator receives
// an atomic result for the whole chain (§4.7's "tie-breaks" note).
// client must have CheckRedirect set to stop net/http's own following
// (see Options.withDefaults).
func followRedirects(ctx context.Context, client *http.Client, userAgent, startURL string) ([]BasicRedirectInfo, string, *http.Response, error) {
	var redirects []BasicRedirectInfo
	current := startURL

	for i := 0; i < maxRedirects; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, "", nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			return nil, "", nil, err
		}

		if !isRedirectStatus(resp.StatusCode) {
			return redirects, current, resp, nil
		}

		loc := resp.Header.Get("Location")
		resp.Body.Close()
		if loc == "" {
			return redirects, current, resp, nil
		}

		next, err := resolve(req.URL, loc)
		if err != nil {
			return nil, "", nil, err
		}
		redirects = append(redirects, BasicRedirectInfo{URL: current, StatusCode: resp.StatusCode})
		current = next
	}

	return nil, "", nil, errTooManyRedirects
}

func isRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
