package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func newTestClient() *http.Client {
	c := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return c
}

func TestFetchOneUnsupportedScheme(t *testing.T) {
	wr := fetchOne(context.Background(), newTestClient(), "linkcheck-test", Task{URL: "mailto:x@y.com"})
	if !wr.Result.IsUnsupportedScheme {
		t.Fatalf("expected IsUnsupportedScheme, got %+v", wr.Result)
	}
}

func TestFetchOneDidNotConnect(t *testing.T) {
	wr := fetchOne(context.Background(), newTestClient(), "linkcheck-test", Task{URL: "http://127.0.0.1:1/nope"})
	if !wr.Result.DidNotConnect {
		t.Fatalf("expected DidNotConnect, got %+v", wr.Result)
	}
}

func TestFetchOneOKAndParses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<a href="/b">b</a><div id="top"></div>`))
	}))
	defer srv.Close()

	wr := fetchOne(context.Background(), newTestClient(), "linkcheck-test", Task{URL: srv.URL, ShouldParse: true})
	r := wr.Result
	if r.StatusCode == nil || *r.StatusCode != 200 {
		t.Fatalf("StatusCode = %v, want 200", r.StatusCode)
	}
	if !r.IsSource {
		t.Fatal("expected IsSource")
	}
	if len(r.Anchors) != 1 || r.Anchors[0] != "top" {
		t.Errorf("Anchors = %v", r.Anchors)
	}
	if len(wr.OutboundLinks) != 1 || wr.OutboundLinks[0].Href != "/b" {
		t.Errorf("OutboundLinks = %v", wr.OutboundLinks)
	}
}

func TestFetchOneNotParsedWhenShouldParseFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<a href="/b">b</a>`))
	}))
	defer srv.Close()

	wr := fetchOne(context.Background(), newTestClient(), "linkcheck-test", Task{URL: srv.URL, ShouldParse: false})
	if wr.Result.IsSource {
		t.Fatal("expected IsSource false when shouldParse is false")
	}
	if len(wr.OutboundLinks) != 0 {
		t.Errorf("expected no outbound links, got %v", wr.OutboundLinks)
	}
}

func TestFetchOneFollowsRedirectsAndRecordsHops(t *testing.T) {
	var finalServerURL string
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	finalServerURL = srv.URL

	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, finalServerURL+"/end", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("done"))
	})

	wr := fetchOne(context.Background(), newTestClient(), "linkcheck-test", Task{URL: srv.URL + "/start"})
	r := wr.Result
	if r.StatusCode == nil || *r.StatusCode != 200 {
		t.Fatalf("StatusCode = %v, want 200", r.StatusCode)
	}
	if r.FinalURL != srv.URL+"/end" {
		t.Errorf("FinalURL = %q, want %q", r.FinalURL, srv.URL+"/end")
	}
	if len(r.Redirects) != 1 || r.Redirects[0].StatusCode != http.StatusMovedPermanently {
		t.Errorf("Redirects = %+v", r.Redirects)
	}
}

func TestFetchOneFileScheme(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "page-*.html")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`<a href="other.html">x</a><div id="top"></div>`); err != nil {
		t.Fatal(err)
	}
	f.Close()

	wr := fetchOne(context.Background(), newTestClient(), "linkcheck-test", Task{URL: "file://" + f.Name(), ShouldParse: true})
	r := wr.Result
	if r.DidNotConnect {
		t.Fatalf("expected file to be read, got DidNotConnect: %+v", r)
	}
	if r.StatusCode == nil || *r.StatusCode != 200 {
		t.Fatalf("StatusCode = %v, want 200", r.StatusCode)
	}
	if !r.IsSource || len(r.Anchors) != 1 || r.Anchors[0] != "top" {
		t.Errorf("expected parsed source with anchor, got %+v", r)
	}
}

func TestFetchOneFileSchemeMissing(t *testing.T) {
	wr := fetchOne(context.Background(), newTestClient(), "linkcheck-test", Task{URL: "file:///no/such/file.html"})
	if !wr.Result.DidNotConnect {
		t.Fatalf("expected DidNotConnect for missing file, got %+v", wr.Result)
	}
}

func TestFetchOneHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	wr := fetchOne(context.Background(), newTestClient(), "linkcheck-test", Task{URL: srv.URL})
	r := wr.Result
	if r.StatusCode == nil || *r.StatusCode != 404 {
		t.Fatalf("StatusCode = %v, want 404", r.StatusCode)
	}
	if r.DidNotConnect {
		t.Fatal("a 404 is a reachable destination, not a transport failure")
	}
}
