package linkcheck

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func statusPtr(n int) *int { return &n }

func TestIsBroken(t *testing.T) {
	cases := []struct {
		name string
		d    Destination
		want bool
	}{
		{"ok 200", Destination{StatusCode: statusPtr(200)}, false},
		{"404", Destination{StatusCode: statusPtr(404)}, true},
		{"did not connect", Destination{DidNotConnect: true}, true},
		{"invalid", Destination{IsInvalid: true}, true},
		{"unsupported scheme never broken", Destination{IsUnsupportedScheme: true, StatusCode: nil}, false},
		{"unsupported scheme overrides invalid-looking state", Destination{IsUnsupportedScheme: true, DidNotConnect: true}, false},
		{"never tried", Destination{}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.d.IsBroken(); got != c.want {
				t.Errorf("IsBroken() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestWasTriedAndChecked(t *testing.T) {
	d := &Destination{}
	if d.wasTried() || d.isChecked() {
		t.Fatal("fresh destination should be neither tried nor checked")
	}

	d.DidNotConnect = true
	if !d.wasTried() || !d.isChecked() {
		t.Fatal("didNotConnect destination should be tried and checked")
	}

	invalid := &Destination{IsInvalid: true}
	if invalid.wasTried() {
		t.Fatal("invalid destination was never dispatched, so wasTried should be false")
	}
	if !invalid.isChecked() {
		t.Fatal("invalid destination is still checked (skipped for cause)")
	}
}

func TestDestinationToMap(t *testing.T) {
	d := newDestination("http://example.com/", nil, false)
	d.StatusCode = statusPtr(200)
	d.ContentType = &ContentType{PrimaryType: "text", SubType: "html"}
	d.FinalURL = "http://example.com/"
	d.IsSource = true
	d.Anchors = []string{"top"}

	m := d.ToMap()
	want := map[string]any{
		"url":                 "http://example.com/",
		"statusCode":          200,
		"primaryType":         "text",
		"subType":             "html",
		"redirects":           []BasicRedirectInfo(nil),
		"finalUrl":            "http://example.com/",
		"isExternal":          false,
		"isSource":            true,
		"anchors":             []string{"top"},
		"isInvalid":           false,
		"didNotConnect":       false,
		"isUnsupportedScheme": false,
	}
	for k, wantV := range want {
		gotV, ok := m[k]
		if !ok {
			t.Fatalf("missing key %q in map form", k)
		}
		switch k {
		case "redirects":
			if diff := cmp.Diff(wantV, gotV); diff != "" {
				t.Errorf("map[%q] mismatch (-want +got):\n%s", k, diff)
			}
		case "anchors":
			if diff := cmp.Diff(wantV, gotV); diff != "" {
				t.Errorf("map[%q] mismatch (-want +got):\n%s", k, diff)
			}
		default:
			if gotV != wantV {
				t.Errorf("map[%q] = %v, want %v", k, gotV, wantV)
			}
		}
	}
}

// TestDestinationResultRoundTrip exercises the identity spec §8
// requires: DestinationResult -> map -> DestinationResult, both
// directly via ToMap/FromDestinationResultMap and through a JSON hop
// via MarshalJSON/UnmarshalJSON.
func TestDestinationResultRoundTrip(t *testing.T) {
	status := 301
	original := &DestinationResult{
		URL:                 "http://example.com/page",
		StatusCode:          &status,
		ContentType:         &ContentType{PrimaryType: "text", SubType: "html"},
		Redirects:           []BasicRedirectInfo{{URL: "http://example.com/old", StatusCode: 301}},
		FinalURL:            "http://example.com/page",
		IsSource:            true,
		Anchors:             []string{"top", "bottom"},
		IsExternal:          true,
		IsInvalid:           false,
		DidNotConnect:       false,
		IsUnsupportedScheme: false,
	}

	direct := FromDestinationResultMap(original.ToMap())
	if diff := cmp.Diff(original, direct); diff != "" {
		t.Errorf("ToMap/FromDestinationResultMap round-trip mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var viaJSON DestinationResult
	if err := json.Unmarshal(data, &viaJSON); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if diff := cmp.Diff(original, &viaJSON); diff != "" {
		t.Errorf("JSON round-trip mismatch (-want +got):\n%s", diff)
	}
}

// TestDestinationResultRoundTripNilFields covers the all-unset /
// not-yet-tried shape, where StatusCode and ContentType are nil and
// the slice fields are empty.
func TestDestinationResultRoundTripNilFields(t *testing.T) {
	original := &DestinationResult{URL: "mailto:x@y", IsUnsupportedScheme: true}

	direct := FromDestinationResultMap(original.ToMap())
	if direct.StatusCode != nil {
		t.Errorf("StatusCode = %v, want nil", direct.StatusCode)
	}
	if direct.ContentType != nil {
		t.Errorf("ContentType = %v, want nil", direct.ContentType)
	}
	if !direct.IsUnsupportedScheme || direct.URL != original.URL {
		t.Errorf("direct = %+v, want URL/IsUnsupportedScheme preserved", direct)
	}
}

func TestFragmentsUnion(t *testing.T) {
	s := NewStore()
	s.Intern("http://example.com/page#one")
	s.Intern("http://example.com/page#two")
	s.Intern("http://example.com/page#one")

	d, ok := s.Lookup("http://example.com/page")
	if !ok {
		t.Fatal("expected destination to be interned")
	}
	got := d.sortedFragments()
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("sortedFragments() = %v, want [one two]", got)
	}
}
