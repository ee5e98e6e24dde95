package linkcheck

import (
	"bytes"
	"regexp"

	"golang.org/x/net/html"
)

// linkAttrsByTag lists, for each HTML element that can carry an
// outbound reference, which attribute holds it. This generalizes the
// teacher's scrape (crawl.go), which only ever looked at a[href].
var linkAttrsByTag = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"frame":  "src",
	"iframe": "src",
}

// IsParseable reports whether ct is an HTML or CSS content type, the
// only two bodies the parser reads (§4.4).
func IsParseable(ct *ContentType) bool {
	if ct == nil {
		return false
	}
	if ct.PrimaryType != "text" {
		return false
	}
	return ct.SubType == "html" || ct.SubType == "css"
}

// ParseHTML extracts every outbound href/src found on linkable
// elements, plus every declared anchor name (id attributes and
// <a name="...">). Invalid HTML may still yield partial results,
// exactly as the teacher's scrape documents: the underlying
// html.Parse is forgiving and will do its best with malformed input.
func ParseHTML(body []byte) (links []string, anchors []string, err error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrsByTag[n.Data]; ok {
				for _, a := range n.Attr {
					if a.Key == attr {
						links = append(links, a.Val)
						break
					}
				}
			}
			for _, a := range n.Attr {
				switch {
				case a.Key == "id" && a.Val != "":
					anchors = append(anchors, a.Val)
				case n.Data == "a" && a.Key == "name" && a.Val != "":
					anchors = append(anchors, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, anchors, nil
}

// cssURLRx matches url(...) references, with or without quotes.
var cssURLRx = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// cssImportRx matches @import targets, either a bare string or a
// url(...) form (which cssURLRx also catches, so this only adds the
// bare-string case).
var cssImportRx = regexp.MustCompile(`@import\s+['"]([^'"]+)['"]`)

// ParseCSS extracts url(...) and @import targets from a stylesheet.
// No CSS tokenizing library appears in the retrieved corpus (goquery
// and cascadia parse and select over HTML trees, not raw CSS text), so
// this is a small regexp scanner rather than a hand-rolled tokenizer,
// matching the scope of work the regexp-based anchor scan in the
// adhocteam-linkcheck reference does for HTML ids.
func ParseCSS(body []byte) (links []string, err error) {
	for _, m := range cssImportRx.FindAllSubmatch(body, -1) {
		links = append(links, string(m[1]))
	}
	for _, m := range cssURLRx.FindAllSubmatch(body, -1) {
		links = append(links, string(m[1]))
	}
	return links, nil
}
