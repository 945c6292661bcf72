package normalize

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Document is what ParseHTML extracts from markup.
type Document struct {
	// Text is the visible text, excluding script and style bodies.
	Text string
	// Links are anchor and form targets, resolved against the base URL.
	Links []string
	// Resources are URLs the page loads: scripts, images, frames, stylesheets, media.
	Resources []string
}

// resourceAttrs lists the attributes that make an element load a resource.
var resourceAttrs = map[string][]string{
	"script": {"src"},
	"img":    {"src", "srcset"},
	"iframe": {"src"},
	"frame":  {"src"},
	"link":   {"href"},
	"source": {"src", "srcset"},
	"embed":  {"src"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"object": {"data"},
	"track":  {"src"},
}

// ParseHTML walks an HTML document and collects its text, links and resources.
// Malformed markup is tolerated; the parser never fails on string input.
func ParseHTML(content, baseURL string) Document {
	doc := Document{Links: make([]string, 0), Resources: make([]string, 0)}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		doc.Text = content
		return doc
	}

	var base *url.URL
	if baseURL != "" {
		if repaired, ok := RepairURL(baseURL); ok {
			base, _ = url.Parse(repaired)
		}
	}

	links := newOrderedSet()
	resources := newOrderedSet()
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				collectResources(n, base, resources)
				return
			case "a", "area":
				if href := resolve(base, attr(n, "href")); href != "" {
					links.add(href)
				}
			case "form":
				if action := resolve(base, attr(n, "action")); action != "" {
					links.add(action)
				}
			case "br", "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				text.WriteString("\n")
			}
			collectResources(n, base, resources)
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc.Text = text.String()
	doc.Links = links.items
	doc.Resources = resources.items
	return doc
}

func collectResources(n *html.Node, base *url.URL, set *orderedSet) {
	names, ok := resourceAttrs[n.Data]
	if !ok {
		return
	}
	if n.Data == "link" && !loadsResource(attr(n, "rel")) {
		return
	}
	for _, name := range names {
		value := attr(n, name)
		if value == "" {
			continue
		}
		if name == "srcset" {
			for _, candidate := range strings.Split(value, ",") {
				fields := strings.Fields(candidate)
				if len(fields) > 0 {
					if u := resolve(base, fields[0]); u != "" {
						set.add(u)
					}
				}
			}
			continue
		}
		if u := resolve(base, value); u != "" {
			set.add(u)
		}
	}
}

// loadsResource reports whether a <link rel> value makes the browser fetch the target.
func loadsResource(rel string) bool {
	for _, r := range strings.Fields(strings.ToLower(rel)) {
		switch r {
		case "stylesheet", "icon", "preload", "prefetch", "preconnect", "dns-prefetch", "modulepreload", "manifest":
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// resolve turns a possibly relative reference into a canonical absolute URL.
func resolve(base *url.URL, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ""
	}
	lower := strings.ToLower(ref)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "blob:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	if base != nil && !strings.HasPrefix(ref, "//") && !strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return ""
		}
		ref = base.ResolveReference(u).String()
	} else if base == nil && !strings.HasPrefix(ref, "//") && !strings.Contains(ref, "://") {
		// Relative references cannot be resolved without a page URL.
		return ""
	}

	canonical, ok := RepairURL(ref)
	if !ok {
		return ""
	}
	return canonical
}
