package page

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/gridscan/internal/model"
)

// Heading element names collected into metadata, in document order.
var headingElements = map[string]bool{
	"h1": true,
	"h2": true,
	"h3": true,
	"h4": true,
	"h5": true,
	"h6": true,
}

// ParseResult contains the information extracted from an HTML page.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Metadata is the structured metadata stored on scrape reports.
	Metadata *model.PageMetadata
}

// Parse extracts metadata from HTML source.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because:
//  1. It correctly handles malformed HTML common on the web
//  2. It provides a proper DOM-like structure
//  3. It's more maintainable than complex regex patterns
//
// Parse never fails on malformed markup; the html package recovers and
// produces a best-effort tree, which matches what the browser rendered.
func Parse(source string) (*ParseResult, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Metadata: &model.PageMetadata{
			MetaTags: make(map[string]string),
		},
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "title":
				if result.Title == "" {
					result.Title = strings.TrimSpace(textContent(n))
				}
			case n.Data == "meta":
				name := attrValue(n, "name")
				if name == "" {
					name = attrValue(n, "property")
				}
				content := attrValue(n, "content")
				if name != "" && content != "" {
					result.Metadata.MetaTags[name] = content
					if name == "description" {
						result.Metadata.Description = content
					}
				}
			case headingElements[n.Data]:
				if text := strings.TrimSpace(textContent(n)); text != "" {
					result.Metadata.Headings = append(result.Metadata.Headings, text)
				}
			case n.Data == "a":
				if attrValue(n, "href") != "" {
					result.Metadata.LinkCount++
				}
			case n.Data == "img":
				if attrValue(n, "src") != "" {
					result.Metadata.ImageCount++
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// attrValue returns the value of the named attribute, or empty string.
func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// textContent returns the concatenated text of a node's subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
