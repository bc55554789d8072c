package model

// PageMetadata holds structured metadata extracted from a page's HTML
// source. It complements the raw fields on ScrapeReport (title,
// headline) with counts and tags useful for quick page fingerprinting.
type PageMetadata struct {
	// Description is the content of the <meta name="description"> tag.
	Description string `json:"description,omitempty"`

	// Headings contains the text of all heading elements (h1-h6) in
	// document order.
	Headings []string `json:"headings,omitempty"`

	// LinkCount is the number of anchor elements with an href.
	LinkCount int `json:"link_count"`

	// ImageCount is the number of <img> elements with a src.
	ImageCount int `json:"image_count"`

	// MetaTags maps meta tag names (or properties) to their content.
	// Only tags with both a name/property and content are recorded.
	MetaTags map[string]string `json:"meta_tags,omitempty"`
}

// FirstHeading returns the first heading on the page, or the empty
// string when the page has none.
func (m *PageMetadata) FirstHeading() string {
	if m == nil || len(m.Headings) == 0 {
		return ""
	}
	return m.Headings[0]
}
