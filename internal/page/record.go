// Package page loads guide page records from the content directory.
package page

// Record is one guide page as seen by categorization and related-page selection.
// Slug, Title, TopicKey and Description are derived from Doc at load time and
// are never empty-checked: absent fields are "".
type Record struct {
	Slug        string
	Title       string
	TopicKey    string
	Description string
	Path        string // source file
	Doc         *Document
}

// NewRecord derives the record fields from a document. stem is the file name
// without extension and stands in for a missing slug.
func NewRecord(doc *Document, stem, path string) Record {
	if doc == nil {
		doc = &Document{}
	}
	r := Record{
		Slug:        doc.Slug,
		Title:       doc.Heading,
		TopicKey:    doc.TopicKey,
		Description: doc.Verdict.Summary,
		Path:        path,
		Doc:         doc,
	}
	if r.Slug == "" {
		r.Slug = stem
	}
	if r.Title == "" {
		r.Title = doc.Title
	}
	if r.Description == "" {
		r.Description = doc.Description
	}
	return r
}

// Slugs returns the slugs of records in order.
func Slugs(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Slug
	}
	return out
}

// IndexOf returns the corpus position of slug, or -1.
func IndexOf(records []Record, slug string) int {
	for i, r := range records {
		if r.Slug == slug {
			return i
		}
	}
	return -1
}
