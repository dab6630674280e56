// Package sitemap writes sitemap.xml for the generated site.
package sitemap

import (
	"encoding/xml"
	"io"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

// Namespace is the sitemaps.org protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// DateLayout is the lastmod format.
const DateLayout = "2006-01-02"

type URL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Build lists the static site paths followed by one entry per record. A record's
// canonical URL wins over origin/slug/, and its meta.updated_at over today.
func Build(origin string, staticPaths []string, records []page.Record, today string) URLSet {
	origin = strings.TrimRight(origin, "/")
	set := URLSet{Xmlns: Namespace, URLs: make([]URL, 0, len(staticPaths)+len(records))}
	for _, p := range staticPaths {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		set.URLs = append(set.URLs, URL{Loc: origin + p, LastMod: today})
	}
	for _, r := range records {
		u := URL{Loc: origin + "/" + r.Slug + "/", LastMod: today}
		if r.Doc != nil {
			if r.Doc.Canonical != "" {
				u.Loc = r.Doc.Canonical
			}
			if r.Doc.Meta.UpdatedAt != "" {
				u.LastMod = r.Doc.Meta.UpdatedAt
			}
		}
		set.URLs = append(set.URLs, u)
	}
	return set
}

// Write encodes the set with an XML declaration and two-space indentation.
func Write(w io.Writer, set URLSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
