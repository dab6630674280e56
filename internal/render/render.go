// Package render produces the static HTML for guide pages and the knowledge hub.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/markdown"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/taxonomy"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Site carries the site-wide values every page needs.
type Site struct {
	Name   string
	Origin string
	Lang   string
	CTA    page.CTA // used for any field a page leaves empty
}

// Renderer renders guide and hub pages. It is safe for concurrent use.
type Renderer struct {
	site  Site
	guide *template.Template
	hub   *template.Template
	md    *markdown.Renderer
}

// New parses the embedded templates.
func New(site Site) (*Renderer, error) {
	if site.Lang == "" {
		site.Lang = "en"
	}
	guide, err := template.New("guide").ParseFS(templateFS, "templates/base.html.tmpl", "templates/guide.html.tmpl")
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to parse guide template").Fatal().Build()
	}
	hub, err := template.New("hub").ParseFS(templateFS, "templates/base.html.tmpl", "templates/hub.html.tmpl")
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to parse hub template").Fatal().Build()
	}
	return &Renderer{site: site, guide: guide, hub: hub, md: markdown.NewRenderer()}, nil
}

// Guide renders one guide page with its related cards.
func (r *Renderer) Guide(w io.Writer, rec page.Record, category taxonomy.Category, related []page.Record) error {
	data, err := r.guideData(rec, category, related)
	if err != nil {
		return err
	}
	return r.execute(w, r.guide, "guide.html.tmpl", data, rec.Slug)
}

// Hub renders the knowledge hub listing every record.
func (r *Renderer) Hub(w io.Writer, records []page.Record) error {
	data := hubData{
		pageMeta: pageMeta{
			Lang:        r.site.Lang,
			SiteName:    r.site.Name,
			PageTitle:   "Knowledge Hub: Is It Gluten Free? | " + r.site.Name,
			Description: "Browse our gluten safety guides: soy sauce, teriyaki, miso, and more. Identify hidden gluten in food labels and menus.",
			Canonical:   r.site.Origin + "/knowledge-hub/",
		},
		Entries: HubEntries(records),
	}
	return r.execute(w, r.hub, "hub.html.tmpl", data, "knowledge-hub")
}

// execute renders into a buffer first so a failing template never leaves a partial page behind.
func (r *Renderer) execute(w io.Writer, t *template.Template, name string, data any, slug string) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRender, "failed to render page").
			Fatal().
			WithContext("slug", slug).
			Build()
	}
	if _, err := buf.WriteTo(w); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write page").
			WithContext("slug", slug).
			Build()
	}
	return nil
}
