package linkverify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// Link is an anchor extracted from rendered HTML.
type Link struct {
	URL        string // href as written
	Text       string // anchor text
	IsInternal bool   // relative, or same host as the site origin
}

// ExtractLinks reads an HTML file and returns its anchors.
func ExtractLinks(htmlPath string, origin *url.URL) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open HTML file").
			WithContext("html_path", htmlPath).
			Build()
	}
	defer func() { _ = file.Close() }()

	return ExtractLinksFromReader(file, origin)
}

// ExtractLinksFromReader parses r and returns every <a href> in document order.
func ExtractLinksFromReader(r io.Reader, origin *url.URL) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				links = append(links, Link{
					URL:        href,
					Text:       extractText(n),
					IsInternal: isInternalLink(href, origin),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// TargetSlug returns the guide slug an internal link points at. Only
// single-segment paths of the form /<slug>/ qualify.
func TargetSlug(link Link, origin *url.URL) (string, bool) {
	if !link.IsInternal {
		return "", false
	}
	u, err := url.Parse(link.URL)
	if err != nil {
		return "", false
	}
	if u.Host != "" && (origin == nil || u.Host != origin.Host) {
		return "", false
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") || !strings.HasSuffix(p, "/") || len(p) < 3 {
		return "", false
	}
	slug := strings.Trim(p, "/")
	if strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := extractText(c); s != "" {
			if text.Len() > 0 {
				text.WriteByte(' ')
			}
			text.WriteString(s)
		}
	}
	return text.String()
}

func isInternalLink(linkURL string, origin *url.URL) bool {
	for _, p := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(linkURL, p) {
			return false
		}
	}
	if strings.HasPrefix(linkURL, "#") {
		return false
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return true
	}
	return origin != nil && u.Host == origin.Host
}
