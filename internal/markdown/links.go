package markdown

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// IsInternal reports whether the destination is a site-relative path.
func (l Link) IsInternal() bool {
	return len(l.Destination) > 1 && l.Destination[0] == '/' && l.Destination[1] != '/'
}
