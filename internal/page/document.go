package page

// Verdict statuses recognised by the renderer and the refresh normalizer.
const (
	StatusSafe    = "safe"
	StatusCaution = "caution"
	StatusUnsafe  = "unsafe"
)

// Document is the typed view of a page record file. The renderer receives it
// as the record's full data; the selector never looks inside it.
type Document struct {
	SchemaVersion    int          `json:"schema_version"`
	TopicKey         string       `json:"topic_key"`
	Locale           string       `json:"locale,omitempty"`
	Canonical        string       `json:"canonical,omitempty"`
	Slug             string       `json:"slug"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	Heading          string       `json:"heading,omitempty"`
	Intro            string       `json:"intro,omitempty"`
	Verdict          Verdict      `json:"verdict"`
	Disclaimer       string       `json:"disclaimer"`
	Meta             Meta         `json:"meta"`
	Sections         []Section    `json:"sections,omitempty"`
	Ingredients      Ingredients  `json:"ingredients,omitzero"`
	WaiterScript     WaiterScript `json:"waiter_script,omitzero"`
	SafeAlternatives []string     `json:"safe_alternatives,omitempty"`
	KnownGFBrands    []string     `json:"known_gf_brands,omitempty"`
	FAQ              []FAQ        `json:"faq,omitempty"`
	CTA              *CTA         `json:"cta,omitempty"`
}

type Verdict struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

// Meta carries bookkeeping that is not rendered.
type Meta struct {
	UpdatedAt   string `json:"updated_at,omitempty"` // YYYY-MM-DD
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Section is a titled block whose body is Markdown.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Ingredients struct {
	Risk []string `json:"risk,omitempty"`
	Safe []string `json:"safe,omitempty"`
}

type WaiterScript struct {
	Preview string `json:"preview,omitempty"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type CTA struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Href  string `json:"href,omitempty"`
	Label string `json:"label,omitempty"`
}
