// Package history keeps an append-only ledger of build and content events
// and projects it into per-build summaries.
package history

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// Event type names stored in the ledger.
const (
	TypeBuildStarted   = "BuildStarted"
	TypeBuildCompleted = "BuildCompleted"
	TypeBuildFailed    = "BuildFailed"
	TypePagesRefreshed = "PagesRefreshed"
	TypePagesSeeded    = "PagesSeeded"
)

// Event is one ledger row.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   json.RawMessage
	Metadata  map[string]string
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "failed to decode event payload").
			WithContext("event_type", e.Type).
			WithContext("build_id", e.BuildID).
			Build()
	}
	return nil
}

// NewBuildID returns a fresh identifier for a build or content run.
func NewBuildID() string {
	return uuid.NewString()
}

// NewEvent marshals payload into an Event stamped with at.
func NewEvent(buildID, eventType string, payload any, at time.Time) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, ferrors.WrapError(err, ferrors.CategoryHistory, "failed to marshal event payload").
			WithContext("event_type", eventType).
			WithContext("build_id", buildID).
			Build()
	}
	return Event{
		BuildID:   buildID,
		Type:      eventType,
		Timestamp: at,
		Payload:   raw,
	}, nil
}

// BuildStarted is recorded when the pipeline begins.
type BuildStarted struct {
	Strategy  string `json:"strategy"`
	PagesDir  string `json:"pages_dir"`
	OutputDir string `json:"output_dir"`
}

// BuildCompleted is recorded after every artifact has been written.
type BuildCompleted struct {
	Pages       int            `json:"pages"`
	Categories  map[string]int `json:"categories,omitempty"`
	SitemapURLs int            `json:"sitemap_urls"`
	DurationMS  int64          `json:"duration_ms"`
}

// BuildFailed is recorded when a stage aborts the build.
type BuildFailed struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// PagesRefreshed is recorded at the end of a refresh run.
type PagesRefreshed struct {
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	Updated   []string `json:"updated,omitempty"`
	Unchanged []string `json:"unchanged,omitempty"`
	Failed    []string `json:"failed,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
}

// PagesSeeded is recorded at the end of a seed run.
type PagesSeeded struct {
	Created []string `json:"created,omitempty"`
}
