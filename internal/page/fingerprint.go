package page

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// DateLayout is the meta.updated_at format.
const DateLayout = "2006-01-02"

const (
	keyMeta        = "meta"
	keySections    = "sections"
	keyUpdatedAt   = "updated_at"
	keyFingerprint = "fingerprint"
)

// ComputeFingerprint hashes a raw record. The meta block is excluded; every
// other field is serialized as YAML and section bodies form the hashed body.
func ComputeFingerprint(raw map[string]any) (string, error) {
	fields := make(map[string]any, len(raw))
	var bodies []string
	for k, v := range raw {
		switch k {
		case keyMeta:
			continue
		case keySections:
			if list, ok := v.([]any); ok {
				for _, s := range list {
					if m, ok := s.(map[string]any); ok {
						if body, ok := m["body"].(string); ok {
							bodies = append(bodies, body)
						}
					}
				}
			}
		}
		fields[k] = v
	}

	var fm string
	if len(fields) > 0 {
		out, err := yaml.Marshal(fields)
		if err != nil {
			return "", ferrors.WrapError(err, ferrors.CategoryInternal, "failed to serialize record for fingerprint").Build()
		}
		fm = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, strings.Join(bodies, "\n\n")), nil
}

// UpsertFingerprint stores the record's fingerprint in meta. When it differs
// from the stored one, meta.updated_at is set to now (UTC, YYYY-MM-DD).
func UpsertFingerprint(raw map[string]any, now time.Time) (fingerprint string, changed bool, err error) {
	fingerprint, err = ComputeFingerprint(raw)
	if err != nil {
		return "", false, err
	}
	meta, _ := raw[keyMeta].(map[string]any)
	if meta == nil {
		meta = make(map[string]any)
		raw[keyMeta] = meta
	}
	old, _ := meta[keyFingerprint].(string)
	if strings.TrimSpace(old) != fingerprint {
		meta[keyFingerprint] = fingerprint
		meta[keyUpdatedAt] = now.UTC().Format(DateLayout)
		changed = true
	}
	return fingerprint, changed, nil
}

// StoredFingerprint returns meta.fingerprint of a raw record, if any.
func StoredFingerprint(raw map[string]any) string {
	meta, _ := raw[keyMeta].(map[string]any)
	fp, _ := meta[keyFingerprint].(string)
	return fp
}

// ToRaw converts a typed document into the generic form used for hashing and rewriting.
func ToRaw(doc *Document) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode page record").Build()
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to decode page record").Build()
	}
	return raw, nil
}
