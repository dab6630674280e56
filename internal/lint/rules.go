package lint

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

const minDisclaimerLength = 10

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// requiredKeys must be present at the top level of every record.
var requiredKeys = []string{"schema_version", "topic_key", "slug", "title", "verdict", "disclaimer"}

// ParseRule reports records that are not a JSON object.
type ParseRule struct{}

func (r *ParseRule) Name() string { return "page-json" }

func (r *ParseRule) Check(f *File) []Issue {
	if f.ParseErr == nil {
		return nil
	}
	return []Issue{{
		FilePath:    f.Path,
		Severity:    SeverityError,
		Rule:        r.Name(),
		Message:     "Malformed page record",
		Explanation: f.ParseErr.Error(),
		Fix:         "Correct the JSON syntax; the record must be a single object",
	}}
}

// RequiredFieldsRule reports missing top-level keys.
type RequiredFieldsRule struct{}

func (r *RequiredFieldsRule) Name() string { return "required-fields" }

func (r *RequiredFieldsRule) Check(f *File) []Issue {
	if f.Raw == nil {
		return nil
	}
	var issues []Issue
	for _, k := range requiredKeys {
		if _, ok := f.Raw[k]; !ok {
			issues = append(issues, Issue{
				FilePath: f.Path,
				Severity: SeverityError,
				Rule:     r.Name(),
				Message:  fmt.Sprintf("Missing '%s'", k),
				Explanation: `Every page record needs these top-level keys:
  ` + strings.Join(requiredKeys, ", "),
			})
		}
	}
	return issues
}

// SlugRule checks that the slug matches the file name and uses only
// lowercase letters, digits and dashes.
type SlugRule struct{}

func (r *SlugRule) Name() string { return "slug-conventions" }

func (r *SlugRule) Check(f *File) []Issue {
	if f.Raw == nil {
		return nil
	}
	slug, ok := f.Raw["slug"].(string)
	if !ok {
		if _, present := f.Raw["slug"]; present {
			return []Issue{{FilePath: f.Path, Severity: SeverityError, Rule: r.Name(), Message: "slug must be a string"}}
		}
		return nil
	}
	var issues []Issue
	if slug != f.Stem {
		issues = append(issues, Issue{
			FilePath: f.Path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  fmt.Sprintf("Slug mismatch: slug='%s' filename='%s'", slug, f.Stem),
			Explanation: `The record's slug decides its URL while the file name decides how it is
found. Both must agree.`,
			Fix: fmt.Sprintf("Rename the file to %s%s or set slug to %q", slug, page.Ext, f.Stem),
		})
	}
	if !slugPattern.MatchString(slug) {
		issues = append(issues, Issue{
			FilePath: f.Path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  fmt.Sprintf("Slug must be lowercase with hyphens: %s", slug),
		})
	}
	return issues
}

// VerdictRule requires verdict.status and verdict.summary and flags
// statuses the renderer does not know.
type VerdictRule struct{}

func (r *VerdictRule) Name() string { return "verdict" }

func (r *VerdictRule) Check(f *File) []Issue {
	if f.Raw == nil {
		return nil
	}
	if _, present := f.Raw["verdict"]; !present {
		return nil
	}
	verdict, ok := f.Raw["verdict"].(map[string]any)
	if !ok {
		return []Issue{{FilePath: f.Path, Severity: SeverityError, Rule: r.Name(), Message: "verdict must be an object"}}
	}
	var issues []Issue
	status, _ := verdict["status"].(string)
	if status == "" {
		issues = append(issues, Issue{FilePath: f.Path, Severity: SeverityError, Rule: r.Name(), Message: "Missing verdict.status"})
	} else {
		switch status {
		case page.StatusSafe, page.StatusCaution, page.StatusUnsafe:
		default:
			issues = append(issues, Issue{
				FilePath:    f.Path,
				Severity:    SeverityWarning,
				Rule:        r.Name(),
				Message:     fmt.Sprintf("Unknown verdict.status %q", status),
				Explanation: "The page renders with the caution badge. Known statuses: safe, caution, unsafe.",
			})
		}
	}
	if summary, _ := verdict["summary"].(string); summary == "" {
		issues = append(issues, Issue{FilePath: f.Path, Severity: SeverityError, Rule: r.Name(), Message: "Missing verdict.summary"})
	}
	return issues
}

// DisclaimerRule guards against placeholder disclaimers.
type DisclaimerRule struct{}

func (r *DisclaimerRule) Name() string { return "disclaimer-length" }

func (r *DisclaimerRule) Check(f *File) []Issue {
	if f.Raw == nil {
		return nil
	}
	if _, present := f.Raw["disclaimer"]; !present {
		return nil
	}
	d, _ := f.Raw["disclaimer"].(string)
	if len([]rune(d)) >= minDisclaimerLength {
		return nil
	}
	return []Issue{{
		FilePath: f.Path,
		Severity: SeverityError,
		Rule:     r.Name(),
		Message:  "Disclaimer too short",
		Explanation: fmt.Sprintf("The disclaimer must be at least %d characters; it is shown on every guide page.",
			minDisclaimerLength),
	}}
}

// FingerprintRule compares meta.fingerprint with the record's content.
type FingerprintRule struct{}

func (r *FingerprintRule) Name() string { return "content-fingerprint" }

func (r *FingerprintRule) Check(f *File) []Issue {
	if f.Raw == nil {
		return nil
	}
	stored := page.StoredFingerprint(f.Raw)
	current, err := page.ComputeFingerprint(f.Raw)
	if err != nil {
		return []Issue{{FilePath: f.Path, Severity: SeverityError, Rule: r.Name(), Message: err.Error()}}
	}
	explanation := strings.Join([]string{
		"meta.fingerprint records the content a page was last reviewed with;",
		"meta.updated_at moves only when the fingerprint changes.",
	}, "\n")
	switch {
	case stored == "":
		return []Issue{{
			FilePath:    f.Path,
			Severity:    SeverityInfo,
			Rule:        r.Name(),
			Message:     "No content fingerprint",
			Explanation: explanation,
			Fix:         "Run: guidebuilder lint --fix",
		}}
	case stored != current:
		return []Issue{{
			FilePath:    f.Path,
			Severity:    SeverityWarning,
			Rule:        r.Name(),
			Message:     "Content changed without updating the fingerprint",
			Explanation: explanation,
			Fix:         "Run: guidebuilder lint --fix (also bumps meta.updated_at)",
		}}
	}
	return nil
}
