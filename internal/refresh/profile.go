// Package refresh rewrites page records with an ingredient analysis obtained
// from a language model provider.
package refresh

import (
	"encoding/json"
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

// maxListItems caps every list taken from a provider response.
const maxListItems = 6

// Profile is the validated analysis of one topic.
type Profile struct {
	Verdict       string   `json:"verdict"`
	Summary       string   `json:"summary"`
	Risk          []string `json:"risk"`
	Safe          []string `json:"safe"`
	Alternatives  []string `json:"alternatives"`
	KnownGFBrands []string `json:"known_gf_brands,omitempty"`
	Waiter        string   `json:"waiter"`
}

// Prompt returns the instruction sent to the provider for topicName.
func Prompt(topicName string) string {
	return fmt.Sprintf(`You are a gluten safety expert for people with coeliac disease. Analyze %[1]q for gluten risks.

Return a JSON object with exactly these keys (no extra fields):
- verdict: "safe" | "caution" | "unsafe", the overall gluten risk
- summary: 1-2 sentence explanation of the main gluten risks or why it's safe
- risk: array of 3-5 specific ingredients or prep methods in %[1]q that commonly contain gluten. NO brand names. (e.g. "Wheat flour", "Barley malt", "Shared fryer")
- safe: array of 3-5 specific ingredients or prep methods for %[1]q that are typically gluten-free. NO brand names, only ingredient types or prep (e.g. "Tamari (labeled GF)", "Coconut aminos", "GF-certified oats", "Dedicated GF prep area")
- alternatives: array of 3-5 gluten-free alternatives diners could order instead (other foods, not brands)
- known_gf_brands: optional array of 0-5 brand names that offer gluten-free versions of %[1]q (e.g. ["San-J Tamari", "Kikkoman GF"]). Omit or empty array if not applicable.
- waiter: one short question a diner could ask the kitchen to confirm gluten safety

Be specific to %[1]q. No brand names in risk or safe.`, topicName)
}

var requiredKeys = []string{"risk", "safe", "alternatives", "waiter", "summary"}

// ParseProfile validates and normalizes a provider's JSON answer. Missing keys
// or non-list risk/safe/alternatives make the response invalid.
func ParseProfile(text string) (*Profile, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &fields); err != nil {
		return nil, invalid("response is not a JSON object", err)
	}
	for _, k := range requiredKeys {
		if _, ok := fields[k]; !ok {
			return nil, invalid("response is missing "+k, nil)
		}
	}

	p := &Profile{Verdict: page.StatusCaution}
	var err error
	for key, dst := range map[string]*[]string{"risk": &p.Risk, "safe": &p.Safe, "alternatives": &p.Alternatives} {
		if *dst, err = stringList(fields[key]); err != nil {
			return nil, invalid(key+" must be a list", err)
		}
	}
	if p.Summary, err = stringValue(fields["summary"]); err != nil {
		return nil, invalid("summary must be text", err)
	}
	if p.Waiter, err = stringValue(fields["waiter"]); err != nil {
		return nil, invalid("waiter must be text", err)
	}
	if raw, ok := fields["verdict"]; ok {
		if v, err := stringValue(raw); err == nil {
			p.Verdict = normalizeVerdict(v)
		}
	}
	if raw, ok := fields["known_gf_brands"]; ok {
		// Anything other than a list counts as no brands.
		p.KnownGFBrands, _ = stringList(raw)
	}
	return p, nil
}

func normalizeVerdict(v string) string {
	switch s := strings.ToLower(strings.TrimSpace(v)); s {
	case page.StatusSafe, page.StatusCaution, page.StatusUnsafe:
		return s
	default:
		return page.StatusCaution
	}
}

// stringList decodes a JSON array, keeps at most maxListItems entries and
// drops empty ones among them.
func stringList(raw json.RawMessage) ([]string, error) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("null is not a list")
	}
	out := make([]string, 0, maxListItems)
	for _, item := range items[:min(len(items), maxListItems)] {
		var s string
		switch v := item.(type) {
		case nil:
		case string:
			s = strings.TrimSpace(v)
		case bool:
			if v {
				s = "true"
			}
		default:
			s = fmt.Sprint(v)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func stringValue(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(t), nil
	}
}

func invalid(msg string, cause error) error {
	b := ferrors.LLMError("invalid provider response: " + msg)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b.Build()
}
