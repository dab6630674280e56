package lint

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

// Linter performs linting operations on a directory of page records.
type Linter struct {
	cfg      *Config
	rules    []Rule
	setRules []SetRule
	now      func() time.Time
}

// NewLinter creates a new linter with the given configuration. staticPaths
// are site paths that section links may point at besides guide pages.
func NewLinter(cfg *Config, staticPaths []string) *Linter {
	if cfg == nil {
		cfg = &Config{Format: "text"}
	}
	return &Linter{
		cfg: cfg,
		rules: []Rule{
			&ParseRule{},
			&RequiredFieldsRule{},
			&SlugRule{},
			&VerdictRule{},
			&DisclaimerRule{},
			&FingerprintRule{},
		},
		setRules: []SetRule{
			&DuplicateSlugRule{},
			&SectionLinkRule{Static: staticPaths},
		},
		now: time.Now,
	}
}

// LintDir lints every record in dir. With Fix set, stale or missing
// fingerprints are rewritten before rules run.
func (l *Linter) LintDir(ctx context.Context, dir string) (*Result, error) {
	loader := page.NewLoader(dir, l.cfg.Exclude)
	stems, err := loader.Stems()
	if err != nil {
		return nil, err
	}

	result := &Result{Issues: []Issue{}}
	files := make([]*File, 0, len(stems))
	for _, stem := range stems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := readFile(loader.Path(stem), stem)
		if err != nil {
			return nil, err
		}
		if l.cfg.Fix {
			fixed, err := fixFingerprint(f, l.now())
			if err != nil {
				return nil, err
			}
			if fixed {
				result.Fixed = append(result.Fixed, f.Path)
			}
		}
		files = append(files, f)
	}
	result.FilesTotal = len(files)

	for _, f := range files {
		for _, rule := range l.rules {
			l.add(result, rule.Check(f))
		}
	}
	for _, rule := range l.setRules {
		l.add(result, rule.CheckAll(files))
	}
	return result, nil
}

func (l *Linter) add(result *Result, issues []Issue) {
	for _, issue := range issues {
		if l.cfg.Quiet && issue.Severity != SeverityError {
			continue
		}
		result.Issues = append(result.Issues, issue)
	}
}

func readFile(path, stem string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read page record").
			WithContext("path", path).
			Build()
	}
	f := &File{Path: path, Stem: stem}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		f.ParseErr = err
		return f, nil
	}
	if raw == nil {
		f.ParseErr = errors.New("record is not a JSON object")
		return f, nil
	}
	f.Raw = raw
	return f, nil
}

// fixFingerprint rewrites f when its stored fingerprint is missing or stale.
func fixFingerprint(f *File, now time.Time) (bool, error) {
	if f.Raw == nil {
		return false, nil
	}
	_, changed, err := page.UpsertFingerprint(f.Raw, now)
	if err != nil || !changed {
		return false, err
	}
	if err := page.WriteJSON(f.Path, f.Raw); err != nil {
		return false, err
	}
	return true, nil
}
