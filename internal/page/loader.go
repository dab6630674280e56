package page

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// Ext is the page record file extension.
const Ext = ".json"

// Loader reads page records from a directory of JSON files.
type Loader struct {
	Dir     string
	Exclude map[string]struct{} // file stems
}

// NewLoader creates a loader that skips the given file stems.
func NewLoader(dir string, exclude []string) *Loader {
	ex := make(map[string]struct{}, len(exclude))
	for _, stem := range exclude {
		ex[stem] = struct{}{}
	}
	return &Loader{Dir: dir, Exclude: ex}
}

// Stems lists record file stems in lexicographic file name order, skipping exclusions.
func (l *Loader) Stems() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("pages directory not found").WithContext("path", l.Dir).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to list pages directory").
			Fatal().
			WithContext("path", l.Dir).
			Build()
	}
	stems := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), Ext)
		if _, skip := l.Exclude[stem]; skip {
			continue
		}
		stems = append(stems, stem)
	}
	return stems, nil
}

// Path returns the record file path for a stem.
func (l *Loader) Path(stem string) string {
	return filepath.Join(l.Dir, stem+Ext)
}

// Load reads every record. Any unreadable or malformed file fails the whole load.
func (l *Loader) Load(ctx context.Context) ([]Record, error) {
	stems, err := l.Stems()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(stems))
	for _, stem := range stems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := l.Path(stem)
		doc, err := ReadDocument(path)
		if err != nil {
			return nil, err
		}
		records = append(records, NewRecord(doc, stem, path))
	}
	slog.Debug("Loaded page records", logfields.Path(l.Dir), logfields.Count(len(records)))
	return records, nil
}

// ReadDocument parses one record file into its typed view.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryContent, "failed to read page record").
			Fatal().
			WithContext("path", path).
			Build()
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryContent, "malformed page record").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return &doc, nil
}

// ReadRaw parses a record file as a generic map so unknown fields survive a rewrite.
func ReadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryContent, "failed to read page record").
			WithContext("path", path).
			Build()
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryContent, "malformed page record").
			WithContext("path", path).
			Build()
	}
	if raw == nil {
		return nil, ferrors.ContentError("page record is not a JSON object").WithContext("path", path).Build()
	}
	return raw, nil
}

// WriteJSON writes v with two-space indentation and a trailing newline.
func WriteJSON(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create directory").
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	if err := os.WriteFile(path, data, fs.FileMode(0o644)); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write page record").
			WithContext("path", path).
			Build()
	}
	return nil
}

// Marshal encodes a record the way it is stored on disk. HTML characters are not escaped.
func Marshal(v any) ([]byte, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode page record").Build()
	}
	return []byte(b.String()), nil
}
