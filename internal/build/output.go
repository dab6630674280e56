package build

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// writeFile replaces path with the buffer contents, creating parent directories.
func writeFile(path string, buf *bytes.Buffer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write output file").
			WithContext("path", path).
			Build()
	}
	return nil
}

// copyFile copies src to dst. A missing src is reported as (false, nil).
func copyFile(src, dst string) (bool, error) {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open landing page").
			WithContext("path", src).
			Build()
	}
	defer func() { _ = in.Close() }()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, in); err != nil {
		return false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read landing page").
			WithContext("path", src).
			Build()
	}
	if err := writeFile(dst, &buf); err != nil {
		return false, err
	}
	return true, nil
}

// cleanOutput removes the output directory. Paths that would take the
// working directory or the content with them are refused.
func cleanOutput(dir, pagesDir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve output directory").
			WithContext("path", dir).
			Build()
	}
	cwd, _ := os.Getwd()
	pagesAbs, _ := filepath.Abs(pagesDir)
	if abs == filepath.Dir(abs) || abs == cwd || isWithin(pagesAbs, abs) {
		return ferrors.ConfigError("refusing to clean output directory").
			WithContext("path", dir).
			WithContext("pages_dir", pagesDir).
			Build()
	}
	if err := os.RemoveAll(abs); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to clean output directory").
			WithContext("path", dir).
			Build()
	}
	return nil
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
