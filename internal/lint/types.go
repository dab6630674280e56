// Package lint validates page records before they are built.
package lint

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo marks observations that need no action.
	SeverityInfo Severity = iota
	// SeverityWarning marks issues that should be fixed but don't block builds.
	SeverityWarning
	// SeverityError marks issues that make a record unusable for a build.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single problem found in a record file.
type Issue struct {
	FilePath    string
	Severity    Severity
	Rule        string // rule identifier, e.g. "slug-conventions"
	Message     string
	Explanation string
	Fix         string // suggested command or edit
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int
	Fixed      []string // files rewritten by --fix
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool { return r.count(SeverityError) > 0 }

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool { return r.count(SeverityWarning) > 0 }

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int { return r.count(SeverityWarning) }

// InfoCount returns the number of informational issues.
func (r *Result) InfoCount() int { return r.count(SeverityInfo) }

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// File is a record file prepared for checking. Raw is nil when the file
// could not be parsed; ParseErr then holds the reason.
type File struct {
	Path     string
	Stem     string
	Raw      map[string]any
	ParseErr error
}

// Rule checks one record file at a time.
type Rule interface {
	Name() string
	Check(f *File) []Issue
}

// SetRule checks relationships across all record files.
type SetRule interface {
	Name() string
	CheckAll(files []*File) []Issue
}

// Config contains configuration for the linter.
type Config struct {
	// Quiet suppresses warnings and info, only showing errors.
	Quiet bool

	// Format specifies output format (text, json).
	Format string

	// Fix rewrites stale content fingerprints.
	Fix bool

	// Exclude lists record file stems that are not linted.
	Exclude []string
}
