package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, dir string) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results grouped by file, files in path order.
func (f *TextFormatter) Format(w io.Writer, result *Result, dir string) error {
	var b strings.Builder
	rule := strings.Repeat("-", 60)

	fmt.Fprintf(&b, "Linting page records in: %s\n%s\n\n", dir, rule)

	for _, path := range result.Fixed {
		fmt.Fprintf(&b, "fixed %s (fingerprint updated)\n", path)
	}
	if len(result.Fixed) > 0 {
		b.WriteString("\n")
	}

	issues := slices.Clone(result.Issues)
	slices.SortStableFunc(issues, func(a, b Issue) int { return strings.Compare(a.FilePath, b.FilePath) })
	for _, issue := range issues {
		formatIssue(&b, issue)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\nResults:\n  %d files scanned\n", rule, result.FilesTotal)
	if n := result.ErrorCount(); n > 0 {
		fmt.Fprintf(&b, "  %d error%s (blocks build)\n", n, pluralize(n))
	}
	if n := result.WarningCount(); n > 0 {
		fmt.Fprintf(&b, "  %d warning%s (should fix)\n", n, pluralize(n))
	}
	if n := result.InfoCount(); n > 0 {
		fmt.Fprintf(&b, "  %d info\n", n)
	}
	b.WriteString("\n")

	switch {
	case result.HasErrors():
		b.WriteString("Page records have errors that will prevent a build.\n")
	case result.HasWarnings():
		b.WriteString("Page records have warnings. Consider fixing before publishing.\n")
		b.WriteString("   To auto-fix fingerprints: guidebuilder lint --fix\n")
	case len(result.Issues) > 0:
		b.WriteString("All issues are informational.\n")
	default:
		b.WriteString("All page records pass linting.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatIssue(b *strings.Builder, issue Issue) {
	var icon string
	switch issue.Severity {
	case SeverityError:
		icon = "x"
	case SeverityWarning:
		icon = "!"
	default:
		icon = "i"
	}
	fmt.Fprintf(b, "%s %s\n  %s [%s]: %s\n", icon, issue.FilePath, issue.Severity, issue.Rule, issue.Message)
	if issue.Explanation != "" {
		for line := range strings.SplitSeq(strings.TrimSpace(issue.Explanation), "\n") {
			fmt.Fprintf(b, "  %s\n", line)
		}
	}
	if issue.Fix != "" {
		fmt.Fprintf(b, "\n  Fix: %s\n", issue.Fix)
	}
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Path         string      `json:"path"`
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	InfoCount    int         `json:"info_count"`
	Fixed        []string    `json:"fixed,omitempty"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	FilePath    string `json:"file_path"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, dir string) error {
	output := JSONOutput{
		Path:         dir,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		InfoCount:    result.InfoCount(),
		Fixed:        result.Fixed,
		Issues:       make([]JSONIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			FilePath:    issue.FilePath,
			Severity:    issue.Severity.String(),
			Rule:        issue.Rule,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
