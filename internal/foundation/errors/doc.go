// Package errors provides the classified error primitives used across guidebuilder.
//
// Errors carry a category (config, content, render, llm, ...), a severity and a
// retry strategy so the CLI can pick exit codes and the refresh loop can decide
// whether a provider failure is worth another attempt.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryContent, "malformed page record").
//		WithContext("path", path).
//		WithCause(parseErr).
//		Build()
package errors
