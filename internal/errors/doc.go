// Package errors provides structured error codes for drizzle.
//
// Each error has a unique code (e.g., "E040") that maps to a category, a
// short message and a detailed explanation. Codes are shared by log
// records and CLI output so a hydration warning in a server log and a
// failing `drizzle hydrate` run point at the same entry.
//
// # Error Categories
//
//   - render: recovered subtree failures, depth limits
//   - hydration: missing components, missing containers, markup mismatch
//   - evaluator: expression syntax and evaluation errors
//   - directive: handler panics, effect flush limits, scope conflicts
//   - config: drizzle.json / drizzle.yaml problems
//   - cli: command usage
//
// # Usage
//
//	err := errors.New("E041").
//	    WithDetail(`selector "main" matched nothing`).
//	    WithSuggestion("Render the page with render.RenderPage")
//	logger.Warn(err.Message, err.LogAttrs()...)
package errors
