// Package coerce implements the JavaScript value coercions that the
// renderer, the expression evaluator and the directives agree on:
// String (attribute and text output), Truthy (show, disabled, required
// and the falsy-to-empty fallbacks of text and model), Number and the
// == / === comparisons.
//
// A Go nil stands for undefined; Null is the explicit null value.
package coerce
