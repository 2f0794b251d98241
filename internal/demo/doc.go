// Package demo holds the example islands served by "drizzle serve" and
// exercised by the end-to-end tests: a counter and a login form.
package demo
