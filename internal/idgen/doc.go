// Package idgen produces run identifiers. It lives under internal so callers
// treat identifiers as opaque strings; tests may stub NewFunc.
package idgen
