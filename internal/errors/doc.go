// Package errors provides the coded errors used across depot.
//
// Every error carries a stable code (for example "D001") that maps to a
// registered template with a message, category, hint and documentation
// link. Two errors with the same code compare equal under errors.Is, so the
// sentinels exported by the store package match freshly built errors:
//
//	err := errors.New("D002").WithDetailf("store %q", id)
//	stderrors.Is(err, store.ErrCircularConstruction) // true
//
// Errors raised while loading declarative definitions carry a Location, and
// Format prints the surrounding lines of the definitions file:
//
//	ERROR D021: Expression failed to compile
//
//	  stores.yaml:12:14
//
//	      10 │     getters:
//	      11 │       double: count * 2
//	    → 12 │       broken: count +
//	         │              ^
//
//	  Learn more: https://github.com/vango-dev/depot/blob/main/docs/errors.md#d021
package errors
