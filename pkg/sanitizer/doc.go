// Package sanitizer provides input normalization applied before validation.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Invalid input is never an error here; it normalizes to a value
// the validator then rejects (typically the empty string).
package sanitizer
