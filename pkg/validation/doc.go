// Package validation implements the field checks behind the intake wizard's
// per-step validation. Violations accumulate as plain-language messages so
// callers can surface every problem at once rather than only the first.
package validation
