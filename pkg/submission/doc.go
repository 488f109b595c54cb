// Package submission persists completed intake-wizard runs. A submission is
// created once when the wizard submits, mutated by the checkout service to
// attach session identifiers and lifecycle status, and never deleted by the
// application.
package submission
