// Package checkout creates hosted-payment sessions for completed intake
// submissions. It recomputes totals from the canonical price table (never
// trusting client-supplied amounts), creates or reuses a billing customer
// keyed by email, and writes session identifiers back onto the submission.
package checkout
