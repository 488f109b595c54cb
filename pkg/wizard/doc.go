// Package wizard drives the multi-step intake flow: a fixed ordered
// sequence of steps, per-step validation on forward transitions only, and
// a final submit that persists the submission and fans out to checkout and
// the operator email concurrently. Checkout failure is fatal to the
// attempt; email failure is logged and swallowed.
package wizard
