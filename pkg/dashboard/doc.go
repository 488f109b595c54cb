// Package dashboard derives the client dashboard's billing view from the
// most recent completed submission. It is read-only projection logic; it
// never writes.
package dashboard
