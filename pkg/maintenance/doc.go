// Package maintenance runs the periodic housekeeping jobs: sweeping
// expired in-memory wizard sessions, reporting aged pending checkouts, and
// refreshing database pool gauges.
package maintenance
