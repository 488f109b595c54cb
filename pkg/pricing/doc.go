// Package pricing defines the canonical price table for plans and add-ons
// and the quote calculator shared by every consumer: the intake wizard, the
// public quote endpoint, and the checkout session service. There is exactly
// one table; callers must not define their own prices.
package pricing
