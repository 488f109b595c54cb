// Package api exposes the HTTP surface: pricing quotes, the intake wizard,
// checkout session creation and the provider webhook, the client dashboard,
// and sign-in/sign-out. Handlers are grouped per concern; each group
// registers its own routes on the shared router.
package api
