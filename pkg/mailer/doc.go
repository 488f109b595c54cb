// Package mailer renders and dispatches the operator notification email
// sent when a client completes intake. Delivery is best-effort: the wizard
// logs failures and continues, it never blocks checkout on email.
package mailer
