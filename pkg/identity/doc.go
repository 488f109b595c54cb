// Package identity implements explicit sign-in sessions. A Session is a
// plain value handed to components that need the caller's identity; nothing
// reads ambient global state. Sign-in issues an opaque bearer token whose
// SHA-256 hash is stored server-side, and sign-out revokes it.
package identity
