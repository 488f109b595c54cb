// Package uploads stores brand assets (logos, photography, copy documents)
// that clients attach during intake. Backends implement the Store interface;
// local filesystem and S3 backends are provided.
package uploads
