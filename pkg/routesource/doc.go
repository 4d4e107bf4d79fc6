// Package routesource loads route tables from versioned documents.
//
// A document lists redirects and ordered route definitions in YAML, TOML or
// JSON. Documents are read from local files, S3 objects (s3://bucket/key) or
// the table embedded in the binary ("builtin"). Live keeps the active table
// and swaps it when the file changes, so a new table version ships without
// a code change.
package routesource
