// Package digest wraps the MD5, SHA-1 and SHA-256 hash functions behind a
// start/update/finish lifecycle.
//
// The digests exist for content tamper-evidence inside pack archives. They are
// unsalted and single-pass and must not be used to hash passwords or other
// credentials.
package digest
