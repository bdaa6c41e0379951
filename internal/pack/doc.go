// Package pack builds pack archives: a header, a directory of entries with
// per-file MD5 and SHA-256 digests, and the aligned file data behind it.
//
// The directory may be encrypted with the content key and may be signed; the
// signature covers the SHA-256 of the plaintext directory, so file contents
// are protected through the digests embedded in their entries.
//
// A Builder is single-use: Start, any number of AddFile and AddFileRemoval
// calls, then exactly one Flush or FlushAndSign. Inspect reads an archive back
// for verification.
package pack
