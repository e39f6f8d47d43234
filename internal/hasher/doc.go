// Package hasher computes content digests used to detect duplicate files.
//
// Files are streamed through SHA-256 in fixed-size chunks (8 KiB by
// default), so memory use does not depend on file size. Digests are returned
// as lowercase hex strings.
//
//	digest, err := hasher.HashFile("/tmp/a.bin")
package hasher
