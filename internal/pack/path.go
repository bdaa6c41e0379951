package pack

import (
	"path"
	"strings"

	"github.com/idelchi/gopck/internal/encryption"
)

const resourcePrefix = "res://"

// NormalizePath returns the stored form of an archive path: backslashes become
// slashes, the "res://" prefix and leading slashes are dropped, repeated
// separators collapse and "." and ".." elements are resolved.
// Equivalent spellings therefore hash identically in the directory.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimPrefix(p, resourcePrefix)

	if p == "" {
		return ""
	}

	p = strings.TrimLeft(path.Clean("/"+p), "/")
	if p == "." {
		return ""
	}

	return p
}

// Pad returns the number of bytes needed to bring n up to a multiple of alignment.
func Pad(alignment, n uint64) uint64 {
	return encryption.Pad(alignment, n)
}
