package pack

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	// Magic identifies a pack archive ("GDPC" little-endian).
	Magic uint32 = 0x43504447
	// FormatVersion is the layout revision written by the builder.
	FormatVersion uint32 = 3

	// DefaultAlignment is the alignment used when none is configured.
	DefaultAlignment = 32
	// DefaultKey is the all-zero content key.
	DefaultKey = "0000000000000000000000000000000000000000000000000000000000000000"

	// HeaderSize is the size of the fixed header written by Start.
	HeaderSize = 6 * 4
	// reservedWords is the count of zero u32 words after the signature info.
	reservedWords = 11
	// ReservedSize is the size of the region backpatched by Flush.
	ReservedSize = 8 + 8 + 8 + 4 + reservedWords*4
	// DirectoryOffset is where the entry count starts.
	DirectoryOffset = HeaderSize + ReservedSize

	// pathAlignment is the alignment of each stored path.
	pathAlignment = 4
	// fixedEntrySize is the size of an entry without its path bytes.
	fixedEntrySize = 4 + 8 + 8 + 16 + 32 + 4
)

// ArchiveFlag is a set of archive-wide flags.
type ArchiveFlag uint32

// FlagDirectoryEncrypted marks an encrypted directory.
const FlagDirectoryEncrypted ArchiveFlag = 1 << 0

// EntryFlag is a set of per-entry flags.
type EntryFlag uint32

const (
	// FlagEncrypted marks an entry whose data is stored encrypted.
	FlagEncrypted EntryFlag = 1 << iota
	// FlagRemoval marks a removal entry in a patch archive.
	FlagRemoval
	// FlagRequireVerification asks the reader to check the digests before use.
	FlagRequireVerification
)

// Has reports whether all bits of flag are set.
func (f EntryFlag) Has(flag EntryFlag) bool {
	return f&flag == flag
}

// String returns the set flags joined by "|", or "-" for none.
func (f EntryFlag) String() string {
	var names []string

	if f.Has(FlagEncrypted) {
		names = append(names, "encrypted")
	}

	if f.Has(FlagRemoval) {
		names = append(names, "removal")
	}

	if f.Has(FlagRequireVerification) {
		names = append(names, "verify")
	}

	if len(names) == 0 {
		return "-"
	}

	return strings.Join(names, "|")
}

// Version is the producer version triple stored in the header.
type Version struct {
	Major, Minor, Patch uint32
}

// DefaultVersion is the producer version written when none is configured.
//
//nolint:gochecknoglobals
var DefaultVersion = Version{Major: 4, Minor: 5, Patch: 0}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Header is the fixed archive header.
type Header struct {
	Magic         uint32
	FormatVersion uint32
	Version       Version
	Flags         ArchiveFlag
}

// DirectoryEncrypted reports whether the directory is stored encrypted.
func (h Header) DirectoryEncrypted() bool {
	return h.Flags&FlagDirectoryEncrypted != 0
}

func (h Header) marshal() []byte {
	buf := make([]byte, 0, HeaderSize)

	buf = binary.LittleEndian.AppendUint32(buf, h.Magic)
	buf = binary.LittleEndian.AppendUint32(buf, h.FormatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version.Major)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version.Minor)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version.Patch)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.Flags))

	return buf
}

func parseHeader(buf []byte) Header {
	return Header{
		Magic:         binary.LittleEndian.Uint32(buf[0:]),
		FormatVersion: binary.LittleEndian.Uint32(buf[4:]),
		Version: Version{
			Major: binary.LittleEndian.Uint32(buf[8:]),
			Minor: binary.LittleEndian.Uint32(buf[12:]),
			Patch: binary.LittleEndian.Uint32(buf[16:]),
		},
		Flags: ArchiveFlag(binary.LittleEndian.Uint32(buf[20:])),
	}
}

// Entry is one directory record.
type Entry struct {
	// Path is the normalized archive path.
	Path string
	// Source is the file the data is read from. Build-time only, never stored.
	Source string
	// Offset is relative to the start of the file data region.
	Offset uint64
	// Size is the plaintext size, excluding cipher overhead.
	Size   uint64
	MD5    [16]byte
	SHA256 [32]byte
	Flags  EntryFlag
}

// Encrypted reports whether the entry data is stored encrypted.
func (e Entry) Encrypted() bool { return e.Flags.Has(FlagEncrypted) }

// Removal reports whether the entry is a removal marker.
func (e Entry) Removal() bool { return e.Flags.Has(FlagRemoval) }

// appendEntry serializes e the way it is stored and hashed.
func appendEntry(buf []byte, e Entry) []byte {
	pathLen := uint64(len(e.Path))
	padded := pathLen + Pad(pathAlignment, pathLen)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(padded)) //nolint:gosec // paths are far below 4 GiB
	buf = append(buf, e.Path...)
	buf = append(buf, make([]byte, padded-pathLen)...)
	buf = binary.LittleEndian.AppendUint64(buf, e.Offset)
	buf = binary.LittleEndian.AppendUint64(buf, e.Size)
	buf = append(buf, e.MD5[:]...)
	buf = append(buf, e.SHA256[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(e.Flags))

	return buf
}

// signatureInfo is the backpatched part of the reserved region.
type signatureInfo struct {
	filesBase uint64
	offset    uint64
	size      uint64
	curve     uint32
}

func parseSignatureInfo(buf []byte) signatureInfo {
	return signatureInfo{
		filesBase: binary.LittleEndian.Uint64(buf[0:]),
		offset:    binary.LittleEndian.Uint64(buf[8:]),
		size:      binary.LittleEndian.Uint64(buf[16:]),
		curve:     binary.LittleEndian.Uint32(buf[24:]),
	}
}
