package pack

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/idelchi/gopck/internal/codec"
	"github.com/idelchi/gopck/internal/digest"
	"github.com/idelchi/gopck/internal/encryption"
	"github.com/idelchi/gopck/internal/signature"
)

// maxPathSize bounds stored paths read from untrusted archives.
const maxPathSize = 1 << 16

// ErrUnsigned is returned by Inspect when a public key is given for an
// archive without a signature.
var ErrUnsigned = errors.New("archive is not signed")

// Archive is the parsed directory of an archive.
type Archive struct {
	Header    Header
	FilesBase uint64
	Entries   []Entry
	// DirectoryDigest is recomputed from the stored entries.
	DirectoryDigest [digest.SHA256Size]byte
	Signature       []byte
	Curve           signature.Curve
	// Verified is set when the signature was checked against a public key.
	Verified bool
}

// Signed reports whether the archive carries a signature.
func (a *Archive) Signed() bool {
	return len(a.Signature) > 0
}

type inspectOptions struct {
	key       []byte
	publicKey []byte
	contents  bool
	logger    *slog.Logger
}

// InspectOption configures Inspect.
type InspectOption func(*inspectOptions) error

// InspectWithKey sets the 64-hex content key for encrypted directories and files.
func InspectWithKey(keyHex string) InspectOption {
	return func(o *inspectOptions) error {
		key, err := codec.ParseKeyHex(keyHex)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfiguration, err)
		}

		o.key = key

		return nil
	}
}

// InspectWithPublicKey verifies the signature with a base64 uncompressed point.
func InspectWithPublicKey(publicKeyB64 string) InspectOption {
	return func(o *inspectOptions) error {
		pub, err := codec.DecodeBase64(publicKeyB64)
		if err != nil {
			return fmt.Errorf("%w: public key: %w", ErrConfiguration, err)
		}

		o.publicKey = pub

		return nil
	}
}

// InspectWithContents also checks every data file against its stored digests.
func InspectWithContents() InspectOption {
	return func(o *inspectOptions) error {
		o.contents = true

		return nil
	}
}

// InspectWithLogger sets the logger for debug output.
func InspectWithLogger(logger *slog.Logger) InspectOption {
	return func(o *inspectOptions) error {
		o.logger = logger

		return nil
	}
}

// Inspect parses the archive at path and optionally verifies its signature
// and contents. The input is treated as untrusted: malformed data yields
// ErrCorrupt, never a panic.
func Inspect(fs afero.Fs, path string, opts ...InspectOption) (*Archive, error) {
	var o inspectOptions

	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, ioError(fmt.Sprintf("opening %q", path), err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, ioError(fmt.Sprintf("stat %q", path), err)
	}

	size := uint64(stat.Size()) //nolint:gosec // non-negative

	archive, err := readDirectory(f, size, o.key)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("parsed directory", "path", path, "entries", len(archive.Entries), "signed", archive.Signed())

	if o.publicKey != nil {
		if err := archive.verify(o.publicKey); err != nil {
			return nil, err
		}
	}

	if o.contents {
		for _, entry := range archive.Entries {
			if err := archive.checkEntry(f, size, entry, o.key); err != nil {
				return nil, err
			}
		}
	}

	return archive, nil
}

// within reports whether length bytes starting at offset fit in a file of size bytes.
func within(offset, length, size uint64) bool {
	return offset <= size && length <= size-offset
}

func readDirectory(f afero.File, size uint64, key []byte) (*Archive, error) {
	head := make([]byte, DirectoryOffset+4)
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrCorrupt, err)
	}

	archive := &Archive{Header: parseHeader(head)}

	if archive.Header.Magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %#08x", ErrCorrupt, archive.Header.Magic)
	}

	if archive.Header.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, archive.Header.FormatVersion)
	}

	info := parseSignatureInfo(head[HeaderSize:])
	archive.FilesBase = info.filesBase
	archive.Curve = signature.Curve(info.curve)

	count := binary.LittleEndian.Uint32(head[DirectoryOffset:])

	var r io.Reader = bufio.NewReader(f)

	if archive.Header.DirectoryEncrypted() {
		if key == nil {
			return nil, fmt.Errorf("%w: directory is encrypted and no key was given", ErrConfiguration)
		}

		plain, err := encryption.Open(r, key)
		if err != nil {
			return nil, fmt.Errorf("%w: directory: %w", ErrCorrupt, err)
		}

		r = bytes.NewReader(plain)
	}

	sha := digest.NewSHA256()
	sha.Start()

	dr := &directoryReader{r: io.TeeReader(r, sha)}

	for range count {
		entry := dr.entry()
		if dr.err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrCorrupt, len(archive.Entries), dr.err)
		}

		archive.Entries = append(archive.Entries, entry)
	}

	sum, err := sha.Finish()
	if err != nil {
		return nil, cryptoError("hashing directory", err)
	}

	copy(archive.DirectoryDigest[:], sum)

	if info.size > 0 {
		if info.size > signature.MaxSignatureSize {
			return nil, fmt.Errorf("%w: signature size %d", ErrCorrupt, info.size)
		}

		if !within(info.offset, info.size, size) {
			return nil, fmt.Errorf("%w: signature at %d+%d outside %d-byte file", ErrCorrupt, info.offset, info.size, size)
		}

		archive.Signature = make([]byte, info.size)

		section := io.NewSectionReader(f, int64(info.offset), int64(info.size)) //nolint:gosec // bounded by the file size
		if _, err := io.ReadFull(section, archive.Signature); err != nil {
			return nil, fmt.Errorf("%w: reading signature: %w", ErrCorrupt, err)
		}
	}

	return archive, nil
}

func (a *Archive) verify(pub []byte) error {
	if !a.Signed() {
		return ErrUnsigned
	}

	verifier, err := signature.New(a.Curve, rand.Reader, signature.WithSilent(true))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if err := verifier.SetPublicKey(pub); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err := verifier.Verify(a.DirectoryDigest[:], a.Signature); err != nil {
		return cryptoError("directory signature", err)
	}

	a.Verified = true

	return nil
}

func (a *Archive) checkEntry(f afero.File, size uint64, entry Entry, key []byte) error {
	if entry.Removal() {
		return nil
	}

	if !within(a.FilesBase, entry.Offset, size) || !within(a.FilesBase+entry.Offset, entry.Size, size) {
		return fmt.Errorf("%w: %q at %d+%d outside %d-byte file", ErrCorrupt, entry.Path, entry.Offset, entry.Size, size)
	}

	offset := a.FilesBase + entry.Offset

	if entry.Encrypted() && !within(offset, encryption.Footprint(entry.Size), size) {
		return fmt.Errorf("%w: %q: encrypted data runs past end of file", ErrCorrupt, entry.Path)
	}

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil { //nolint:gosec // bounded by the file size
		return fmt.Errorf("%w: %q: %w", ErrCorrupt, entry.Path, err)
	}

	var data io.Reader = f

	if entry.Encrypted() {
		if key == nil {
			return fmt.Errorf("%w: %q is encrypted and no key was given", ErrConfiguration, entry.Path)
		}

		plain, err := encryption.Open(f, key)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrCorrupt, entry.Path, err)
		}

		data = bytes.NewReader(plain)
	}

	md5 := digest.NewMD5()
	sha := digest.NewSHA256()

	md5.Start()
	sha.Start()

	n, err := io.CopyN(io.MultiWriter(md5, sha), data, int64(entry.Size)) //nolint:gosec // short reads are reported
	if err != nil {
		return fmt.Errorf("%w: %q: read %d of %d bytes: %w", ErrCorrupt, entry.Path, n, entry.Size, err)
	}

	md5Sum, _ := md5.Finish() //nolint:errcheck // started above
	shaSum, _ := sha.Finish() //nolint:errcheck // started above

	if !bytes.Equal(md5Sum, entry.MD5[:]) || !bytes.Equal(shaSum, entry.SHA256[:]) {
		return fmt.Errorf("%w: %q: digest mismatch", ErrCorrupt, entry.Path)
	}

	return nil
}

// directoryReader decodes entries and keeps the first error.
type directoryReader struct {
	r   io.Reader
	buf [fixedEntrySize]byte
	err error
}

func (d *directoryReader) read(n int) []byte {
	if d.err != nil {
		return nil
	}

	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		d.err = err

		return nil
	}

	return d.buf[:n]
}

func (d *directoryReader) entry() Entry {
	raw := d.read(4)
	if raw == nil {
		return Entry{}
	}

	pathLen := binary.LittleEndian.Uint32(raw)
	if pathLen > maxPathSize {
		d.err = fmt.Errorf("path length %d exceeds %d", pathLen, maxPathSize)

		return Entry{}
	}

	path := make([]byte, pathLen)
	if _, err := io.ReadFull(d.r, path); err != nil {
		d.err = err

		return Entry{}
	}

	raw = d.read(fixedEntrySize - 4)
	if raw == nil {
		return Entry{}
	}

	entry := Entry{
		Path:   string(bytes.TrimRight(path, "\x00")),
		Offset: binary.LittleEndian.Uint64(raw[0:]),
		Size:   binary.LittleEndian.Uint64(raw[8:]),
		Flags:  EntryFlag(binary.LittleEndian.Uint32(raw[64:])),
	}

	copy(entry.MD5[:], raw[16:32])
	copy(entry.SHA256[:], raw[32:64])

	return entry
}
