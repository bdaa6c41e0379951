package pack

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/gopck/internal/codec"
	"github.com/idelchi/gopck/internal/digest"
	"github.com/idelchi/gopck/internal/encryption"
	"github.com/idelchi/gopck/internal/fileutil"
	"github.com/idelchi/gopck/internal/random"
	"github.com/idelchi/gopck/internal/signature"
)

// State is the lifecycle stage of a Builder.
type State int

const (
	// StateUnopened is the state before a successful Start.
	StateUnopened State = iota
	// StateOpen accepts entries.
	StateOpen
	// StateFlushed is terminal.
	StateFlushed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateFlushed:
		return "flushed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Source names a file to add.
type Source struct {
	// Target is the archive path, normalized on add.
	Target string
	// Path is the file to read on the builder's filesystem.
	Path                string
	Encrypt             bool
	RequireVerification bool
}

// Builder assembles one archive. It is not safe for concurrent use.
type Builder struct {
	fs         afero.Fs
	logger     *slog.Logger
	random     io.Reader
	version    Version
	progress   func(Progress)
	signatures bool

	state            State
	file             afero.File
	path             string
	alignment        uint64
	key              []byte
	encryptDirectory bool
	entries          []Entry
	offset           uint64
	digest           [digest.SHA256Size]byte
}

// NewBuilder returns an unopened Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		fs:         fileutil.NewOSFS(),
		version:    DefaultVersion,
		signatures: true,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}

	return b
}

// State returns the current lifecycle stage.
func (b *Builder) State() State {
	return b.state
}

// Entries returns a copy of the entries added so far.
func (b *Builder) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// DirectoryDigest returns the SHA-256 of the plaintext directory.
// It is only meaningful after a successful flush.
func (b *Builder) DirectoryDigest() [digest.SHA256Size]byte {
	return b.digest
}

// Start validates the configuration, creates the destination and writes the header.
func (b *Builder) Start(path string, alignment int, keyHex string, encryptDirectory bool) error {
	if b.state != StateUnopened {
		return fmt.Errorf("%w: start called on %s builder", ErrState, b.state)
	}

	key, err := codec.ParseKeyHex(keyHex)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if alignment <= 0 {
		return fmt.Errorf("%w: alignment must be positive, got %d", ErrConfiguration, alignment)
	}

	file, err := b.fs.Create(path)
	if err != nil {
		return ioError(fmt.Sprintf("creating %q", path), err)
	}

	header := Header{
		Magic:         Magic,
		FormatVersion: FormatVersion,
		Version:       b.version,
	}

	if encryptDirectory {
		header.Flags |= FlagDirectoryEncrypted
	}

	if _, err := file.Write(header.marshal()); err != nil {
		file.Close() //nolint:errcheck,gosec // already failing

		return ioError("writing header", err)
	}

	b.file = file
	b.path = path
	b.alignment = uint64(alignment)
	b.key = key
	b.encryptDirectory = encryptDirectory
	b.entries = nil
	b.offset = 0
	b.state = StateOpen

	return nil
}

// AddFile hashes source and records it under target at the current offset.
func (b *Builder) AddFile(target, source string, encrypt, requireVerification bool) error {
	if b.state != StateOpen {
		return fmt.Errorf("%w: add file on %s builder", ErrState, b.state)
	}

	entry, err := b.hashSource(Source{
		Target:              target,
		Path:                source,
		Encrypt:             encrypt,
		RequireVerification: requireVerification,
	})
	if err != nil {
		return err
	}

	b.commit(entry)

	return nil
}

// AddFiles hashes sources concurrently, up to parallel at a time, and then
// records them in the given order. On error no entry is recorded.
// A non-positive parallel uses GOMAXPROCS.
func (b *Builder) AddFiles(ctx context.Context, sources []Source, parallel int) error {
	if b.state != StateOpen {
		return fmt.Errorf("%w: add files on %s builder", ErrState, b.state)
	}

	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	entries := make([]Entry, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			entry, err := b.hashSource(src)
			if err != nil {
				return err
			}

			entries[i] = entry

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, entry := range entries {
		b.commit(entry)
	}

	return nil
}

// AddFileRemoval records a removal marker for target. It occupies no space.
func (b *Builder) AddFileRemoval(target string) error {
	if b.state != StateOpen {
		return fmt.Errorf("%w: add removal on %s builder", ErrState, b.state)
	}

	b.entries = append(b.entries, Entry{
		Path:   NormalizePath(target),
		Offset: b.offset,
		Flags:  FlagRemoval,
	})

	return nil
}

// hashSource reads src once and computes its digests. It touches no builder
// state besides the filesystem, so it may run concurrently.
func (b *Builder) hashSource(src Source) (Entry, error) {
	f, err := b.fs.Open(src.Path)
	if err != nil {
		return Entry{}, ioError(fmt.Sprintf("opening %q", src.Path), err)
	}
	defer f.Close()

	md5 := digest.NewMD5()
	sha := digest.NewSHA256()

	md5.Start()
	sha.Start()

	size, err := io.Copy(io.MultiWriter(md5, sha), f)
	if err != nil {
		return Entry{}, ioError(fmt.Sprintf("reading %q", src.Path), err)
	}

	entry := Entry{
		Path:   NormalizePath(src.Target),
		Source: src.Path,
		Size:   uint64(size), //nolint:gosec // non-negative
	}

	md5Sum, err := md5.Finish()
	if err != nil {
		return Entry{}, cryptoError("md5", err)
	}

	shaSum, err := sha.Finish()
	if err != nil {
		return Entry{}, cryptoError("sha256", err)
	}

	copy(entry.MD5[:], md5Sum)
	copy(entry.SHA256[:], shaSum)

	if src.Encrypt {
		entry.Flags |= FlagEncrypted
	}

	if src.RequireVerification {
		entry.Flags |= FlagRequireVerification
	}

	return entry, nil
}

// commit places entry at the running offset and advances it by the entry's
// aligned footprint.
func (b *Builder) commit(entry Entry) {
	entry.Offset = b.offset

	footprint := entry.Size
	if entry.Encrypted() {
		footprint = encryption.Footprint(entry.Size)
	}

	end := b.offset + footprint
	b.offset = end + Pad(b.alignment, end)

	b.entries = append(b.entries, entry)
}

// Close releases the destination without writing the directory and makes the
// builder terminal. It is a no-op unless the builder is open. The partial file
// is left for the caller to remove.
func (b *Builder) Close() error {
	if b.state != StateOpen {
		return nil
	}

	b.state = StateFlushed

	err := b.file.Close()
	b.file = nil

	if err != nil {
		return ioError("closing archive", err)
	}

	return nil
}

// Flush writes the directory and file data and closes the archive.
func (b *Builder) Flush(verbose bool) error {
	return b.FlushAndSign("", signature.CurveNone, verbose)
}

// FlushAndSign is Flush that additionally signs the directory digest with a
// base64 raw private key on curve. An empty key writes an unsigned archive.
//
// Key and curve problems are reported before anything is written and leave
// the builder open. Any later failure leaves a partial file behind and the
// builder flushed.
func (b *Builder) FlushAndSign(privateKeyB64 string, curve signature.Curve, verbose bool) (err error) {
	if b.state != StateOpen {
		return fmt.Errorf("%w: flush on %s builder", ErrState, b.state)
	}

	var signer *signature.Context

	if privateKeyB64 != "" {
		if signer, err = b.newSigner(privateKeyB64, curve); err != nil {
			return err
		}
	}

	b.state = StateFlushed

	defer func() {
		if cerr := b.file.Close(); cerr != nil && err == nil {
			err = ioError("closing archive", cerr)
		}

		b.file = nil
	}()

	infoAt, err := b.position()
	if err != nil {
		return err
	}

	if err := fileutil.WriteZeros(b.file, ReservedSize); err != nil {
		return ioError("reserving header region", err)
	}

	if err := b.writeDirectory(); err != nil {
		return err
	}

	var sig []byte

	if signer != nil {
		if sig, err = signer.Sign(b.digest[:]); err != nil {
			return cryptoError("signing directory", err)
		}
	}

	if err := b.align(); err != nil {
		return err
	}

	filesBase, err := b.position()
	if err != nil {
		return err
	}

	if err := b.patch(infoAt, le64(filesBase)); err != nil {
		return err
	}

	if err := b.writeData(verbose); err != nil {
		return err
	}

	if signer == nil {
		return nil
	}

	if err := b.align(); err != nil {
		return err
	}

	sigAt, err := b.position()
	if err != nil {
		return err
	}

	if _, err := b.file.Write(sig); err != nil {
		return ioError("writing signature", err)
	}

	info := le64(sigAt)
	info = append(info, le64(uint64(len(sig)))...)
	info = append(info, le32(uint32(curve))...)

	return b.patch(infoAt+8, info)
}

func (b *Builder) newSigner(privateKeyB64 string, curve signature.Curve) (*signature.Context, error) {
	if !b.signatures {
		return nil, fmt.Errorf("%w: built without signature support", ErrConfiguration)
	}

	priv, err := codec.DecodeBase64(privateKeyB64)
	if err != nil {
		return nil, fmt.Errorf("%w: signing key: %w", ErrConfiguration, err)
	}

	rng, err := b.randomSource()
	if err != nil {
		return nil, err
	}

	signer, err := signature.New(curve, rng, signature.WithLogger(b.logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err := signer.SetPrivateKey(priv); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return signer, nil
}

// writeDirectory writes the entry count and the entries, encrypted as one
// blob when configured, and records the digest of the plaintext entries.
func (b *Builder) writeDirectory() error {
	count := uint32(len(b.entries)) //nolint:gosec // bounded by memory
	if _, err := b.file.Write(le32(count)); err != nil {
		return ioError("writing entry count", err)
	}

	var plain []byte
	for _, entry := range b.entries {
		plain = appendEntry(plain, entry)
	}

	sha := digest.NewSHA256()
	sha.Start()

	if err := sha.Update(plain); err != nil {
		return cryptoError("hashing directory", err)
	}

	sum, err := sha.Finish()
	if err != nil {
		return cryptoError("hashing directory", err)
	}

	copy(b.digest[:], sum)

	if !b.encryptDirectory {
		if _, err := b.file.Write(plain); err != nil {
			return ioError("writing directory", err)
		}

		return nil
	}

	w, err := b.encrypter()
	if err != nil {
		return err
	}

	if _, err := w.Write(plain); err != nil {
		return cryptoError("encrypting directory", err)
	}

	if err := w.Close(); err != nil {
		return ioError("writing encrypted directory", err)
	}

	return nil
}

// writeData streams every non-removal entry in directory order.
func (b *Builder) writeData(verbose bool) error {
	count := 0

	for _, entry := range b.entries {
		if entry.Removal() {
			continue
		}

		if err := b.writeEntry(entry); err != nil {
			return err
		}

		count++

		p := Progress{Count: count, Total: len(b.entries), Source: entry.Source, Target: entry.Path}

		if verbose {
			b.logger.Info(fmt.Sprintf("[%d/%d - %d%%] flush: %s -> %s", p.Count, p.Total, p.Percent(), p.Source, p.Target))
		}

		if b.progress != nil {
			b.progress(p)
		}
	}

	return nil
}

func (b *Builder) writeEntry(entry Entry) error {
	src, err := b.fs.Open(entry.Source)
	if err != nil {
		return ioError(fmt.Sprintf("opening %q", entry.Source), err)
	}
	defer src.Close()

	var dst io.Writer = b.file

	var enc *encryption.Writer

	if entry.Encrypted() {
		if enc, err = b.encrypter(); err != nil {
			return err
		}

		dst = enc
	}

	if _, err := fileutil.CopyN(dst, src, int64(entry.Size)); err != nil { //nolint:gosec // sizes come from io.Copy
		return ioError(fmt.Sprintf("copying %q", entry.Source), err)
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			return ioError(fmt.Sprintf("writing encrypted %q", entry.Source), err)
		}
	}

	return b.align()
}

func (b *Builder) encrypter() (*encryption.Writer, error) {
	rng, err := b.randomSource()
	if err != nil {
		return nil, err
	}

	w, err := encryption.NewWriter(b.file, b.key, rng)
	if err != nil {
		return nil, cryptoError("content cipher", err)
	}

	return w, nil
}

func (b *Builder) randomSource() (io.Reader, error) {
	if b.random != nil {
		return b.random, nil
	}

	g, err := random.NewInitialized()
	if err != nil {
		return nil, cryptoError("seeding random source", err)
	}

	b.random = g

	return g, nil
}

func (b *Builder) position() (uint64, error) {
	pos, err := b.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, ioError("querying position", err)
	}

	return uint64(pos), nil //nolint:gosec // non-negative
}

// align pads the destination to the configured alignment.
func (b *Builder) align() error {
	pos, err := b.position()
	if err != nil {
		return err
	}

	if err := fileutil.WriteZeros(b.file, int64(Pad(b.alignment, pos))); err != nil { //nolint:gosec // below alignment
		return ioError("writing padding", err)
	}

	return nil
}

// patch overwrites data at offset and returns to the previous end, since
// WriteAt may move the cursor on some filesystems.
func (b *Builder) patch(offset uint64, data []byte) error {
	end, err := b.position()
	if err != nil {
		return err
	}

	if _, err := b.file.WriteAt(data, int64(offset)); err != nil { //nolint:gosec // within the file
		return ioError("backpatching header", err)
	}

	if _, err := b.file.Seek(int64(end), io.SeekStart); err != nil { //nolint:gosec // within the file
		return ioError("seeking", err)
	}

	return nil
}

func le32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func le64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}
