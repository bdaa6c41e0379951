package logic

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/idelchi/gopck/internal/config"
	"github.com/idelchi/gopck/internal/pack"
)

// Verify inspects an archive, checking the signature and contents as configured,
// and lists its entries unless quiet.
func Verify(fs afero.Fs, cfg *config.Verify, out io.Writer, logger *slog.Logger) error {
	opts := []pack.InspectOption{pack.InspectWithLogger(logger)}

	key, err := readSecret(fs, cfg.Key, cfg.KeyFile, "")
	if err != nil {
		return err
	}

	if key != "" {
		opts = append(opts, pack.InspectWithKey(key))
	}

	if cfg.PublicKey != "" {
		opts = append(opts, pack.InspectWithPublicKey(cfg.PublicKey))
	}

	if cfg.Contents {
		opts = append(opts, pack.InspectWithContents())
	}

	archive, err := pack.Inspect(fs, cfg.Archive, opts...)
	if err != nil {
		return fmt.Errorf("verifying %q: %w", cfg.Archive, err)
	}

	if cfg.Quiet {
		return nil
	}

	printArchive(out, cfg.Archive, archive, cfg.Contents)

	return nil
}

func printArchive(out io.Writer, name string, a *pack.Archive, contents bool) {
	fmt.Fprintf(out, "%s: format %d, version %s, %d entries, directory sha256 %x\n",
		name, a.Header.FormatVersion, a.Header.Version, len(a.Entries), a.DirectoryDigest[:])

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd

	fmt.Fprintln(tw, "OFFSET\tSIZE\tFLAGS\tPATH")

	for _, e := range a.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.FilesBase+e.Offset, humanize.IBytes(e.Size), e.Flags, e.Path)
	}

	tw.Flush()

	switch {
	case a.Verified:
		fmt.Fprintf(out, "signature: valid (%s)\n", a.Curve)
	case a.Signed():
		fmt.Fprintf(out, "signature: present (%s), not checked\n", a.Curve)
	default:
		fmt.Fprintln(out, "signature: none")
	}

	if contents {
		fmt.Fprintln(out, "contents: all digests match")
	}
}
