package logic

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

type stats struct {
	plan     *plan
	archive  int64
	duration time.Duration
}

func printStats(w io.Writer, s stats) {
	var encrypted int

	for _, src := range s.plan.sources {
		if src.Encrypt {
			encrypted++
		}
	}

	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Scanned:   %d\n", s.plan.scanned)
	fmt.Fprintf(w, "  Excluded:  %d\n", max(0, s.plan.scanned-len(s.plan.sources)))
	fmt.Fprintf(w, "  Packed:    %d\n", len(s.plan.sources))
	fmt.Fprintf(w, "  Encrypted: %d\n", encrypted)
	fmt.Fprintf(w, "  Removals:  %d\n", len(s.plan.removals))
	//nolint:gosec // sizes are always non-negative
	fmt.Fprintf(w, "  Input:     %s\n", humanize.IBytes(uint64(max(0, s.plan.size))))

	if s.archive > 0 {
		fmt.Fprintf(w, "  Archive:   %s\n", humanize.IBytes(uint64(s.archive))) //nolint:gosec // positive
	}

	fmt.Fprintf(w, "  Duration:  %s\n", s.duration.Round(time.Millisecond))
}
