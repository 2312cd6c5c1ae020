package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ochairo/depack/internal/domain/entities"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
)

// printSummary writes a short human-readable report of a resolution
func printSummary(w io.Writer, res *entities.Resolution, showCollisions bool) {
	_, _ = successColor.Fprintf(w, "✓ Resolved %d entries", len(res.Entries))
	_, _ = fmt.Fprintf(w, " from %d archives", len(res.Archives))
	if res.Excluded > 0 {
		_, _ = fmt.Fprintf(w, ", %d excluded", res.Excluded)
	}
	if n := len(res.Collisions); n > 0 {
		_, _ = warnColor.Fprintf(w, ", %d collisions (first declared kept)", n)
	}
	_, _ = fmt.Fprintln(w)

	if !showCollisions {
		return
	}
	for _, c := range res.Collisions {
		_, _ = fmt.Fprintf(w, "  %s\n", c.Path)
		_, _ = dimColor.Fprintf(w, "    kept      %s (%s)\n", c.KeptArchive, c.KeptSource)
		_, _ = dimColor.Fprintf(w, "    discarded %s (%s)\n", c.DiscardedArchive, c.DiscardedSource)
	}
}
