package ui

import (
	"fmt"
	"io"

	"github.com/dackerman/trello-checklists-export/internal/export"
)

// DisplayResult prints one success or failure line for a board
func DisplayResult(w io.Writer, r export.BoardResult) {
	if !r.OK() {
		fmt.Fprintf(w, "%s unable to process board %s\n", Error("Error:"), BoardName(r.BoardID))
		fmt.Fprintf(w, "       %s\n", Subtle(r.Err.Error()))
		return
	}

	name := r.BoardID
	if r.BoardName != "" {
		name = fmt.Sprintf("%s (%s)", r.BoardName, r.BoardID)
	}
	fmt.Fprintf(w, "%s board %s successfully processed: %d cards, %d rows, %d columns\n",
		Success("Success:"), BoardName(name), r.Cards, r.Rows, r.Columns)

	if r.Collisions > 0 {
		fmt.Fprintf(w, "       %s\n", Warning(fmt.Sprintf("%d cards shared a name with another card in the same list and were overwritten", r.Collisions)))
	}
	for _, f := range r.Files {
		fmt.Fprintf(w, "       %s\n", Subtle(f))
	}
}

// DisplayResults prints every board result followed by a summary
func DisplayResults(w io.Writer, results []export.BoardResult) {
	fmt.Fprintf(w, "%s\n", Header("Trello checklist export"))

	for _, r := range results {
		DisplayResult(w, r)
	}

	failed := export.Failed(results)
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, Warning("No boards to process"))
	case failed == 0:
		fmt.Fprintf(w, "\n%s\n", Success(fmt.Sprintf("Processed %d of %d boards", len(results), len(results))))
	default:
		fmt.Fprintf(w, "\n%s\n", Error(fmt.Sprintf("%d of %d boards failed", failed, len(results))))
	}
}

// DisplayAuthorize prints the token authorization URL
func DisplayAuthorize(w io.Writer, url string) {
	fmt.Fprintln(w, Info("Open this URL in a browser to issue a token:"))
	fmt.Fprintln(w, url)
}
