// internal/adapters/output/writer.go
package output

import (
	"bufio"
	"fmt"
	"io"

	"subsweep/internal/core/domain"
)

// WriteHostnames prints each discovered hostname on its own line. The
// hostnames in a RunSummary are already deduplicated and sorted, so the
// output is stable across runs.
func WriteHostnames(w io.Writer, summary *domain.RunSummary) error {
	bw := bufio.NewWriter(w)
	for _, h := range summary.Hostnames {
		if _, err := fmt.Fprintln(bw, h); err != nil {
			return fmt.Errorf("failed to write hostname: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
