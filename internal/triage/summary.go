package triage

import (
	"fmt"
	"strings"
	"time"
)

// SummaryReport is the read-only result of a finished run.
type SummaryReport struct {
	Stats        RunStats
	Elapsed      time.Duration
	Throughput   float64
	Destinations Destinations
	// NoImages is set when discovery produced nothing to process.
	NoImages bool
}

// BuildSummary packages final counters for presentation. It trusts stats as
// the only source of truth and never looks at the filesystem.
func BuildSummary(stats RunStats, elapsed time.Duration, dests Destinations) SummaryReport {
	return SummaryReport{
		Stats:        stats,
		Elapsed:      elapsed,
		Throughput:   Throughput(stats.Total, elapsed),
		Destinations: dests,
		NoImages:     stats.Total == 0,
	}
}

// Throughput is images per second, or 0 when no time elapsed.
func Throughput(total int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(total) / elapsed.Seconds()
}

// NoImagesMessage is the completion text for an empty input folder.
const NoImagesMessage = "No images found in the selected folder."

// Message renders the multi-line completion text shown after a run.
func (r SummaryReport) Message() string {
	if r.NoImages {
		return NoImagesMessage
	}

	var b strings.Builder
	b.WriteString("Classification finished.\n\n")
	b.WriteString("STATISTICS:\n")
	fmt.Fprintf(&b, "- Processed: %d images\n", r.Stats.Total)
	fmt.Fprintf(&b, "- Clean images: %d\n", r.Stats.Clean)
	fmt.Fprintf(&b, "- Code screenshots: %d\n", r.Stats.Code)
	fmt.Fprintf(&b, "- Uncertain (low confidence): %d\n", r.Stats.Uncertain)
	if r.Stats.Errors > 0 {
		fmt.Fprintf(&b, "- Errors: %d\n", r.Stats.Errors)
	}
	fmt.Fprintf(&b, "- Time: %.1fs (%.1f img/s)\n\n", r.Elapsed.Seconds(), r.Throughput)
	b.WriteString("FOLDERS:\n")
	fmt.Fprintf(&b, "- Clean: %s\n", r.Destinations.Clean)
	fmt.Fprintf(&b, "- Code: %s\n", r.Destinations.Code)
	fmt.Fprintf(&b, "- Uncertain: %s\n\n", r.Destinations.Uncertain)
	fmt.Fprintf(&b, "TIP: check the '%s' folder to sort low-confidence images by hand.", DestinationUncertain.Folder())
	return b.String()
}
