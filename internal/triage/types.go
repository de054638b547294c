package triage

import (
	"fmt"
	"path/filepath"
	"strings"

	"shotsort/internal/errors"
)

// DefaultConfidenceThreshold is the routing threshold used when none is given.
const DefaultConfidenceThreshold = 0.6

// RunConfig describes one triage run. It is passed by value and never
// changes while the run is in progress.
type RunConfig struct {
	InputDir            string
	OutputDir           string
	ConfidenceThreshold float64
	Verbose             bool
}

// DefaultRunConfig returns a config with the default threshold and verbose
// logging enabled.
func DefaultRunConfig(inputDir, outputDir string) RunConfig {
	return RunConfig{
		InputDir:            inputDir,
		OutputDir:           outputDir,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Verbose:             true,
	}
}

// Validate checks the config before any filesystem work happens.
func (c RunConfig) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return errors.Mark(errors.New("input directory is required"), errors.ErrSetup)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.Mark(errors.New("output directory is required"), errors.ErrSetup)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return errors.Mark(
			errors.Newf("confidence threshold must be within [0,1], got %v", c.ConfidenceThreshold),
			errors.ErrSetup,
		)
	}
	return nil
}

// Destinations returns the three destination folders under OutputDir.
func (c RunConfig) Destinations() Destinations {
	return Destinations{
		Clean:     filepath.Join(c.OutputDir, DestinationClean.Folder()),
		Code:      filepath.Join(c.OutputDir, DestinationCode.Folder()),
		Uncertain: filepath.Join(c.OutputDir, DestinationUncertain.Folder()),
	}
}

// Destination is the bucket an image is routed to.
type Destination int

const (
	DestinationClean Destination = iota
	DestinationCode
	DestinationUncertain
)

// Folder is the subfolder name under the output directory.
func (d Destination) Folder() string {
	switch d {
	case DestinationCode:
		return "code_screenshots"
	case DestinationUncertain:
		return "uncertain_images"
	default:
		return "clean_images"
	}
}

func (d Destination) String() string {
	switch d {
	case DestinationCode:
		return "code"
	case DestinationUncertain:
		return "uncertain"
	default:
		return "clean"
	}
}

// Destinations holds the absolute or caller-relative destination paths.
type Destinations struct {
	Clean     string
	Code      string
	Uncertain string
}

// Path returns the folder for d.
func (d Destinations) Path(dest Destination) string {
	switch dest {
	case DestinationCode:
		return d.Code
	case DestinationUncertain:
		return d.Uncertain
	default:
		return d.Clean
	}
}

// All lists the folders in clean, code, uncertain order.
func (d Destinations) All() []string {
	return []string{d.Clean, d.Code, d.Uncertain}
}

// Outcome is where a processed image ended up, including failure.
type Outcome int

const (
	OutcomeClean Outcome = iota
	OutcomeCode
	OutcomeUncertain
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCode:
		return "code"
	case OutcomeUncertain:
		return "uncertain"
	case OutcomeError:
		return "error"
	default:
		return "clean"
	}
}

// MarshalText lets outcomes appear by name in the manifest.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses the names produced by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "clean":
		*o = OutcomeClean
	case "code":
		*o = OutcomeCode
	case "uncertain":
		*o = OutcomeUncertain
	case "error":
		*o = OutcomeError
	default:
		return errors.Newf("unknown outcome %q", text)
	}
	return nil
}

func outcomeFor(d Destination) Outcome {
	switch d {
	case DestinationCode:
		return OutcomeCode
	case DestinationUncertain:
		return OutcomeUncertain
	default:
		return OutcomeClean
	}
}

// RunStats counts run outcomes. Every processed image lands in exactly one
// of Clean, Code, Uncertain or Errors, so their sum equals the number of
// images processed so far and equals Total once the run completes.
type RunStats struct {
	Total     int `json:"total"`
	Clean     int `json:"clean"`
	Code      int `json:"code"`
	Uncertain int `json:"uncertain"`
	Errors    int `json:"errors"`
}

// NewRunStats returns zeroed counters for a run over total images.
func NewRunStats(total int) RunStats {
	if total < 0 {
		total = 0
	}
	return RunStats{Total: total}
}

// Accounted is the number of images that reached an outcome.
func (s RunStats) Accounted() int {
	return s.Clean + s.Code + s.Uncertain + s.Errors
}

// Balanced reports whether the counters account for exactly processed images.
func (s RunStats) Balanced(processed int) bool {
	return s.Accounted() == processed
}

func (s *RunStats) record(o Outcome) {
	switch o {
	case OutcomeClean:
		s.Clean++
	case OutcomeCode:
		s.Code++
	case OutcomeUncertain:
		s.Uncertain++
	default:
		s.Errors++
	}
}

// ProgressEvent is emitted once per processed image, errors included.
type ProgressEvent struct {
	Fraction  float64
	Message   string
	Processed int
	Total     int
	Outcome   Outcome
}

func newProgressEvent(index, total int, outcome Outcome) ProgressEvent {
	processed := index + 1
	return ProgressEvent{
		Fraction:  float64(processed) / float64(total),
		Message:   fmt.Sprintf("processed %d/%d", processed, total),
		Processed: processed,
		Total:     total,
		Outcome:   outcome,
	}
}

// Record is the per-image outcome kept for the manifest.
type Record struct {
	Name        string             `json:"name"`
	Outcome     Outcome            `json:"outcome"`
	Label       string             `json:"label,omitempty"`
	Confidence  float64            `json:"confidence,omitempty"`
	Scores      map[string]float64 `json:"scores,omitempty"`
	Destination string             `json:"destination,omitempty"`
	Camera      string             `json:"camera,omitempty"`
	Taken       string             `json:"taken,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// Completion resolves a run started with Engine.Start. Exactly one of Report
// (with Err nil) or Err is meaningful.
type Completion struct {
	Report SummaryReport
	Err    error
}
