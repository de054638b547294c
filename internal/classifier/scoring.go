package classifier

import (
	"fmt"
	"math"

	"shotsort/internal/errors"
)

// Label is the binary decision produced for an image.
type Label int

const (
	LabelNormal Label = iota
	LabelCode
)

func (l Label) String() string {
	if l == LabelCode {
		return "code"
	}
	return "normal"
}

// Detail score keys carried in Result.Scores.
const (
	ScoreCode   = "code_prob"
	ScoreNormal = "normal_prob"
)

// Prompts are the zero-shot descriptions every backend scores an image
// against, in this order. The first codePromptCount describe code-like
// content, the rest describe ordinary pictures.
var Prompts = []string{
	"a screenshot of code in an IDE or text editor",
	"a screenshot of programming code",
	"a terminal or command line interface",
	"a normal photo or colorful image",
	"a regular picture or photograph",
	"a meme or colorful graphic",
}

const codePromptCount = 3

// Result is the classification of a single image. It is never mutated after
// Score returns it.
type Result struct {
	Label      Label
	Confidence float64
	Scores     map[string]float64
}

// Score turns per-prompt probabilities into a Result. Each side's score is
// the maximum over its three prompts and the confidence is the larger side;
// routing thresholds are tuned against this metric, so it is not a
// calibrated two-class probability. Ties resolve to LabelNormal.
func Score(probs []float64) (Result, error) {
	if len(probs) != len(Prompts) {
		return Result{}, errors.Mark(
			errors.Newf("expected %d prompt scores, got %d", len(Prompts), len(probs)),
			errors.ErrClassification,
		)
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return Result{}, errors.Mark(
				errors.Newf("prompt score %d out of range: %v", i, p),
				errors.ErrClassification,
			)
		}
	}

	code := maxOf(probs[:codePromptCount])
	normal := maxOf(probs[codePromptCount:])

	label := LabelNormal
	if code > normal {
		label = LabelCode
	}

	return Result{
		Label:      label,
		Confidence: max(code, normal),
		Scores: map[string]float64{
			ScoreCode:   code,
			ScoreNormal: normal,
		},
	}, nil
}

// Describe renders the verbose log line for a result.
func (r Result) Describe(name string) string {
	return fmt.Sprintf("%s: code=%.3f, normal=%.3f, label=%s, confidence=%.3f",
		name, r.Scores[ScoreCode], r.Scores[ScoreNormal], r.Label, r.Confidence)
}

func maxOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		out = max(out, v)
	}
	return out
}
