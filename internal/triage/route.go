package triage

import "shotsort/internal/classifier"

// Route applies the threshold policy. A confidence equal to the threshold is
// decisive; anything below goes to uncertain regardless of label.
func Route(res classifier.Result, threshold float64) Destination {
	if res.Confidence >= threshold {
		if res.Label == classifier.LabelCode {
			return DestinationCode
		}
		return DestinationClean
	}
	return DestinationUncertain
}
