package searcher

import "fmt"

// Status classifies the full-tier evaluation run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusTimeout Status = "timeout"
	StatusFailed  Status = "failed"
)

// SampleReport is the outcome of the small sample tier.
type SampleReport struct {
	SuccessRate float64 // Fraction of sample cases matched, in [0,1]
	Message     string
}

// FullReport is the outcome of the full tier.
type FullReport struct {
	Status  Status
	Message string
}

// RewardSolved is the success signal: a simulation yielding exactly
// this reward ends the search.
const RewardSolved = 1.0

// TimeoutPenalty applies whenever the full tier times out, regardless
// of the sample success rate.
const TimeoutPenalty = -0.2

const timeoutFeedback = "The solution is correct but times out; retry with a faster approach."

// shapeReward maps a two-tier evaluation onto a scalar reward and the
// feedback text recorded on the node.
func shapeReward(sample SampleReport, full FullReport) (float64, string) {
	feedback := fmt.Sprintf("Sample test results: %s\nThe full test cases: %s", sample.Message, full.Message)

	if sample.SuccessRate == 1.0 {
		if full.Status == StatusTimeout {
			return TimeoutPenalty, timeoutFeedback
		}
		return RewardSolved, feedback
	}
	if full.Status == StatusTimeout {
		return TimeoutPenalty, feedback
	}
	return sample.SuccessRate, feedback
}
