package labeling

// LabeledSample is a value with its threshold verdict.
type LabeledSample struct {
	Value float64
	Issue bool
}

// Label flags value against spec.
func Label(value float64, spec ThresholdSpec) LabeledSample {
	return LabeledSample{Value: value, Issue: spec.IsIssue(value)}
}

// LabelSeries labels each value independently; the input is not modified.
func LabelSeries(values []float64, spec ThresholdSpec) []LabeledSample {
	out := make([]LabeledSample, len(values))
	for i, v := range values {
		out[i] = Label(v, spec)
	}
	return out
}

// CountIssues returns how many samples are flagged.
func CountIssues(samples []LabeledSample) int {
	n := 0
	for _, s := range samples {
		if s.Issue {
			n++
		}
	}
	return n
}
