package dataset

import "time"

// Kind identifies which dataset a build produced.
type Kind string

const (
	KindProcessed Kind = "processed"
	KindSynthetic Kind = "synthetic"
)

// BuildSummary describes one completed dataset build.
type BuildSummary struct {
	ID            string         `json:"id"`
	Kind          Kind           `json:"kind"`
	Window        string         `json:"window,omitempty"`
	Rows          int            `json:"rows"`
	Records       int            `json:"records,omitempty"`
	Dropped       int            `json:"dropped,omitempty"`
	CurrentIssues int            `json:"current_issues"`
	VoltageIssues int            `json:"voltage_issues"`
	Anomalies     int            `json:"anomalies,omitempty"`
	VoltageTHD    float64        `json:"voltage_thd"`
	Seed          uint64         `json:"seed,omitempty"`
	Artifacts     []string       `json:"artifacts,omitempty"`
	Lengths       map[string]int `json:"lengths,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
}

// Duration returns how long the build took.
func (s BuildSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// IssueRate returns the share of rows with either issue flag set, counted per flag.
func (s BuildSummary) IssueRate() float64 {
	if s.Rows == 0 {
		return 0
	}
	return float64(s.CurrentIssues+s.VoltageIssues) / float64(2*s.Rows)
}
