package dataset

import (
	"strconv"
	"time"
)

// Column names shared with the training collaborator.
var (
	ProcessedHeader = []string{"Raw data_Current", "Current_Issue", "Raw data_Voltage", "Voltage_Issue", "Active_Power", "Frequency"}
	SyntheticHeader = []string{"Time", "Voltage_L1", "Current_L1", "Active_Power_L1", "THD_Voltage_L1", "Frequency", "target"}
)

// TimeLayout formats synthetic row timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// ProcessedRow is one position-aligned row of the real-data path.
type ProcessedRow struct {
	Current      float64 `json:"current"`
	CurrentIssue bool    `json:"current_issue"`
	Voltage      float64 `json:"voltage"`
	VoltageIssue bool    `json:"voltage_issue"`
	ActivePower  float64 `json:"active_power"`
	Frequency    float64 `json:"frequency"`
}

// Strings renders the row in ProcessedHeader order.
func (r ProcessedRow) Strings() []string {
	return []string{
		FormatFloat(r.Current),
		FormatFlag(r.CurrentIssue),
		FormatFloat(r.Voltage),
		FormatFlag(r.VoltageIssue),
		FormatFloat(r.ActivePower),
		FormatFloat(r.Frequency),
	}
}

// SyntheticRow is one generated minute-long window.
type SyntheticRow struct {
	Time            time.Time
	VoltageWaveform []float64
	Current         float64
	ActivePower     float64
	THDVoltage      float64
	Frequency       float64
	Target          bool
}

// SyntheticRecord is a SyntheticRow with its waveform serialized for transport.
type SyntheticRecord struct {
	Time        time.Time `json:"time"`
	VoltageL1   string    `json:"voltage_l1"`
	CurrentL1   float64   `json:"current_l1"`
	ActivePower float64   `json:"active_power_l1"`
	THDVoltage  float64   `json:"thd_voltage_l1"`
	Frequency   float64   `json:"frequency"`
	Target      bool      `json:"target"`
}

// Strings renders the record in SyntheticHeader order.
func (r SyntheticRecord) Strings() []string {
	return []string{
		r.Time.UTC().Format(TimeLayout),
		r.VoltageL1,
		FormatFloat(r.CurrentL1),
		FormatFloat(r.ActivePower),
		FormatFloat(r.THDVoltage),
		FormatFloat(r.Frequency),
		FormatFlag(r.Target),
	}
}

// FormatFloat renders the shortest decimal that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatFlag renders a label as 0 or 1.
func FormatFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
