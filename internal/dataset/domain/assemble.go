package dataset

import (
	labeling "analyzer-training/internal/labeling/domain"
)

// ProcessedInput holds the per-register series joined by position. CurrentRaw carries the
// readings emitted in the current column; Current carries the filtered labels.
type ProcessedInput struct {
	CurrentRaw  []float64
	Current     []labeling.LabeledSample
	Voltage     []labeling.LabeledSample
	ActivePower []float64
	Frequency   []float64
}

// Lengths returns the length of every series keyed by its column.
func (in ProcessedInput) Lengths() map[string]int {
	return map[string]int{
		"current":      len(in.Current),
		"voltage":      len(in.Voltage),
		"active_power": len(in.ActivePower),
		"frequency":    len(in.Frequency),
	}
}

// AssembleProcessed joins the series row by row. All series must have the same length.
func AssembleProcessed(in ProcessedInput) ([]ProcessedRow, error) {
	n := len(in.Current)
	if len(in.Voltage) != n || len(in.ActivePower) != n || len(in.Frequency) != n {
		return nil, &DataAlignmentError{Lengths: in.Lengths()}
	}
	if len(in.CurrentRaw) != n {
		lengths := in.Lengths()
		lengths["current_raw"] = len(in.CurrentRaw)
		return nil, &DataAlignmentError{Lengths: lengths}
	}
	rows := make([]ProcessedRow, n)
	for i := 0; i < n; i++ {
		rows[i] = ProcessedRow{
			Current:      in.CurrentRaw[i],
			CurrentIssue: in.Current[i].Issue,
			Voltage:      in.Voltage[i].Value,
			VoltageIssue: in.Voltage[i].Issue,
			ActivePower:  in.ActivePower[i],
			Frequency:    in.Frequency[i],
		}
	}
	return rows, nil
}

// AssembleSynthetic serializes generated rows, preserving order.
func AssembleSynthetic(rows []SyntheticRow) ([]SyntheticRecord, error) {
	out := make([]SyntheticRecord, 0, len(rows))
	for _, row := range rows {
		record, err := ToRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// ToRecord serializes a single generated row.
func ToRecord(row SyntheticRow) (SyntheticRecord, error) {
	waveform, err := EncodeWaveform(row.VoltageWaveform)
	if err != nil {
		return SyntheticRecord{}, err
	}
	return SyntheticRecord{
		Time:        row.Time,
		VoltageL1:   waveform,
		CurrentL1:   row.Current,
		ActivePower: row.ActivePower,
		THDVoltage:  row.THDVoltage,
		Frequency:   row.Frequency,
		Target:      row.Target,
	}, nil
}
