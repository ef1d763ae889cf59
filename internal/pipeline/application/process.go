package application

import (
	"fmt"

	dataset "analyzer-training/internal/dataset/domain"
	labeling "analyzer-training/internal/labeling/domain"
	"analyzer-training/internal/signal"
	telemetry "analyzer-training/internal/telemetry/domain"
)

// Processor turns one window of raw records into processed rows. It holds no mutable state.
type Processor struct {
	filter  *signal.BandFilter
	current labeling.ThresholdSpec
	voltage labeling.ThresholdSpec
}

// ProcessedResult is the output of Processor.Process.
type ProcessedResult struct {
	Rows          []dataset.ProcessedRow
	Dropped       []*telemetry.ParseError
	Lengths       map[string]int
	CurrentIssues int
	VoltageIssues int
	VoltageTHD    float64
}

// NewProcessor validates the thresholds and binds the filter.
func NewProcessor(filter *signal.BandFilter, current, voltage labeling.ThresholdSpec) (*Processor, error) {
	if filter == nil {
		return nil, fmt.Errorf("pipeline: %w: nil band filter", signal.ErrInvalidFilterConfig)
	}
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := voltage.Validate(); err != nil {
		return nil, err
	}
	return &Processor{filter: filter, current: current, voltage: voltage}, nil
}

// Process converts, filters current, labels current and voltage and joins the four series by
// position. The current column keeps the raw reading; only its issue flag comes from the filtered
// series. Records that cannot be converted are dropped and reported.
func (p *Processor) Process(records []telemetry.RawRecord) (ProcessedResult, error) {
	samples, dropped := telemetry.ConvertAll(records)
	series := telemetry.SplitByRegister(samples)

	currentRaw := series[telemetry.RegisterCurrent].Values()
	voltageRaw := series[telemetry.RegisterVoltage].Values()
	result := ProcessedResult{
		Dropped: dropped,
		Lengths: map[string]int{
			"current":      len(currentRaw),
			"voltage":      len(voltageRaw),
			"active_power": series[telemetry.RegisterActivePower].Len(),
			"frequency":    series[telemetry.RegisterFrequency].Len(),
		},
		VoltageTHD: signal.THD(voltageRaw),
	}

	filtered, err := p.filter.Apply(currentRaw)
	if err != nil {
		return result, fmt.Errorf("pipeline: filter current: %w", err)
	}
	current := labeling.LabelSeries(filtered, p.current)
	voltage := labeling.LabelSeries(voltageRaw, p.voltage)
	result.CurrentIssues = labeling.CountIssues(current)
	result.VoltageIssues = labeling.CountIssues(voltage)

	rows, err := dataset.AssembleProcessed(dataset.ProcessedInput{
		CurrentRaw:  currentRaw,
		Current:     current,
		Voltage:     voltage,
		ActivePower: series[telemetry.RegisterActivePower].Values(),
		Frequency:   series[telemetry.RegisterFrequency].Values(),
	})
	if err != nil {
		return result, fmt.Errorf("pipeline: assemble: %w", err)
	}
	result.Rows = rows
	return result, nil
}
