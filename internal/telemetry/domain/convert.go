package telemetry

import (
	"math"
	"strconv"
)

// Convert turns a raw record into a sample. Absent, non-numeric or unknown-register
// fields produce a *ParseError; nothing is zero-filled.
func Convert(record RawRecord, sequenceIndex int) (TelemetrySample, error) {
	if record.StartRegister == "" {
		return TelemetrySample{}, &ParseError{SequenceIndex: sequenceIndex, Field: "Start register", Reason: "missing"}
	}
	register, ok := ParseRegisterID(record.StartRegister)
	if !ok {
		return TelemetrySample{}, &ParseError{SequenceIndex: sequenceIndex, Field: "Start register", Value: record.StartRegister, Reason: "unsupported register"}
	}
	if record.RawData == "" {
		return TelemetrySample{}, &ParseError{SequenceIndex: sequenceIndex, Field: "Raw data", Reason: "missing"}
	}
	value, err := strconv.ParseFloat(record.RawData, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return TelemetrySample{}, &ParseError{SequenceIndex: sequenceIndex, Field: "Raw data", Value: record.RawData, Reason: "not a finite number"}
	}
	return TelemetrySample{RegisterID: register, RawValue: value, SequenceIndex: sequenceIndex}, nil
}

// ConvertAll converts records in order, keeping the arrival index of each record.
// Records that fail conversion are returned separately.
func ConvertAll(records []RawRecord) ([]TelemetrySample, []*ParseError) {
	samples := make([]TelemetrySample, 0, len(records))
	var failures []*ParseError
	for i, record := range records {
		sample, err := Convert(record, i)
		if err != nil {
			if perr, ok := err.(*ParseError); ok {
				failures = append(failures, perr)
			}
			continue
		}
		samples = append(samples, sample)
	}
	return samples, failures
}

// SplitByRegister groups samples per register, preserving arrival order.
// Every supported register gets an entry, possibly empty.
func SplitByRegister(samples []TelemetrySample) map[RegisterID]RegisterSeries {
	out := make(map[RegisterID]RegisterSeries, len(Registers))
	for _, id := range Registers {
		out[id] = RegisterSeries{RegisterID: id}
	}
	for _, sample := range samples {
		series, ok := out[sample.RegisterID]
		if !ok {
			continue
		}
		series.Samples = append(series.Samples, sample)
		out[sample.RegisterID] = series
	}
	return out
}
