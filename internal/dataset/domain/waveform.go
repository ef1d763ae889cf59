package dataset

import (
	"encoding/json"
	"fmt"
	"math"
)

// EncodeWaveform serializes samples as a JSON array of numbers.
// Go renders each float64 with the shortest representation that round-trips exactly.
func EncodeWaveform(samples []float64) (string, error) {
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("%w: sample %d is not finite", ErrInvalidWaveform, i)
		}
	}
	if samples == nil {
		samples = []float64{}
	}
	data, err := json.Marshal(samples)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidWaveform, err)
	}
	return string(data), nil
}

// DecodeWaveform restores samples written by EncodeWaveform.
func DecodeWaveform(s string) ([]float64, error) {
	var samples []float64
	if err := json.Unmarshal([]byte(s), &samples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWaveform, err)
	}
	if samples == nil {
		return nil, fmt.Errorf("%w: not an array", ErrInvalidWaveform)
	}
	return samples, nil
}
