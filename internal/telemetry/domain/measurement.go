package telemetry

import (
	"context"
	"strconv"
)

// RegisterID identifies the meter register a reading came from.
type RegisterID int

const (
	RegisterCurrent     RegisterID = 1006
	RegisterActivePower RegisterID = 1007
	RegisterVoltage     RegisterID = 1009
	RegisterFrequency   RegisterID = 1010
)

// Registers lists the supported registers in column order.
var Registers = []RegisterID{RegisterCurrent, RegisterActivePower, RegisterVoltage, RegisterFrequency}

// ParseRegisterID resolves a register string to a supported register.
func ParseRegisterID(value string) (RegisterID, bool) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	id := RegisterID(n)
	return id, id.Valid()
}

// Valid returns true when the register is one of the four supported ones.
func (r RegisterID) Valid() bool {
	switch r {
	case RegisterCurrent, RegisterActivePower, RegisterVoltage, RegisterFrequency:
		return true
	default:
		return false
	}
}

func (r RegisterID) String() string {
	return strconv.Itoa(int(r))
}

// Quantity names the physical quantity behind the register.
func (r RegisterID) Quantity() string {
	switch r {
	case RegisterCurrent:
		return "current"
	case RegisterActivePower:
		return "active_power"
	case RegisterVoltage:
		return "voltage"
	case RegisterFrequency:
		return "frequency"
	default:
		return "unknown"
	}
}

// RawRecord is one parsed telemetry event. An empty field means it was absent from the blob.
type RawRecord struct {
	StartRegister string `json:"start_register"`
	RawData       string `json:"raw_data"`
}

// TelemetrySample is a converted reading. SequenceIndex is its arrival position in the window.
type TelemetrySample struct {
	RegisterID    RegisterID
	RawValue      float64
	SequenceIndex int
}

// RegisterSeries holds one register's samples in arrival order.
type RegisterSeries struct {
	RegisterID RegisterID
	Samples    []TelemetrySample
}

// Values returns the raw values in order.
func (s RegisterSeries) Values() []float64 {
	out := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		out[i] = sample.RawValue
	}
	return out
}

// Len returns the number of samples.
func (s RegisterSeries) Len() int {
	return len(s.Samples)
}

// RecordStore buffers raw records per collection window.
type RecordStore interface {
	Append(ctx context.Context, window string, records []RawRecord) error
	List(ctx context.Context, window string) ([]RawRecord, error)
}
