// Package synthetic generates labeled voltage windows with injected spikes, dips and harmonics.
package synthetic

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	dataset "analyzer-training/internal/dataset/domain"
	"analyzer-training/internal/signal"
)

// ErrNilSource is returned when generation is called without a random source.
var ErrNilSource = errors.New("synthetic: nil random source")

// NewSource returns a PCG-backed source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Generator produces SyntheticRows. It holds no random state; every call takes the source.
type Generator struct {
	params    Params
	carrier   []float64
	harmonics []float64
}

// NewGenerator validates params and precomputes the unit carrier and harmonic shapes.
func NewGenerator(params Params) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := params.WindowSamples
	carrier := make([]float64, n)
	harmonics := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / params.SampleRate
		carrier[i] = math.Sin(2 * math.Pi * params.LineFrequency * t)
		for _, order := range params.HarmonicOrders {
			harmonics[i] += math.Sin(2 * math.Pi * float64(order) * params.LineFrequency * t)
		}
	}
	return &Generator{params: params, carrier: carrier, harmonics: harmonics}, nil
}

// Params returns the generator parameters.
func (g *Generator) Params() Params {
	return g.params
}

// SelectAnomalies marks AnomalyCount distinct rows, chosen without replacement.
func (g *Generator) SelectAnomalies(rng *rand.Rand) []bool {
	flags := make([]bool, g.params.NumSamples)
	for _, i := range rng.Perm(g.params.NumSamples)[:g.params.AnomalyCount()] {
		flags[i] = true
	}
	return flags
}

// Generate returns every row. Large windows should use GenerateEach.
func (g *Generator) Generate(rng *rand.Rand) ([]dataset.SyntheticRow, error) {
	rows := make([]dataset.SyntheticRow, 0, g.params.NumSamples)
	err := g.GenerateEach(rng, func(row dataset.SyntheticRow) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GenerateEach selects the anomalous rows, then generates rows in order and hands each to fn.
// Generation stops at the first error returned by fn.
func (g *Generator) GenerateEach(rng *rand.Rand, fn func(dataset.SyntheticRow) error) error {
	if rng == nil {
		return ErrNilSource
	}
	anomalous := g.SelectAnomalies(rng)
	for i, flag := range anomalous {
		if err := fn(g.GenerateRow(rng, i, flag)); err != nil {
			return err
		}
	}
	return nil
}

// GenerateRow builds row index. THD is measured on the generated waveform.
func (g *Generator) GenerateRow(rng *rand.Rand, index int, anomalous bool) dataset.SyntheticRow {
	p := g.params
	waveform := g.voltage(rng, anomalous)

	row := dataset.SyntheticRow{
		Time:            p.Start.Add(time.Duration(index) * p.Interval),
		VoltageWaveform: waveform,
		Target:          anomalous,
	}
	if anomalous {
		row.Current = uniform(rng, 0.05, 5.5) * uniform(rng, 0.7, 1.3)
		row.ActivePower = row.Current * uniform(rng, 220, 240) * uniform(rng, 0.7, 1.3)
		row.THDVoltage = uniform(rng, 5, 20)
		row.Frequency = uniform(rng, 44, 66)
	} else {
		row.Current = uniform(rng, 0.05, 5.5)
		row.ActivePower = row.Current * uniform(rng, 220, 240)
		row.THDVoltage = uniform(rng, 0, 10)
		row.Frequency = uniform(rng, 45, 65)
	}
	// The drawn THD keeps the random stream stable; the measured value replaces it.
	row.THDVoltage = signal.WaveformTHD(waveform, p.SampleRate, p.LineFrequency)
	return row
}

func (g *Generator) voltage(rng *rand.Rand, anomalous bool) []float64 {
	p := g.params
	amplitude := uniform(rng, p.VoltageMin, p.VoltageMax)
	span := p.VoltageMax - p.VoltageMin
	out := make([]float64, len(g.carrier))
	if !anomalous {
		sigma := p.NormalNoise * span
		for i, c := range g.carrier {
			out[i] = c*amplitude + rng.NormFloat64()*sigma
		}
		return out
	}

	sigma := p.AnomalyNoise * span
	harmonic := p.HarmonicLevel * amplitude
	for i, c := range g.carrier {
		out[i] = c*amplitude*spikeOrDip(rng) + g.harmonics[i]*harmonic + rng.NormFloat64()*sigma
	}
	return out
}

// spikeOrDip returns 1.3 with probability 0.1, 0.7 with probability 0.1, else 1.
func spikeOrDip(rng *rand.Rand) float64 {
	u := rng.Float64()
	switch {
	case u < 0.1:
		return 1.3
	case u < 0.2:
		return 0.7
	default:
		return 1
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
