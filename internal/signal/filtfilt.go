package signal

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FiltFilt applies f forward and then backward so the output has no phase shift.
// The input is padded at both ends with an odd extension of PadLen samples and
// the filter state starts at the steady state for the first padded sample.
func FiltFilt(f Butterworth, x []float64) ([]float64, error) {
	edge := f.PadLen()
	if len(x) <= edge {
		return nil, &InsufficientSamplesError{Got: len(x), Need: edge}
	}
	b, a := normalize(f.B, f.A)

	zi, err := steadyState(b, a)
	if err != nil {
		return nil, err
	}

	ext := oddExtend(x, edge)

	y := lfilter(b, a, ext, scaled(zi, ext[0]))
	reverse(y)
	y = lfilter(b, a, y, scaled(zi, y[0]))
	reverse(y)

	out := make([]float64, len(x))
	copy(out, y[edge:edge+len(x)])
	return out, nil
}

// normalize pads b and a to equal length and divides through by a[0].
func normalize(b, a []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	nb := make([]float64, n)
	na := make([]float64, n)
	copy(nb, b)
	copy(na, a)
	if na[0] != 1 && na[0] != 0 {
		a0 := na[0]
		for i := range nb {
			nb[i] /= a0
			na[i] /= a0
		}
	}
	return nb, na
}

// lfilter runs the transposed direct form II recursion with initial state zi.
func lfilter(b, a, x, zi []float64) []float64 {
	n := len(a)
	z := make([]float64, n-1)
	copy(z, zi)
	y := make([]float64, len(x))
	for i, xi := range x {
		yi := b[0] * xi
		if n > 1 {
			yi += z[0]
			for j := 0; j < n-2; j++ {
				z[j] = b[j+1]*xi + z[j+1] - a[j+1]*yi
			}
			z[n-2] = b[n-1]*xi - a[n-1]*yi
		}
		y[i] = yi
	}
	return y
}

// steadyState returns the filter state reached after an infinite unit step,
// solving (I - Aᵀ) zi = b[1:] - a[1:]·b[0] with A the companion matrix of a.
func steadyState(b, a []float64) ([]float64, error) {
	n := len(a)
	if n < 2 {
		return nil, nil
	}
	m := n - 1
	lhs := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		lhs.Set(i, 0, a[i+1])
		if i+1 < m {
			lhs.Set(i, i+1, -1)
		}
	}
	lhs.Set(0, 0, lhs.At(0, 0)+1)
	for i := 1; i < m; i++ {
		lhs.Set(i, i, lhs.At(i, i)+1)
	}

	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(i, b[i+1]-a[i+1]*b[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(lhs, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("signal: steady state: %w", err)
		}
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = zi.AtVec(i)
	}
	return out, nil
}

// oddExtend reflects edge samples about each endpoint: 2*x[0]-x[edge..1] and 2*x[n-1]-x[n-2..n-1-edge].
func oddExtend(x []float64, edge int) []float64 {
	n := len(x)
	ext := make([]float64, 0, n+2*edge)
	for i := edge; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-edge; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}
	return ext
}

func scaled(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * k
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
