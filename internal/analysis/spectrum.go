package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mppinav/internal/dynamo"
)

var ErrShortSignal = errors.New("analysis: signal too short")

// PowerSpectrum returns the one-sided power of signal after removing its
// mean, and the frequency in Hz of each bin for sample period dt.
func PowerSpectrum(signal []float64, dt float64) (freqs, power []float64, err error) {
	n := len(signal)
	if n < 4 {
		return nil, nil, ErrShortSignal
	}

	centered := make([]float64, n)
	copy(centered, signal)
	floats.AddConst(-stat.Mean(signal, nil), centered)

	coeffs := fft.FFTReal(centered)
	bins := n/2 + 1
	freqs = make([]float64, bins)
	power = make([]float64, bins)
	for k := 0; k < bins; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		a := cmplx.Abs(coeffs[k])
		power[k] = a * a / float64(n)
	}
	return freqs, power, nil
}

// HighFrequencyRatio is the share of signal power at or above cutoff Hz.
// A constant signal has ratio 0.
func HighFrequencyRatio(signal []float64, dt, cutoff float64) (float64, error) {
	freqs, power, err := PowerSpectrum(signal, dt)
	if err != nil {
		return 0, err
	}
	total := floats.Sum(power)
	if total == 0 {
		return 0, nil
	}
	high := 0.0
	for k, f := range freqs {
		if f >= cutoff {
			high += power[k]
		}
	}
	return high / total, nil
}

// Chatter measures the high-frequency share of the wheel commands. It
// needs a fixed tick period, and reports the worse of the two wheels.
type Chatter struct {
	name   string
	dt     float64
	cutoff float64
	left   []float64
	right  []float64
}

func NewChatter(dt, cutoff float64) *Chatter {
	return &Chatter{name: "chatter", dt: dt, cutoff: cutoff}
}

func (c *Chatter) Name() string { return c.name }

func (c *Chatter) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(u) < dynamo.ControlDim {
		return
	}
	c.left = append(c.left, u[0])
	c.right = append(c.right, u[1])
}

func (c *Chatter) Value() float64 {
	l, errL := HighFrequencyRatio(c.left, c.dt, c.cutoff)
	r, errR := HighFrequencyRatio(c.right, c.dt, c.cutoff)
	if errL != nil || errR != nil {
		return 0
	}
	return max(l, r)
}

func (c *Chatter) Reset() {
	c.left = c.left[:0]
	c.right = c.right[:0]
}
