// Package filter implements polynomial smoothing for short control sequences.
package filter

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrWindow = errors.New("filter: invalid window")

// SavGol is a Savitzky-Golay smoother. Each output sample is the value at
// that position of a least-squares polynomial of the given degree fitted to
// a window of neighbours. Samples closer to the ends than half a window are
// taken from the polynomial fitted to the first or last full window.
type SavGol struct {
	window int
	degree int
	hat    *mat.Dense // window x window projection onto the polynomial basis
}

func NewSavGol(window, degree int) (*SavGol, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("%w: length %d must be odd and positive", ErrWindow, window)
	}
	if degree < 0 || degree >= window {
		return nil, fmt.Errorf("%w: degree %d must be below window %d", ErrWindow, degree, window)
	}

	half := window / 2
	vander := mat.NewDense(window, degree+1, nil)
	for i := 0; i < window; i++ {
		z := float64(i - half)
		p := 1.0
		for j := 0; j <= degree; j++ {
			vander.Set(i, j, p)
			p *= z
		}
	}

	eye := mat.NewDense(window, window, nil)
	for i := 0; i < window; i++ {
		eye.Set(i, i, 1)
	}

	var pinv mat.Dense
	if err := pinv.Solve(vander, eye); err != nil {
		return nil, fmt.Errorf("savgol basis: %w", err)
	}

	hat := mat.NewDense(window, window, nil)
	hat.Mul(vander, &pinv)

	return &SavGol{window: window, degree: degree, hat: hat}, nil
}

func (s *SavGol) Window() int { return s.window }
func (s *SavGol) Degree() int { return s.degree }

// Apply returns a smoothed copy of y. len(y) must be at least the window.
func (s *SavGol) Apply(y []float64) ([]float64, error) {
	n := len(y)
	if n < s.window {
		return nil, fmt.Errorf("%w: %d samples shorter than window %d", ErrWindow, n, s.window)
	}

	half := s.window / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var row, start int
		switch {
		case i < half:
			row, start = i, 0
		case i > n-1-half:
			row, start = i-(n-s.window), n-s.window
		default:
			row, start = half, i-half
		}
		out[i] = mat.Dot(s.hat.RowView(row), mat.NewVecDense(s.window, y[start:start+s.window]))
	}
	return out, nil
}

// OddWindow returns the largest odd window not above n.
func OddWindow(n int) int {
	if n%2 == 0 {
		return n - 1
	}
	return n
}
