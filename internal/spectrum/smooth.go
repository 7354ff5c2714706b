package spectrum

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-dsp/dsp/conv"
	"github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// Kernel selects the smoothing kernel applied before channels are averaged.
type Kernel string

const (
	Boxcar   Kernel = "boxcar"
	Hanning  Kernel = "hanning"
	Gaussian Kernel = "gaussian"
)

// ErrUnknownKernel is returned for an unsupported smoothing kernel.
var ErrUnknownKernel = errors.New("spectrum: unknown smoothing kernel")

// ParseKernel parses a kernel name; an empty name selects Boxcar.
func ParseKernel(s string) (Kernel, error) {
	switch k := Kernel(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Boxcar, nil
	case Boxcar, Hanning, Gaussian:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKernel, s)
	}
}

// SmoothingFactor returns how many channels of the given width make up the
// target resolution. Both are in axis units; the sign of width is ignored.
func SmoothingFactor(resolution, width float64) int {
	width = math.Abs(width)
	if width == 0 || resolution <= 0 {
		return 1
	}
	return max(1, int(math.Round(resolution/width)))
}

// Smooth degrades the spectral resolution to resolution (axis units) by
// averaging groups of adjacent channels. A trailing partial group is dropped.
// When the resolution does not exceed the channel width the spectrum is
// returned unchanged.
func (s *Spectrum) Smooth(resolution float64, kernel Kernel) (*Spectrum, error) {
	n := SmoothingFactor(resolution, s.ChannelWidth())
	if n <= 1 {
		return s.Clone(), nil
	}
	if n > s.Len() {
		return nil, fmt.Errorf("smoothing to %g %s needs %d channels, spectrum has %d", resolution, s.Axis, n, s.Len())
	}

	var weights []float64
	var err error
	switch kernel {
	case Boxcar, "":
	case Hanning:
		weights, err = hanningKernel(n)
	case Gaussian:
		weights, err = gaussianKernel(n)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, string(kernel))
	}
	if err != nil {
		return nil, fmt.Errorf("building %s kernel: %w", kernel, err)
	}

	y := s.Y
	if weights != nil {
		if y, err = convolve(s.Y, weights); err != nil {
			return nil, err
		}
	}

	out := s.Clone()
	out.X = blockMean(s.X, n)
	out.Y = blockMean(y, n)
	return out, nil
}

// blockMean averages consecutive groups of n values, ignoring NaN.
func blockMean(src []float64, n int) []float64 {
	m := len(src) / n
	out := make([]float64, m)

	if hasNaN(src[:m*n]) {
		for i := range out {
			var sum float64
			var count int
			for _, v := range src[i*n : (i+1)*n] {
				if !math.IsNaN(v) {
					sum += v
					count++
				}
			}
			if count == 0 {
				out[i] = math.NaN()
			} else {
				out[i] = sum / float64(count)
			}
		}
		return out
	}

	// Sum the j-th member of every group as one strided column.
	column := make([]float64, m)
	for j := 0; j < n; j++ {
		for i := range column {
			column[i] = src[i*n+j]
		}
		vecmath.AddBlockInPlace(out, column)
	}
	vecmath.ScaleBlock(out, out, 1/float64(n))
	return out
}

// convolve applies a normalized kernel centred on each channel. Samples
// outside the spectrum or blanked are left out of the normalization.
func convolve(src, kernel []float64) ([]float64, error) {
	data := make([]float64, len(src))
	valid := make([]float64, len(src))
	for i, v := range src {
		if !math.IsNaN(v) {
			data[i], valid[i] = v, 1
		}
	}

	sum, err := conv.ConvolveMode(data, kernel, conv.ModeSame)
	if err != nil {
		return nil, fmt.Errorf("convolving spectrum: %w", err)
	}
	weight, err := conv.ConvolveMode(valid, kernel, conv.ModeSame)
	if err != nil {
		return nil, fmt.Errorf("convolving mask: %w", err)
	}

	// FFT convolution leaves rounding noise where no sample contributed.
	floor := 1e-9 * vecmath.Sum(kernel)
	out := make([]float64, len(src))
	for i := range out {
		if weight[i] <= floor {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum[i] / weight[i]
	}
	return out, nil
}

// hanningKernel returns n non-zero Hann weights.
func hanningKernel(n int) ([]float64, error) {
	w, err := window.Hann(n + 2)
	if err != nil {
		return nil, err
	}
	return w[1 : n+1], nil
}

// gaussianKernel returns a Gaussian with a FWHM of n channels, truncated at 3 sigma.
func gaussianKernel(n int) ([]float64, error) {
	sigma := float64(n) / (2 * math.Sqrt(2*math.Ln2))
	half := int(math.Ceil(3 * sigma))

	// The window reaches half height at alpha*|d|/half = 1.
	return window.Gaussian(2*half+1, 2*float64(half)/float64(n))
}

func hasNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
