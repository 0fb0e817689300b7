/*
Copyright © 2024 the cftraj authors.
This file is part of cftraj.

cftraj is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cftraj is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cftraj.  If not, see <http://www.gnu.org/licenses/>.
*/

package cftraj

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// VelocitySpectrum returns the power spectrum of the speed along each
// trajectory. The dataset must be sampled at a fixed time step (use
// GridTime first). The returned frequencies are in cycles per second and
// the power array has shape [trajectory, frequency]. Speeds are demeaned
// before the transform, and missing values are treated as zero anomaly.
func (d *Dataset) VelocitySpectrum() (freqs []float64, power *sparse.DenseArray, err error) {
	dt, err := d.fixedTimeStep()
	if err != nil {
		return nil, nil, err
	}
	speed, err := d.Speed()
	if err != nil {
		return nil, nil, err
	}

	ntraj, nobs := speed.Shape[0], speed.Shape[1]
	if nobs < 2 {
		return nil, nil, fmt.Errorf("cftraj: at least 2 observations are needed for a spectrum, have %d", nobs)
	}
	fft := fourier.NewFFT(nobs)
	nfreq := nobs/2 + 1
	power = sparse.ZerosDense(ntraj, nfreq)
	seq := make([]float64, nobs)
	for i := 0; i < ntraj; i++ {
		var valid []float64
		for j := 0; j < nobs; j++ {
			if v := speed.Get(i, j); !math.IsNaN(v) && !math.IsInf(v, 0) {
				valid = append(valid, v)
			}
		}
		mean := 0.0
		if len(valid) > 0 {
			mean = stat.Mean(valid, nil)
		}
		for j := 0; j < nobs; j++ {
			v := speed.Get(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				seq[j] = 0
			} else {
				seq[j] = v - mean
			}
		}
		coeff := fft.Coefficients(nil, seq)
		for k, c := range coeff {
			setDense(power, cmplx.Abs(c)*cmplx.Abs(c)/float64(nobs), i, k)
		}
	}

	freqs = make([]float64, nfreq)
	for k := range freqs {
		freqs[k] = fft.Freq(k) / dt
	}
	return freqs, power, nil
}

// fixedTimeStep returns the dataset's sampling interval in seconds,
// or an error if the sample times are not evenly spaced.
func (d *Dataset) fixedTimeStep() (float64, error) {
	const tol = 1e-6
	dt := d.TimeToNext()
	var step float64
	ntraj, nobs := dt.Shape[0], dt.Shape[1]
	for i := 0; i < ntraj; i++ {
		for j := 0; j < nobs-1; j++ {
			v := dt.Get(i, j)
			if math.IsNaN(v) {
				continue
			}
			if step == 0 {
				step = v
			} else if math.Abs(v-step) > tol*step {
				return 0, fmt.Errorf("cftraj: sample times are not evenly spaced (%g s vs %g s); use GridTime first", v, step)
			}
		}
	}
	if step <= 0 {
		return 0, fmt.Errorf("cftraj: could not determine the sampling interval")
	}
	return step, nil
}
