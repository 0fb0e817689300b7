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
	"time"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/interp"
)

// repack builds a new 2D dataset from the given per-trajectory selections
// of observation indices. Shorter selections are padded with NaN.
func (d *Dataset) repack(selected [][]int) *Dataset {
	d2 := d
	if d.Is1D() {
		d2 = d.To2D(d.obsDimName())
	}
	nobs := 0
	for _, s := range selected {
		if len(s) > nobs {
			nobs = len(s)
		}
	}
	o := d2.Copy()
	o.Time = nanDense(d2.NumTrajectories(), nobs)
	for _, name := range o.obsVarNames() {
		o.Vars[name].Data = nanDense(d2.NumTrajectories(), nobs)
	}
	for i, sel := range selected {
		for jj, j := range sel {
			setDense(o.Time, d2.timeSeconds(i, j), i, jj)
			for _, name := range o.obsVarNames() {
				setDense(o.Vars[name].Data, d2.Vars[name].Data.Get(i, j), i, jj)
			}
		}
	}
	return o
}

// SelTime selects the observations in the time window between t0 and t1
// (inclusive) in each trajectory, packing the selected observations to
// the start of the observation dimension.
func (d *Dataset) SelTime(t0, t1 time.Time) *Dataset {
	s0, s1 := secondsFromTime(t0), secondsFromTime(t1)
	selected := make([][]int, d.NumTrajectories())
	for i := range selected {
		for _, j := range d.validIndices(i) {
			if t := d.timeSeconds(i, j); t >= s0 && t <= s1 {
				selected[i] = append(selected[i], j)
			}
		}
	}
	return d.repack(selected)
}

// ISelTime selects observations by index among each trajectory's valid
// observations. Negative indices count from the last valid observation,
// so ISelTime(0, -1) selects the first and last position of each
// trajectory. Indices out of range for a trajectory are skipped.
func (d *Dataset) ISelTime(indices ...int) *Dataset {
	selected := make([][]int, d.NumTrajectories())
	for i := range selected {
		vi := d.validIndices(i)
		for _, ix := range indices {
			if ix < 0 {
				ix += len(vi)
			}
			if ix < 0 || ix >= len(vi) {
				continue
			}
			selected[i] = append(selected[i], vi[ix])
		}
	}
	return d.repack(selected)
}

// GridTime linearly interpolates every per-observation variable to the
// given shared sample times, returning a 1D dataset. Target times outside
// a trajectory's observed span become NaN.
func (d *Dataset) GridTime(times []time.Time) (*Dataset, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("cftraj: no target times given")
	}
	target := make([]float64, len(times))
	for i, t := range times {
		target[i] = secondsFromTime(t)
	}

	d2 := d
	if d.Is1D() {
		d2 = d.To2D(d.obsDimName())
	}
	ntraj := d2.NumTrajectories()

	o := d2.Copy()
	o.Time = denseFromSlice(target, len(target))
	o.ObsDim = "time"
	o.SourceLayout = Layout1D
	names := d2.obsVarNames()
	for _, name := range names {
		o.Vars[name].Data = nanDense(ntraj, len(target))
	}

	for i := 0; i < ntraj; i++ {
		vi := d2.validIndices(i)
		for _, name := range names {
			src := d2.Vars[name].Data
			// Keep only samples where both the time and the value are
			// present, with strictly increasing times.
			var xs, ys []float64
			for _, j := range vi {
				t := d2.timeSeconds(i, j)
				v := src.Get(i, j)
				if math.IsNaN(v) {
					continue
				}
				if len(xs) > 0 && t <= xs[len(xs)-1] {
					continue
				}
				xs = append(xs, t)
				ys = append(ys, v)
			}
			if len(xs) < 2 {
				continue
			}
			var pl interp.PiecewiseLinear
			if err := pl.Fit(xs, ys); err != nil {
				return nil, fmt.Errorf("cftraj: interpolating %s: %v", name, err)
			}
			for jj, t := range target {
				if t < xs[0] || t > xs[len(xs)-1] {
					continue // outside the observed span
				}
				setDense(o.Vars[name].Data, pl.Predict(t), i, jj)
			}
		}
	}
	return o, nil
}

// GridObs linearly interpolates every per-observation variable to the
// given per-trajectory sample times, returning a 2D dataset. The times
// array holds one row of target times (seconds since 1970-01-01) per
// trajectory; NaN target times and times outside a trajectory's observed
// span give missing observations.
func (d *Dataset) GridObs(times *sparse.DenseArray) (*Dataset, error) {
	if len(times.Shape) != 2 || times.Shape[0] != d.NumTrajectories() {
		return nil, fmt.Errorf("cftraj: target times have shape %v, want [%d n]",
			times.Shape, d.NumTrajectories())
	}
	nobs := times.Shape[1]

	d2 := d
	if d.Is1D() {
		d2 = d.To2D(d.obsDimName())
	}
	ntraj := d2.NumTrajectories()

	o := d2.Copy()
	o.Time = times.Copy()
	o.ObsDim = "obs"
	o.SourceLayout = Layout2D
	names := d2.obsVarNames()
	for _, name := range names {
		o.Vars[name].Data = nanDense(ntraj, nobs)
	}

	for i := 0; i < ntraj; i++ {
		vi := d2.validIndices(i)
		for _, name := range names {
			src := d2.Vars[name].Data
			var xs, ys []float64
			for _, j := range vi {
				t := d2.timeSeconds(i, j)
				v := src.Get(i, j)
				if math.IsNaN(v) {
					continue
				}
				if len(xs) > 0 && t <= xs[len(xs)-1] {
					continue
				}
				xs = append(xs, t)
				ys = append(ys, v)
			}
			if len(xs) < 2 {
				continue
			}
			var pl interp.PiecewiseLinear
			if err := pl.Fit(xs, ys); err != nil {
				return nil, fmt.Errorf("cftraj: interpolating %s: %v", name, err)
			}
			for jj := 0; jj < nobs; jj++ {
				t := times.Get(i, jj)
				if math.IsNaN(t) || t < xs[0] || t > xs[len(xs)-1] {
					continue
				}
				setDense(o.Vars[name].Data, pl.Predict(t), i, jj)
			}
		}
	}
	return o, nil
}

// GridTimeStep interpolates the dataset to a regular time interval
// spanning its time coverage, with sample times aligned to multiples of
// step.
func (d *Dataset) GridTimeStep(step time.Duration) (*Dataset, error) {
	if step <= 0 {
		return nil, fmt.Errorf("cftraj: time step must be positive, got %v", step)
	}
	t0, t1, ok := d.timeCoverage()
	if !ok {
		return nil, fmt.Errorf("cftraj: dataset has no valid sample times")
	}
	var times []time.Time
	for t := t0.Truncate(step); !t.After(t1); t = t.Add(step) {
		times = append(times, t)
	}
	return d.GridTime(times)
}
