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

	"github.com/ctessum/sparse"
)

// raggedData is the flattened form of a dataset, used when encoding or
// decoding the CF ragged-array representations. Each per-observation
// variable becomes a single vector over the sample dimension, holding
// only valid observations.
type raggedData struct {
	// rowSizes is the number of samples belonging to each trajectory
	// (contiguous representation).
	rowSizes []int32

	// index is the trajectory index of each sample (indexed
	// representation).
	index []int32

	// time holds the sample times, and vars the per-observation
	// variables, both in sample order.
	time []float64
	vars map[string][]float64
}

// flattenRagged packs the valid observations of each trajectory, in
// trajectory order, into single vectors over a shared sample dimension.
// The result carries both the per-trajectory counts and the per-sample
// trajectory indices, so it can serve either ragged representation.
func (d *Dataset) flattenRagged() *raggedData {
	names := d.obsVarNames()
	r := &raggedData{
		rowSizes: make([]int32, d.NumTrajectories()),
		vars:     make(map[string][]float64, len(names)),
	}
	for i := 0; i < d.NumTrajectories(); i++ {
		for _, j := range d.validIndices(i) {
			r.rowSizes[i]++
			r.index = append(r.index, int32(i))
			r.time = append(r.time, d.timeSeconds(i, j))
			for _, n := range names {
				r.vars[n] = append(r.vars[n], d.Vars[n].Data.Get(i, j))
			}
		}
	}
	return r
}

// expandContiguous reconstructs 2D arrays from a contiguous ragged
// representation. The observation dimension of the result is the longest
// row; shorter trajectories are padded with NaN.
func expandContiguous(rowSizes []int32, time []float64, vars map[string][]float64) (t *sparse.DenseArray, out map[string]*sparse.DenseArray, err error) {
	ntraj := len(rowSizes)
	nobs := 0
	total := 0
	for _, n := range rowSizes {
		if n < 0 {
			return nil, nil, fmt.Errorf("cftraj: negative row size %d", n)
		}
		total += int(n)
		if int(n) > nobs {
			nobs = int(n)
		}
	}
	if total != len(time) {
		return nil, nil, fmt.Errorf("cftraj: row sizes sum to %d but there are %d samples", total, len(time))
	}

	t = nanDense(ntraj, nobs)
	out = make(map[string]*sparse.DenseArray, len(vars))
	for n := range vars {
		out[n] = nanDense(ntraj, nobs)
	}
	s := 0
	for i, n := range rowSizes {
		for j := 0; j < int(n); j++ {
			setDense(t, time[s], i, j)
			for name, v := range vars {
				setDense(out[name], v[s], i, j)
			}
			s++
		}
	}
	return t, out, nil
}

// expandIndexed reconstructs 2D arrays from an indexed ragged
// representation. Samples may appear in any order; within each trajectory
// they keep their order of appearance.
func expandIndexed(ntraj int, index []int32, time []float64, vars map[string][]float64) (t *sparse.DenseArray, out map[string]*sparse.DenseArray, err error) {
	counts := make([]int32, ntraj)
	for _, ix := range index {
		if int(ix) < 0 || int(ix) >= ntraj {
			return nil, nil, fmt.Errorf("cftraj: trajectory index %d out of range [0,%d)", ix, ntraj)
		}
		counts[ix]++
	}
	nobs := 0
	for _, n := range counts {
		if int(n) > nobs {
			nobs = int(n)
		}
	}

	t = nanDense(ntraj, nobs)
	out = make(map[string]*sparse.DenseArray, len(vars))
	for n := range vars {
		out[n] = nanDense(ntraj, nobs)
	}
	next := make([]int, ntraj)
	for s, ix := range index {
		i := int(ix)
		j := next[i]
		next[i]++
		setDense(t, time[s], i, j)
		for name, v := range vars {
			setDense(out[name], v[s], i, j)
		}
	}
	return t, out, nil
}

// Condense moves each trajectory's valid observations to the start of the
// observation dimension and trims the dimension to the longest trajectory.
// Ragged files decoded to 2D can otherwise leave each trajectory's samples
// staggered along a very long observation dimension.
func (d *Dataset) Condense() *Dataset {
	if d.Is1D() {
		return d.Copy()
	}
	r := d.flattenRagged()
	t, vars, err := expandContiguous(r.rowSizes, r.time, r.vars)
	if err != nil {
		// flattenRagged output is self-consistent.
		panic(err)
	}
	o := d.Copy()
	o.Time = t
	for n, v := range vars {
		o.Vars[n].Data = v
	}
	return o
}

// To1D converts the dataset to the 1D representation, where time is a
// shared coordinate vector. This is only possible for a dataset holding a
// single trajectory.
func (d *Dataset) To1D() (*Dataset, error) {
	if d.Is1D() {
		return d.Copy(), nil
	}
	if n := d.NumTrajectories(); n != 1 {
		return nil, fmt.Errorf("cftraj: cannot convert %d trajectories to 1D; dataset must have exactly one", n)
	}
	o := d.Copy()
	t := sparse.ZerosDense(d.NumObs())
	for j := 0; j < d.NumObs(); j++ {
		setDense(t, d.Time.Get(0, j), j)
	}
	o.Time = t
	o.ObsDim = "time"
	return o, nil
}

// To2D converts a 1D dataset to the 2D representation with the given
// observation dimension name.
func (d *Dataset) To2D(obsDim string) *Dataset {
	o := d.Copy()
	if d.Is1D() {
		t := nanDense(d.NumTrajectories(), d.NumObs())
		for i := 0; i < d.NumTrajectories(); i++ {
			for j := 0; j < d.NumObs(); j++ {
				setDense(t, d.Time.Get(j), i, j)
			}
		}
		o.Time = t
	}
	o.ObsDim = obsDim
	return o
}
