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

// Package cftraj reads, writes, converts, and analyzes collections of
// trajectories (time-ordered sequences of positions, such as drifting buoy
// tracks) stored according to the Climate and Forecast (CF) "trajectory"
// conventions. It supports the two-dimensional array representation, the
// one-dimensional representation with a shared sample-time coordinate, and
// the contiguous and indexed ragged-array representations.
package cftraj

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ctessum/sparse"
)

// Layout identifies one of the CF trajectory array representations.
type Layout int

const (
	// Layout2D uses one array dimension per trajectory and one per
	// observation index.
	Layout2D Layout = iota

	// Layout1D shares a single vector of sample times among all
	// trajectories.
	Layout1D

	// LayoutContiguous packs all trajectories into a single sample
	// dimension, with a per-trajectory count variable.
	LayoutContiguous

	// LayoutIndexed packs all trajectories into a single sample dimension,
	// with a per-sample trajectory index variable.
	LayoutIndexed
)

func (l Layout) String() string {
	switch l {
	case Layout2D:
		return "2d"
	case Layout1D:
		return "1d"
	case LayoutContiguous:
		return "contiguous"
	case LayoutIndexed:
		return "indexed"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout converts a layout name to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "2d":
		return Layout2D, nil
	case "1d":
		return Layout1D, nil
	case "contiguous":
		return LayoutContiguous, nil
	case "indexed":
		return LayoutIndexed, nil
	}
	return 0, fmt.Errorf("cftraj: invalid layout %q (must be 2d, 1d, contiguous, or indexed)", s)
}

// TimeUnits is the units string used for the time coordinate.
const TimeUnits = "seconds since 1970-01-01 00:00:00"

// Variable holds the data and metadata for one dataset variable.
// Per-observation variables have shape [trajectory, obs]; per-trajectory
// variables have shape [trajectory].
type Variable struct {
	Data        *sparse.DenseArray
	Units       string
	Description string
}

// perTrajectory reports whether the variable has one value per trajectory
// rather than one per observation.
func (v *Variable) perTrajectory() bool { return len(v.Data.Shape) == 1 }

// Dataset is an in-memory collection of trajectories sharing an observation
// dimension. Missing observations are NaN. The dataset is held in the 2D
// representation unless Is1D reports true, in which case all trajectories
// share the single time coordinate vector.
type Dataset struct {
	// IDs are the trajectory identifiers (CF cf_role=trajectory_id).
	IDs []string

	// Time holds sample times as seconds since 1970-01-01 00:00:00 UTC.
	// Shape is [trajectory, obs], or [obs] for a 1D dataset.
	Time *sparse.DenseArray

	// Vars holds the data variables, including the coordinate variables
	// (lon/lat or x/y).
	Vars map[string]*Variable

	// Attrs holds global attributes. Values must be strings or slices of
	// a NetCDF-representable numeric type.
	Attrs map[string]interface{}

	// ObsDim is the name of the observation dimension, usually "obs" or
	// "time".
	ObsDim string

	// SourceLayout records the array representation the dataset was read
	// from, when it came from a file.
	SourceLayout Layout

	// GridProj is a proj4 specification of the coordinate reference system
	// for projected (x/y) coordinates. It is empty for geographic (lon/lat)
	// or plain Cartesian coordinates.
	GridProj string
}

// NewDataset creates an empty 2D dataset with len(ids) trajectories and
// nobs observations per trajectory. All times are initialized to missing.
func NewDataset(ids []string, nobs int) *Dataset {
	return &Dataset{
		IDs:    ids,
		Time:   nanDense(len(ids), nobs),
		Vars:   make(map[string]*Variable),
		Attrs:  make(map[string]interface{}),
		ObsDim: "obs",
	}
}

// nanDense returns a DenseArray of the given shape with all elements set
// to NaN.
func nanDense(dims ...int) *sparse.DenseArray {
	a := sparse.ZerosDense(dims...)
	for i := range a.Elements {
		a.Elements[i] = math.NaN()
	}
	return a
}

// setDense stores val at the given index. The pinned sparse.DenseArray.Set
// silently drops zero values, so elements are written directly.
func setDense(a *sparse.DenseArray, val float64, index ...int) {
	a.Elements[a.Index1d(index...)] = val
}

// NumTrajectories returns the number of trajectories in the dataset.
func (d *Dataset) NumTrajectories() int { return len(d.IDs) }

// NumObs returns the length of the observation dimension.
func (d *Dataset) NumObs() int {
	if d.Is1D() {
		return d.Time.Shape[0]
	}
	return d.Time.Shape[1]
}

// Is1D reports whether the sample times are a single shared coordinate
// vector.
func (d *Dataset) Is1D() bool { return len(d.Time.Shape) == 1 }

// Is2D reports whether the sample times vary per trajectory.
func (d *Dataset) Is2D() bool { return len(d.Time.Shape) == 2 }

// AddVar adds a data variable to the dataset. Per-observation data must
// have shape [NumTrajectories, NumObs] and per-trajectory data must have
// shape [NumTrajectories].
func (d *Dataset) AddVar(name, units, description string, data *sparse.DenseArray) error {
	switch len(data.Shape) {
	case 1:
		if data.Shape[0] != d.NumTrajectories() {
			return fmt.Errorf("cftraj: variable %s has %d values for %d trajectories",
				name, data.Shape[0], d.NumTrajectories())
		}
	case 2:
		if data.Shape[0] != d.NumTrajectories() || data.Shape[1] != d.NumObs() {
			return fmt.Errorf("cftraj: variable %s has shape %v, want [%d %d]",
				name, data.Shape, d.NumTrajectories(), d.NumObs())
		}
	default:
		return fmt.Errorf("cftraj: variable %s has %d dimensions, want 1 or 2",
			name, len(data.Shape))
	}
	d.Vars[name] = &Variable{Data: data, Units: units, Description: description}
	return nil
}

// xNames and yNames are the recognized names for the horizontal coordinate
// variables, in order of preference.
var (
	xNames = []string{"lon", "longitude", "x", "X"}
	yNames = []string{"lat", "latitude", "y", "Y"}
)

// XName returns the name of the x (or longitude) coordinate variable.
func (d *Dataset) XName() (string, error) {
	for _, n := range xNames {
		if _, ok := d.Vars[n]; ok {
			return n, nil
		}
	}
	return "", fmt.Errorf("cftraj: could not determine x / lon variable")
}

// YName returns the name of the y (or latitude) coordinate variable.
func (d *Dataset) YName() (string, error) {
	for _, n := range yNames {
		if _, ok := d.Vars[n]; ok {
			return n, nil
		}
	}
	return "", fmt.Errorf("cftraj: could not determine y / lat variable")
}

// X returns the x (or longitude) coordinate variable.
func (d *Dataset) X() (*Variable, error) {
	n, err := d.XName()
	if err != nil {
		return nil, err
	}
	return d.Vars[n], nil
}

// Y returns the y (or latitude) coordinate variable.
func (d *Dataset) Y() (*Variable, error) {
	n, err := d.YName()
	if err != nil {
		return nil, err
	}
	return d.Vars[n], nil
}

// timeSeconds returns the sample time for trajectory i, observation j as
// seconds since the epoch (NaN if missing).
func (d *Dataset) timeSeconds(i, j int) float64 {
	if d.Is1D() {
		return d.Time.Get(j)
	}
	return d.Time.Get(i, j)
}

// TimeAt returns the sample time for trajectory i, observation j. The
// second return value is false if the observation is missing.
func (d *Dataset) TimeAt(i, j int) (time.Time, bool) {
	s := d.timeSeconds(i, j)
	if math.IsNaN(s) {
		return time.Time{}, false
	}
	return timeFromSeconds(s), true
}

// SetTimeAt sets the sample time for trajectory i, observation j.
func (d *Dataset) SetTimeAt(i, j int, t time.Time) {
	if d.Is1D() {
		setDense(d.Time, secondsFromTime(t), j)
		return
	}
	setDense(d.Time, secondsFromTime(t), i, j)
}

func secondsFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func timeFromSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second))).UTC()
}

// valid reports whether trajectory i has a usable observation at index j,
// meaning its sample time and (if present) x coordinate are not missing.
func (d *Dataset) valid(i, j int) bool {
	if math.IsNaN(d.timeSeconds(i, j)) {
		return false
	}
	if x, err := d.X(); err == nil {
		return !math.IsNaN(x.Data.Get(i, j))
	}
	return true
}

// IndexOfLast returns the index of the last valid observation along each
// trajectory, or -1 for trajectories with no valid observations.
func (d *Dataset) IndexOfLast() []int {
	last := make([]int, d.NumTrajectories())
	for i := range last {
		last[i] = -1
		for j := d.NumObs() - 1; j >= 0; j-- {
			if d.valid(i, j) {
				last[i] = j
				break
			}
		}
	}
	return last
}

// validCount returns the number of valid observations in trajectory i.
func (d *Dataset) validCount(i int) int {
	n := 0
	for j := 0; j < d.NumObs(); j++ {
		if d.valid(i, j) {
			n++
		}
	}
	return n
}

// validIndices returns the indices of the valid observations in
// trajectory i, in order.
func (d *Dataset) validIndices(i int) []int {
	var idx []int
	for j := 0; j < d.NumObs(); j++ {
		if d.valid(i, j) {
			idx = append(idx, j)
		}
	}
	return idx
}

// Copy returns a deep copy of the dataset.
func (d *Dataset) Copy() *Dataset {
	o := &Dataset{
		IDs:          append([]string(nil), d.IDs...),
		Time:         d.Time.Copy(),
		Vars:         make(map[string]*Variable, len(d.Vars)),
		Attrs:        make(map[string]interface{}, len(d.Attrs)),
		ObsDim:       d.ObsDim,
		SourceLayout: d.SourceLayout,
		GridProj:     d.GridProj,
	}
	for n, v := range d.Vars {
		o.Vars[n] = &Variable{Data: v.Data.Copy(), Units: v.Units, Description: v.Description}
	}
	for k, v := range d.Attrs {
		o.Attrs[k] = v
	}
	return o
}

// obsVarNames returns the names of the per-observation variables in
// alphabetical order, so operations visit variables deterministically.
func (d *Dataset) obsVarNames() []string {
	var names []string
	for n, v := range d.Vars {
		if !v.perTrajectory() {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// trajVarNames returns the names of the per-trajectory variables in
// alphabetical order.
func (d *Dataset) trajVarNames() []string {
	var names []string
	for n, v := range d.Vars {
		if v.perTrajectory() {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
