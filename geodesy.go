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

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

// earthRadius is the WGS84 mean earth radius [m].
const earthRadius = 6371008.8

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// greatCircle returns the great-circle distance [m] and the initial
// bearing [degrees clockwise from north] from (lon1,lat1) to (lon2,lat2),
// with coordinates in degrees.
func greatCircle(lon1, lat1, lon2, lat2 float64) (meters, azimuth float64) {
	φ1, φ2 := deg2rad(lat1), deg2rad(lat2)
	Δφ := φ2 - φ1
	Δλ := deg2rad(lon2 - lon1)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	meters = 2 * earthRadius * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	azimuth = math.Mod(rad2deg(math.Atan2(y, x))+360, 360)
	return meters, azimuth
}

// TimeToNext returns the time step [s] from each observation to the next
// along each trajectory. The last value is repeated so the result has the
// same shape as the dataset.
func (d *Dataset) TimeToNext() *sparse.DenseArray {
	d2 := d
	if d.Is1D() {
		d2 = d.To2D(d.obsDimName())
	}
	ntraj, nobs := d2.NumTrajectories(), d2.NumObs()
	out := nanDense(ntraj, nobs)
	for i := 0; i < ntraj; i++ {
		for j := 0; j < nobs-1; j++ {
			setDense(out, d2.timeSeconds(i, j+1)-d2.timeSeconds(i, j), i, j)
		}
		if nobs > 1 {
			setDense(out, out.Get(i, nobs-2), i, nobs-1)
		}
	}
	return out
}

// stepwise computes a per-step quantity from each position to the next
// along each trajectory, repeating the last step so the result has the
// same shape as the dataset.
func (d *Dataset) stepwise(f func(lon1, lat1, lon2, lat2 float64) float64) (*sparse.DenseArray, error) {
	lon, lat, err := d.Geographic()
	if err != nil {
		return nil, err
	}
	ntraj := d.NumTrajectories()
	nobs := d.NumObs()
	out := nanDense(ntraj, nobs)
	for i := 0; i < ntraj; i++ {
		for j := 0; j < nobs-1; j++ {
			setDense(out, f(lon.Get(i, j), lat.Get(i, j), lon.Get(i, j+1), lat.Get(i, j+1)), i, j)
		}
		if nobs > 1 {
			setDense(out, out.Get(i, nobs-2), i, nobs-1)
		}
	}
	return out, nil
}

// DistanceToNext returns the great-circle distance [m] from each position
// to the next along each trajectory. The last value is repeated along the
// observation dimension.
func (d *Dataset) DistanceToNext() (*sparse.DenseArray, error) {
	return d.stepwise(func(lon1, lat1, lon2, lat2 float64) float64 {
		m, _ := greatCircle(lon1, lat1, lon2, lat2)
		return m
	})
}

// AzimuthToNext returns the travel direction [degrees clockwise from
// north] from each position to the next along each trajectory. The last
// value is repeated along the observation dimension.
func (d *Dataset) AzimuthToNext() (*sparse.DenseArray, error) {
	return d.stepwise(func(lon1, lat1, lon2, lat2 float64) float64 {
		_, az := greatCircle(lon1, lat1, lon2, lat2)
		return az
	})
}

// Speed returns the speed [m/s] along each trajectory, calculated from
// the distance and time between consecutive positions.
func (d *Dataset) Speed() (*sparse.DenseArray, error) {
	dist, err := d.DistanceToNext()
	if err != nil {
		return nil, err
	}
	dt := d.TimeToNext()
	out := dist.Copy()
	for i := range out.Elements {
		out.Elements[i] /= dt.Elements[i]
	}
	return out, nil
}

// VelocityComponents returns the east (u) and north (v) velocity
// components [m/s] from each position to the next.
func (d *Dataset) VelocityComponents() (u, v *sparse.DenseArray, err error) {
	speed, err := d.Speed()
	if err != nil {
		return nil, nil, err
	}
	az, err := d.AzimuthToNext()
	if err != nil {
		return nil, nil, err
	}
	u = speed.Copy()
	v = speed.Copy()
	for i, s := range speed.Elements {
		θ := deg2rad(az.Elements[i])
		u.Elements[i] = s * math.Sin(θ)
		v.Elements[i] = s * math.Cos(θ)
	}
	return u, v, nil
}

// DistanceTo returns the great-circle distance [m] and the forward and
// back azimuths [degrees] between corresponding positions of d and other.
// The datasets must have the same shape.
func (d *Dataset) DistanceTo(other *Dataset) (dist, azFwd, azBack *sparse.DenseArray, err error) {
	lon1, lat1, err := d.Geographic()
	if err != nil {
		return nil, nil, nil, err
	}
	lon2, lat2, err := other.Geographic()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(lon1.Elements) != len(lon2.Elements) {
		return nil, nil, nil, fmt.Errorf("cftraj: datasets have %d and %d positions; they must match",
			len(lon1.Elements), len(lon2.Elements))
	}
	dist = nanDense(lon1.Shape...)
	azFwd = nanDense(lon1.Shape...)
	azBack = nanDense(lon1.Shape...)
	for i := range lon1.Elements {
		m, af := greatCircle(lon1.Elements[i], lat1.Elements[i], lon2.Elements[i], lat2.Elements[i])
		_, ab := greatCircle(lon2.Elements[i], lat2.Elements[i], lon1.Elements[i], lat1.Elements[i])
		dist.Elements[i] = m
		azFwd.Elements[i] = af
		azBack.Elements[i] = ab
	}
	return dist, azFwd, azBack, nil
}

// Length returns the total along-track distance [m] of each trajectory.
func (d *Dataset) Length() ([]float64, error) {
	dist, err := d.DistanceToNext()
	if err != nil {
		return nil, err
	}
	ntraj, nobs := dist.Shape[0], dist.Shape[1]
	out := make([]float64, ntraj)
	for i := 0; i < ntraj; i++ {
		// Skip the repeated final step.
		for j := 0; j < nobs-1; j++ {
			if v := dist.Get(i, j); !math.IsNaN(v) {
				out[i] += v
			}
		}
	}
	return out, nil
}

// SpeedStats returns the mean and maximum speed over all trajectories as
// dimensioned values.
func (d *Dataset) SpeedStats() (mean, max *unit.Unit, err error) {
	speed, err := d.Speed()
	if err != nil {
		return nil, nil, err
	}
	var valid []float64
	for _, v := range speed.Elements {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return nil, nil, fmt.Errorf("cftraj: no valid speeds in dataset")
	}
	return unit.New(floats.Sum(valid)/float64(len(valid)), unit.MeterPerSecond),
		unit.New(floats.Max(valid), unit.MeterPerSecond), nil
}
