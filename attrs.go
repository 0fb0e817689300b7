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
	"math"
	"time"
)

// CFAttrs holds the optional discovery attributes that AssignCFAttrs
// stamps onto a dataset.
type CFAttrs struct {
	CreatorName  string
	CreatorEmail string
	Title        string
	Summary      string

	// Extra attributes to set verbatim.
	Extra map[string]interface{}
}

// CFConventions is the conventions version written to datasets.
const CFConventions = "CF-1.10"

// AssignCFAttrs returns a copy of the dataset with the standard CF global
// attributes set: the conventions version, the feature type, the
// geospatial bounding box, and the time coverage, plus any attributes
// given in a.
func (d *Dataset) AssignCFAttrs(a CFAttrs) (*Dataset, error) {
	lon, lat, err := d.Geographic()
	if err != nil {
		return nil, err
	}
	o := d.Copy()
	o.Attrs["Conventions"] = CFConventions

	latMin, latMax := nanMinMax(lat.Elements)
	lonMin, lonMax := nanMinMax(lon.Elements)
	o.Attrs["geospatial_lat_min"] = []float64{latMin}
	o.Attrs["geospatial_lat_max"] = []float64{latMax}
	o.Attrs["geospatial_lon_min"] = []float64{lonMin}
	o.Attrs["geospatial_lon_max"] = []float64{lonMax}

	t0, t1, ok := d.timeCoverage()
	if ok {
		o.Attrs["time_coverage_start"] = t0.Format(time.RFC3339)
		o.Attrs["time_coverage_end"] = t1.Format(time.RFC3339)
	}

	if a.CreatorName != "" {
		o.Attrs["creator_name"] = a.CreatorName
	}
	if a.CreatorEmail != "" {
		o.Attrs["creator_email"] = a.CreatorEmail
	}
	if a.Title != "" {
		o.Attrs["title"] = a.Title
	}
	if a.Summary != "" {
		o.Attrs["summary"] = a.Summary
	}
	for k, v := range a.Extra {
		o.Attrs[k] = v
	}
	return o, nil
}

// timeCoverage returns the earliest and latest valid sample times in the
// dataset.
func (d *Dataset) timeCoverage() (t0, t1 time.Time, ok bool) {
	min, max := nanMinMax(d.Time.Elements)
	if math.IsNaN(min) {
		return time.Time{}, time.Time{}, false
	}
	return timeFromSeconds(min), timeFromSeconds(max), true
}

// nanMinMax returns the minimum and maximum of v, ignoring NaN. Both
// returns are NaN if no valid values exist.
func nanMinMax(v []float64) (min, max float64) {
	min, max = math.NaN(), math.NaN()
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		if math.IsNaN(min) || x < min {
			min = x
		}
		if math.IsNaN(max) || x > max {
			max = x
		}
	}
	return min, max
}
