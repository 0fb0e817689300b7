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
	"testing"
)

func TestAssignCFAttrs(t *testing.T) {
	d := testData()
	o, err := d.AssignCFAttrs(CFAttrs{
		CreatorName: "Test Author",
		Title:       "drifter tracks",
		Extra:       map[string]interface{}{"institution": "test lab"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := o.Attrs["Conventions"]; got != CFConventions {
		t.Errorf("Conventions: got %v, want %s", got, CFConventions)
	}
	if got := o.Attrs["creator_name"]; got != "Test Author" {
		t.Errorf("creator_name: got %v", got)
	}
	if got := o.Attrs["title"]; got != "drifter tracks" {
		t.Errorf("title: got %v", got)
	}
	if got := o.Attrs["institution"]; got != "test lab" {
		t.Errorf("institution: got %v", got)
	}
	if _, ok := o.Attrs["creator_email"]; ok {
		t.Error("an empty creator email should not be stamped")
	}

	latMax := o.Attrs["geospatial_lat_max"].([]float64)[0]
	if different(latMax, 60.2, 1e-9) {
		t.Errorf("geospatial_lat_max: got %g, want 60.2", latMax)
	}
	lonMin := o.Attrs["geospatial_lon_min"].([]float64)[0]
	if math.Abs(lonMin) > 1e-12 {
		t.Errorf("geospatial_lon_min: got %g, want 0", lonMin)
	}
	if got := o.Attrs["time_coverage_start"]; got != "2019-01-01T00:00:00Z" {
		t.Errorf("time_coverage_start: got %v", got)
	}
	if got := o.Attrs["time_coverage_end"]; got != "2019-01-01T03:00:00Z" {
		t.Errorf("time_coverage_end: got %v", got)
	}

	// The original is unchanged.
	if _, ok := d.Attrs["Conventions"]; ok {
		t.Error("AssignCFAttrs modified the original dataset")
	}
}

func TestNanMinMax(t *testing.T) {
	min, max := nanMinMax([]float64{math.NaN(), 3, -1, math.NaN(), 7})
	if min != -1 || max != 7 {
		t.Errorf("got (%g, %g), want (-1, 7)", min, max)
	}
	min, max = nanMinMax([]float64{math.NaN()})
	if !math.IsNaN(min) || !math.IsNaN(max) {
		t.Errorf("all-missing input should give NaN, got (%g, %g)", min, max)
	}
}
