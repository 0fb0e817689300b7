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
	"time"
)

func TestCRSGeographic(t *testing.T) {
	d := testData()
	if !d.IsGeographic() {
		t.Error("lon/lat coordinates should be geographic")
	}
	sr, err := d.CRS()
	if err != nil {
		t.Fatal(err)
	}
	if sr == nil {
		t.Error("geographic coordinates should have a spatial reference")
	}
	lon, lat, err := d.Geographic()
	if err != nil {
		t.Fatal(err)
	}
	if got := lon.Get(0, 1); different(got, 0.1, 1e-12) {
		t.Errorf("lon(0,1): got %g, want 0.1", got)
	}
	if got := lat.Get(1, 0); different(got, 60, 1e-12) {
		t.Errorf("lat(1,0): got %g, want 60", got)
	}
}

func TestCRSCartesian(t *testing.T) {
	d, err := testData().SetCRS("")
	if err != nil {
		t.Fatal(err)
	}
	if d.IsGeographic() {
		t.Error("renamed coordinates should not be geographic")
	}
	if _, ok := d.Vars["x"]; !ok {
		t.Error("lon should be renamed to x")
	}
	if _, ok := d.Vars["lon"]; ok {
		t.Error("lon should no longer exist")
	}
	sr, err := d.CRS()
	if err != nil {
		t.Fatal(err)
	}
	if sr != nil {
		t.Error("plain Cartesian coordinates should have no spatial reference")
	}
	if _, _, err := d.Geographic(); err == nil {
		t.Error("Cartesian coordinates cannot be made geographic")
	}
}

func TestSetCRSInvalid(t *testing.T) {
	if _, err := testData().SetCRS("not a projection"); err == nil {
		t.Error("an unparseable projection should be an error")
	}
}

func TestGeographicProjected(t *testing.T) {
	// A transverse Mercator grid centered on the 5 degree meridian. Points
	// on the central meridian map back to it exactly.
	const tmerc = "+proj=tmerc +lat_0=0 +lon_0=5 +k=0.9996 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs"
	d := NewDataset([]string{"a"}, 2)
	x := nanDense(1, 2)
	y := nanDense(1, 2)
	for j := 0; j < 2; j++ {
		d.SetTimeAt(0, j, testStart.Add(time.Duration(j)*time.Hour))
		setDense(x, 0, 0, j)
		setDense(y, float64(j)*10000, 0, j)
	}
	if err := d.AddVar("x", "m", "", x); err != nil {
		t.Fatal(err)
	}
	if err := d.AddVar("y", "m", "", y); err != nil {
		t.Fatal(err)
	}
	o, err := d.SetCRS(tmerc)
	if err != nil {
		t.Fatal(err)
	}
	if o.IsGeographic() {
		t.Error("a projected dataset should not be geographic")
	}
	lon, lat, err := o.Geographic()
	if err != nil {
		t.Fatal(err)
	}
	if got := lon.Get(0, 0); math.Abs(got-5) > 1e-6 {
		t.Errorf("lon(0,0): got %g, want 5", got)
	}
	if got := lat.Get(0, 0); math.Abs(got) > 1e-6 {
		t.Errorf("lat(0,0): got %g, want 0", got)
	}
	// 10 km north on the central meridian is about 0.09 degrees latitude.
	if got := lat.Get(0, 1); got < 0.08 || got > 0.1 {
		t.Errorf("lat(0,1): got %g, want about 0.09", got)
	}
}
