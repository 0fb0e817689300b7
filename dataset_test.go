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
	"reflect"
	"testing"
	"time"
)

// testStart is the first sample time of the test fixtures.
var testStart = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

// stepMeters is the great-circle distance of a 0.1 degree step along a
// meridian (or along the equator) on the mean-radius sphere.
const stepMeters = 11119.4926

// testData returns a dataset with two drifters sampled hourly: one moving
// east along the equator with four observations, and one moving north
// along the 5 degree meridian with three observations and a missing
// fourth.
func testData() *Dataset {
	d := NewDataset([]string{"drifter1", "drifter2"}, 4)
	lon := nanDense(2, 4)
	lat := nanDense(2, 4)
	for j := 0; j < 4; j++ {
		d.SetTimeAt(0, j, testStart.Add(time.Duration(j)*time.Hour))
		setDense(lon, 0.1*float64(j), 0, j)
		setDense(lat, 0, 0, j)
	}
	for j := 0; j < 3; j++ {
		d.SetTimeAt(1, j, testStart.Add(time.Duration(j)*time.Hour))
		setDense(lon, 5, 1, j)
		setDense(lat, 60+0.1*float64(j), 1, j)
	}
	if err := d.AddVar("lon", "degrees_east", "longitude", lon); err != nil {
		panic(err)
	}
	if err := d.AddVar("lat", "degrees_north", "latitude", lat); err != nil {
		panic(err)
	}
	return d
}

// oneTraj returns a dataset holding only the equatorial drifter from
// testData.
func oneTraj() *Dataset {
	d := NewDataset([]string{"drifter1"}, 4)
	lon := nanDense(1, 4)
	lat := nanDense(1, 4)
	for j := 0; j < 4; j++ {
		d.SetTimeAt(0, j, testStart.Add(time.Duration(j)*time.Hour))
		setDense(lon, 0.1*float64(j), 0, j)
		setDense(lat, 0, 0, j)
	}
	if err := d.AddVar("lon", "degrees_east", "longitude", lon); err != nil {
		panic(err)
	}
	if err := d.AddVar("lat", "degrees_north", "latitude", lat); err != nil {
		panic(err)
	}
	return d
}

func TestParseLayout(t *testing.T) {
	for _, l := range []Layout{Layout2D, Layout1D, LayoutContiguous, LayoutIndexed} {
		got, err := ParseLayout(l.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != l {
			t.Errorf("%s: got %v, want %v", l, got, l)
		}
	}
	if _, err := ParseLayout("ragged"); err == nil {
		t.Error("parsing an invalid layout name should be an error")
	}
}

func TestNewDataset(t *testing.T) {
	d := testData()
	if n := d.NumTrajectories(); n != 2 {
		t.Errorf("NumTrajectories: got %d, want 2", n)
	}
	if n := d.NumObs(); n != 4 {
		t.Errorf("NumObs: got %d, want 4", n)
	}
	if !d.Is2D() || d.Is1D() {
		t.Error("dataset should be 2D")
	}
}

func TestAddVar(t *testing.T) {
	d := testData()
	if err := d.AddVar("sst", "K", "sea surface temperature", nanDense(2, 4)); err != nil {
		t.Error(err)
	}
	if err := d.AddVar("bad", "", "", nanDense(3, 4)); err == nil {
		t.Error("mismatched trajectory count should be an error")
	}
	if err := d.AddVar("bad", "", "", nanDense(2, 5)); err == nil {
		t.Error("mismatched observation count should be an error")
	}
	if err := d.AddVar("bad", "", "", nanDense(2, 4, 2)); err == nil {
		t.Error("a 3D variable should be an error")
	}
}

func TestCoordinateNames(t *testing.T) {
	d := testData()
	if n, err := d.XName(); err != nil || n != "lon" {
		t.Errorf("XName: got %q, %v; want lon", n, err)
	}
	if n, err := d.YName(); err != nil || n != "lat" {
		t.Errorf("YName: got %q, %v; want lat", n, err)
	}
	e := NewDataset([]string{"a"}, 1)
	if _, err := e.XName(); err == nil {
		t.Error("a dataset without coordinates should give an error")
	}
}

func TestTimeAt(t *testing.T) {
	d := testData()
	got, ok := d.TimeAt(0, 2)
	if !ok {
		t.Fatal("observation (0,2) should be valid")
	}
	want := testStart.Add(2 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, ok := d.TimeAt(1, 3); ok {
		t.Error("observation (1,3) should be missing")
	}
}

func TestIndexOfLast(t *testing.T) {
	d := testData()
	got := d.IndexOfLast()
	want := []int{3, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValidCount(t *testing.T) {
	d := testData()
	if n := d.validCount(0); n != 4 {
		t.Errorf("trajectory 0: got %d valid observations, want 4", n)
	}
	if n := d.validCount(1); n != 3 {
		t.Errorf("trajectory 1: got %d valid observations, want 3", n)
	}
	if got, want := d.validIndices(1), []int{0, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("validIndices: got %v, want %v", got, want)
	}
}

func TestCopy(t *testing.T) {
	d := testData()
	d.Attrs["title"] = "test tracks"
	o := d.Copy()
	o.SetTimeAt(0, 0, testStart.Add(time.Hour*100))
	setDense(o.Vars["lon"].Data, -999, 0, 0)
	o.Attrs["title"] = "changed"
	if got, _ := d.TimeAt(0, 0); !got.Equal(testStart) {
		t.Error("modifying the copy changed the original time")
	}
	if v := d.Vars["lon"].Data.Get(0, 0); v != 0 {
		t.Error("modifying the copy changed the original data")
	}
	if d.Attrs["title"] != "test tracks" {
		t.Error("modifying the copy changed the original attributes")
	}
}

// Zero is a legitimate stored value (the epoch time, coordinates on the
// equator or prime meridian), distinct from missing.
func TestZeroValues(t *testing.T) {
	d := NewDataset([]string{"a"}, 2)
	epoch := time.Unix(0, 0).UTC()
	d.SetTimeAt(0, 0, epoch)
	got, ok := d.TimeAt(0, 0)
	if !ok {
		t.Fatal("the epoch should be a valid observation time")
	}
	if !got.Equal(epoch) {
		t.Errorf("got %v, want %v", got, epoch)
	}
	if _, ok := d.TimeAt(0, 1); ok {
		t.Error("an unset observation should be missing")
	}
	lon := nanDense(1, 2)
	setDense(lon, 0, 0, 0)
	if v := lon.Get(0, 0); v != 0 {
		t.Errorf("got %v, want 0", v)
	}
	if !math.IsNaN(lon.Get(0, 1)) {
		t.Error("the unset element should remain NaN")
	}
}

func TestVarNames(t *testing.T) {
	d := testData()
	deploy := nanDense(2)
	setDense(deploy, 10, 0)
	setDense(deploy, 15, 1)
	if err := d.AddVar("deploy_depth", "m", "deployment depth", deploy); err != nil {
		t.Fatal(err)
	}
	if got, want := d.obsVarNames(), []string{"lat", "lon"}; !reflect.DeepEqual(got, want) {
		t.Errorf("obsVarNames: got %v, want %v", got, want)
	}
	if got, want := d.trajVarNames(), []string{"deploy_depth"}; !reflect.DeepEqual(got, want) {
		t.Errorf("trajVarNames: got %v, want %v", got, want)
	}
}

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) != math.IsNaN(b) {
		return true
	}
	return false
}
