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

func TestSkillIdentical(t *testing.T) {
	d := testData()
	scores, err := d.Skill(d)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range scores {
		if different(s, 1, 1e-9) {
			t.Errorf("trajectory %d: got %g, want 1", i, s)
		}
	}
}

func TestSkillOffset(t *testing.T) {
	d := testData()
	o := d.Copy()
	for i, v := range o.Vars["lat"].Data.Elements {
		o.Vars["lat"].Data.Elements[i] = v + 0.1
	}
	scores, err := d.Skill(o)
	if err != nil {
		t.Fatal(err)
	}
	// The eastward drifter is offset by one step distance at each of its
	// four observations, against a cumulative track length of
	// 0+1+2+3 steps: 1 - 4/6.
	if got := scores[0]; different(got, 1.0/3.0, 1e-6) {
		t.Errorf("trajectory 0: got %g, want 1/3", got)
	}
	// The northward drifter's accumulated separation equals its
	// accumulated track length.
	if got := scores[1]; math.Abs(got) > 1e-6 {
		t.Errorf("trajectory 1: got %g, want 0", got)
	}
}

func TestSkillNoOverlap(t *testing.T) {
	// A reference that never moves has zero track length, so the score is
	// undefined.
	d := NewDataset([]string{"a"}, 3)
	lon := nanDense(1, 3)
	lat := nanDense(1, 3)
	for j := 0; j < 3; j++ {
		d.SetTimeAt(0, j, testStart)
		setDense(lon, 0, 0, j)
		setDense(lat, 0, 0, j)
	}
	if err := d.AddVar("lon", "degrees_east", "", lon); err != nil {
		t.Fatal(err)
	}
	if err := d.AddVar("lat", "degrees_north", "", lat); err != nil {
		t.Fatal(err)
	}
	scores, err := d.Skill(d)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(scores[0]) {
		t.Errorf("got %g, want NaN", scores[0])
	}
}

func TestSkillMismatch(t *testing.T) {
	if _, err := testData().Skill(oneTraj()); err == nil {
		t.Error("mismatched trajectory counts should be an error")
	}
	d := testData()
	if _, err := d.Skill(d.ISelTime(0, -1)); err == nil {
		t.Error("mismatched observation counts should be an error")
	}
}
