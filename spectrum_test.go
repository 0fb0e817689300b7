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
	"testing"
	"time"
)

func TestVelocitySpectrum(t *testing.T) {
	d := testData()
	freqs, power, err := d.VelocitySpectrum()
	if err != nil {
		t.Fatal(err)
	}
	nfreq := d.NumObs()/2 + 1
	if len(freqs) != nfreq {
		t.Fatalf("got %d frequencies, want %d", len(freqs), nfreq)
	}
	if freqs[0] != 0 {
		t.Errorf("freqs[0]: got %g, want 0", freqs[0])
	}
	// The frequency resolution is one cycle per record length.
	if want := 1.0 / (float64(d.NumObs()) * 3600); different(freqs[1], want, 1e-9) {
		t.Errorf("freqs[1]: got %g, want %g", freqs[1], want)
	}
	// The fixture drifters move at constant speed, so the demeaned speed
	// anomaly is zero and no power remains at any frequency.
	for k := 0; k < nfreq; k++ {
		if p := power.Get(0, k); p > 1e-9 {
			t.Errorf("power(0,%d): got %g, want ~0", k, p)
		}
	}
}

func TestVelocitySpectrumIrregular(t *testing.T) {
	d := testData()
	// Nudge one sample time off the hourly grid.
	d.SetTimeAt(0, 2, testStart.Add(2*time.Hour+17*time.Minute))
	if _, _, err := d.VelocitySpectrum(); err == nil {
		t.Error("irregular sample times should be an error")
	}
}

func TestFixedTimeStep(t *testing.T) {
	d := testData()
	dt, err := d.fixedTimeStep()
	if err != nil {
		t.Fatal(err)
	}
	if different(dt, 3600, 1e-9) {
		t.Errorf("got %g, want 3600", dt)
	}
	// A dataset with no consecutive samples has no determinable interval.
	e := NewDataset([]string{"a"}, 2)
	e.SetTimeAt(0, 0, testStart)
	if _, err := e.fixedTimeStep(); err == nil {
		t.Error("a single observation should be an error")
	}
}
