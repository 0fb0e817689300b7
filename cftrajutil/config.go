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

package cftrajutil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/seatrack/cftraj"
)

// openInput opens the trajectory file specified by the InputFile
// configuration option.
func openInput() (*cftraj.Dataset, error) {
	in := os.ExpandEnv(Cfg.GetString("InputFile"))
	if in == "" {
		return nil, fmt.Errorf("cftraj: you need to specify an InputFile")
	}
	return cftraj.OpenFile(in)
}

// checkOutputFile makes sure that o is a valid output file path and
// expands any environment variables it contains.
func checkOutputFile(o string) (string, error) {
	if o == "" {
		return o, fmt.Errorf("cftraj: you need to specify an OutputFile")
	}
	return os.ExpandEnv(o), nil
}

// Describe writes a human-readable summary of d to w.
func Describe(w io.Writer, d *cftraj.Dataset) error {
	sum, err := cftraj.NewServer(d).Summarize()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "layout: %s\n", sum.Layout)
	fmt.Fprintf(w, "trajectories: %d\n", len(sum.Trajectories))
	fmt.Fprintf(w, "observations: %d\n", sum.NumObs)
	if sum.TimeStart != nil {
		fmt.Fprintf(w, "time coverage: %s to %s\n",
			sum.TimeStart.Format(time.RFC3339), sum.TimeEnd.Format(time.RFC3339))
	}
	if mean, max, err := d.SpeedStats(); err == nil {
		fmt.Fprintf(w, "speed: mean %s, max %s\n", mean, max)
	}
	fmt.Fprintln(w, "trajectory\tobs\tlength [m]")
	for _, t := range sum.Trajectories {
		fmt.Fprintf(w, "%s\t%d\t%.0f\n", t.ID, t.NumObs, t.LengthM)
	}
	return nil
}

// SkillScores interpolates ref and other to a shared time vector with the
// given step over their common coverage and returns the skill score of
// each trajectory pair, treating ref as the reference.
func SkillScores(ref, other *cftraj.Dataset, step time.Duration) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("cftraj: time step must be positive, got %v", step)
	}
	t0, t1, err := commonCoverage(ref, other)
	if err != nil {
		return nil, err
	}
	var times []time.Time
	for t := t0.Truncate(step); !t.After(t1); t = t.Add(step) {
		times = append(times, t)
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("cftraj: common time coverage is shorter than Step (%v)", step)
	}
	refG, err := ref.GridTime(times)
	if err != nil {
		return nil, err
	}
	otherG, err := other.GridTime(times)
	if err != nil {
		return nil, err
	}
	return refG.Skill(otherG)
}

// commonCoverage returns the overlapping time coverage of a and b.
func commonCoverage(a, b *cftraj.Dataset) (t0, t1 time.Time, err error) {
	a0, a1, ok := coverage(a)
	if !ok {
		return t0, t1, fmt.Errorf("cftraj: dataset has no valid observation times")
	}
	b0, b1, ok := coverage(b)
	if !ok {
		return t0, t1, fmt.Errorf("cftraj: reference dataset has no valid observation times")
	}
	t0, t1 = a0, a1
	if b0.After(t0) {
		t0 = b0
	}
	if b1.Before(t1) {
		t1 = b1
	}
	if !t0.Before(t1) {
		return t0, t1, fmt.Errorf("cftraj: datasets have no overlapping time coverage")
	}
	return t0, t1, nil
}

func coverage(d *cftraj.Dataset) (t0, t1 time.Time, ok bool) {
	for i := 0; i < d.NumTrajectories(); i++ {
		for j := 0; j < d.NumObs(); j++ {
			t, valid := d.TimeAt(i, j)
			if !valid {
				continue
			}
			if !ok || t.Before(t0) {
				t0 = t
			}
			if !ok || t.After(t1) {
				t1 = t
			}
			ok = true
		}
	}
	return t0, t1, ok
}
