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
)

// Skill returns the Liu-Weissberg skill score comparing each trajectory
// in d (the reference) against the corresponding trajectory in other.
// The datasets must have the same number of trajectories and be sampled
// at approximately the same times; use GridTime to align them first.
//
// The score is 1 - min(1, Σd/Σl), where d is the separation between the
// two trajectories at each observation and l is the cumulative
// along-track distance of the reference. Identical trajectories score 1;
// trajectories whose accumulated separation exceeds the accumulated
// reference track length score 0.
func (d *Dataset) Skill(other *Dataset) ([]float64, error) {
	if d.NumTrajectories() != other.NumTrajectories() {
		return nil, fmt.Errorf("cftraj: datasets have %d and %d trajectories; they must match",
			d.NumTrajectories(), other.NumTrajectories())
	}
	if d.NumObs() != other.NumObs() {
		return nil, fmt.Errorf("cftraj: datasets have %d and %d observations; they must match",
			d.NumObs(), other.NumObs())
	}
	sep, _, _, err := d.DistanceTo(other)
	if err != nil {
		return nil, err
	}
	step, err := d.DistanceToNext()
	if err != nil {
		return nil, err
	}

	ntraj, nobs := d.NumTrajectories(), d.NumObs()
	scores := make([]float64, ntraj)
	for i := 0; i < ntraj; i++ {
		var sumSep, sumLen, cumLen float64
		n := 0
		for j := 0; j < nobs; j++ {
			s := sep.Get(i, j)
			if math.IsNaN(s) {
				continue
			}
			sumSep += s
			sumLen += cumLen
			n++
			if v := step.Get(i, j); !math.IsNaN(v) && j < nobs-1 {
				cumLen += v
			}
		}
		if n == 0 || sumLen == 0 {
			scores[i] = math.NaN()
			continue
		}
		s := sumSep / sumLen
		if s > 1 {
			s = 1
		}
		scores[i] = 1 - s
	}
	return scores, nil
}
