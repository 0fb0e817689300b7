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
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// maxLegendEntries limits how many trajectories are named in the plot
// legend before it is omitted.
const maxLegendEntries = 10

// PlotPNG renders the trajectories to w as a PNG map in geographic
// coordinates, one line per trajectory.
func (d *Dataset) PlotPNG(w io.Writer, width, height vg.Length) error {
	lines, err := d.LineStrings()
	if err != nil {
		return err
	}

	p := plot.New()
	if t, ok := d.Attrs["title"].(string); ok {
		p.Title.Text = t
	}
	p.X.Label.Text = "longitude [degrees east]"
	p.Y.Label.Text = "latitude [degrees north]"

	n := 0
	for i, l := range lines {
		if len(l) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(l))
		for j, pt := range l {
			xys[j].X = pt.X
			xys[j].Y = pt.Y
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("cftraj: plotting trajectory %s: %v", d.IDs[i], err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		if d.NumTrajectories() <= maxLegendEntries {
			p.Legend.Add(d.IDs[i], line)
		}
		n++
	}
	if n == 0 {
		return fmt.Errorf("cftraj: no valid positions to plot")
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
