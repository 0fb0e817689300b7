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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// validPositions returns all valid positions in the dataset in geographic
// coordinates.
func (d *Dataset) validPositions() ([]geom.Point, error) {
	lon, lat, err := d.Geographic()
	if err != nil {
		return nil, err
	}
	var pts []geom.Point
	for i, lo := range lon.Elements {
		la := lat.Elements[i]
		if math.IsNaN(lo) || math.IsNaN(la) {
			continue
		}
		pts = append(pts, geom.Point{X: lo, Y: la})
	}
	return pts, nil
}

// ConvexHull returns the convex hull around all valid positions in the
// dataset, in geographic coordinates. It returns nil if the positions do
// not span a polygon (fewer than three distinct points, or all points
// collinear).
func (d *Dataset) ConvexHull() (geom.Polygon, error) {
	pts, err := d.validPositions()
	if err != nil {
		return nil, err
	}
	hull := convexHull(pts)
	if hull == nil {
		return nil, nil
	}
	return geom.Polygon{hull}, nil
}

// convexHull computes the convex hull of pts with the monotone chain
// algorithm. The returned ring is counterclockwise and closed. It returns
// nil for degenerate inputs.
func convexHull(pts []geom.Point) []geom.Point {
	// Sort and deduplicate.
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return nil
	}

	cross := func(o, a, b geom.Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []geom.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []geom.Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	if len(lower) < 2 || len(upper) < 2 {
		return nil
	}
	ring := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(ring) < 3 {
		return nil
	}
	ring = append(ring, ring[0])
	return ring
}

// ConvexHullContains reports whether the given geographic position is
// within the convex hull of all positions in the dataset.
func (d *Dataset) ConvexHullContains(lon, lat float64) (bool, error) {
	hull, err := d.ConvexHull()
	if err != nil {
		return false, err
	}
	if hull == nil {
		return false, nil
	}
	return geom.Point{X: lon, Y: lat}.Within(hull) == geom.Inside, nil
}

// AreaConvexHull returns the area [m2] of the convex hull spanned by all
// positions in the dataset. The hull is projected to an Albers
// equal-area projection centered on the positions before the area is
// calculated. It returns 0 if the positions do not span a polygon.
func (d *Dataset) AreaConvexHull() (float64, error) {
	pts, err := d.validPositions()
	if err != nil {
		return 0, err
	}
	if len(pts) < 3 {
		return 0, nil
	}
	var latMin, latMax, latSum, lonSum = math.Inf(1), math.Inf(-1), 0.0, 0.0
	for _, p := range pts {
		latMin = math.Min(latMin, p.Y)
		latMax = math.Max(latMax, p.Y)
		latSum += p.Y
		lonSum += p.X
	}
	n := float64(len(pts))

	// An equal-area projection centered on the positions.
	aeaSpec := fmt.Sprintf(
		"+proj=aea +lat_0=%g +lat_1=%g +lat_2=%g +lon_0=%g +x_0=0 +y_0=0 +units=m +no_defs",
		latSum/n, latMin, latMax, lonSum/n)
	src, err := proj.Parse(geographicProj)
	if err != nil {
		return 0, err
	}
	dst, err := proj.Parse(aeaSpec)
	if err != nil {
		return 0, fmt.Errorf("cftraj: parsing equal-area projection: %v", err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return 0, err
	}
	prj := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		x, y, err := t(p.X, p.Y)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		prj = append(prj, geom.Point{X: x, Y: y})
	}
	hull := convexHull(prj)
	if hull == nil {
		return 0, nil
	}
	return geom.Polygon{hull}.Area(), nil
}
