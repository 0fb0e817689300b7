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

	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// geographicProj is the proj4 specification for unprojected WGS84
// longitude/latitude coordinates.
const geographicProj = "+proj=longlat +datum=WGS84 +no_defs"

// CRS returns the spatial reference of the dataset coordinates. Datasets
// with lon/lat coordinates and no grid mapping are assumed geographic
// (WGS84). Datasets with x/y coordinates and no grid mapping are plain
// Cartesian; for those, CRS returns nil.
func (d *Dataset) CRS() (*proj.SR, error) {
	if d.GridProj != "" {
		sr, err := proj.Parse(d.GridProj)
		if err != nil {
			return nil, fmt.Errorf("cftraj: parsing grid projection: %v", err)
		}
		return sr, nil
	}
	n, err := d.XName()
	if err != nil {
		return nil, err
	}
	if n == "lon" || n == "longitude" {
		return proj.Parse(geographicProj)
	}
	return nil, nil
}

// IsGeographic reports whether the dataset coordinates are longitude and
// latitude.
func (d *Dataset) IsGeographic() bool {
	if d.GridProj != "" {
		return false
	}
	n, err := d.XName()
	return err == nil && (n == "lon" || n == "longitude")
}

// Geographic returns the trajectory positions as longitude and latitude
// arrays, transforming projected coordinates through the grid mapping.
func (d *Dataset) Geographic() (lon, lat *sparse.DenseArray, err error) {
	x, err := d.X()
	if err != nil {
		return nil, nil, err
	}
	y, err := d.Y()
	if err != nil {
		return nil, nil, err
	}
	if d.IsGeographic() {
		return x.Data, y.Data, nil
	}
	if d.GridProj == "" {
		return nil, nil, fmt.Errorf("cftraj: dataset has Cartesian coordinates with no grid mapping")
	}
	src, err := d.CRS()
	if err != nil {
		return nil, nil, err
	}
	dst, err := proj.Parse(geographicProj)
	if err != nil {
		return nil, nil, err
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, nil, fmt.Errorf("cftraj: creating coordinate transform: %v", err)
	}
	lon = x.Data.Copy()
	lat = y.Data.Copy()
	for i, xi := range x.Data.Elements {
		yi := y.Data.Elements[i]
		if math.IsNaN(xi) || math.IsNaN(yi) {
			continue
		}
		lo, la, err := t(xi, yi)
		if err != nil {
			return nil, nil, fmt.Errorf("cftraj: transforming coordinates: %v", err)
		}
		lon.Elements[i] = lo
		lat.Elements[i] = la
	}
	return lon, lat, nil
}

// SetCRS returns a copy of the dataset with the grid mapping set to the
// given proj4 specification. An empty specification removes the mapping
// and declares the coordinates Cartesian, renaming lon/lat coordinate
// variables to x/y. SetCRS does not transform the coordinate values.
func (d *Dataset) SetCRS(proj4 string) (*Dataset, error) {
	o := d.Copy()
	if proj4 == "" {
		o.GridProj = ""
		if xn, err := o.XName(); err == nil && (xn == "lon" || xn == "longitude") {
			yn, err := o.YName()
			if err != nil {
				return nil, err
			}
			o.Vars["x"] = o.Vars[xn]
			o.Vars["y"] = o.Vars[yn]
			delete(o.Vars, xn)
			delete(o.Vars, yn)
		}
		return o, nil
	}
	if _, err := proj.Parse(proj4); err != nil {
		return nil, fmt.Errorf("cftraj: parsing projection %q: %v", proj4, err)
	}
	o.GridProj = proj4
	return o, nil
}
