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
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
)

// LineStrings returns each trajectory's valid positions as a LineString
// in geographic coordinates. Trajectories with no valid positions yield
// empty LineStrings.
func (d *Dataset) LineStrings() ([]geom.LineString, error) {
	lon, lat, err := d.Geographic()
	if err != nil {
		return nil, err
	}
	out := make([]geom.LineString, d.NumTrajectories())
	for i := 0; i < d.NumTrajectories(); i++ {
		for j := 0; j < d.NumObs(); j++ {
			lo, la := lon.Get(i, j), lat.Get(i, j)
			if math.IsNaN(lo) || math.IsNaN(la) {
				continue
			}
			out[i] = append(out[i], geom.Point{X: lo, Y: la})
		}
	}
	return out, nil
}

// trajShape is the shapefile record for one trajectory.
type trajShape struct {
	geom.LineString
	ID     string
	NumObs int
	Length float64 // total along-track distance [m]
}

// ExportShapefile writes the trajectories to a polyline shapefile in
// geographic coordinates, with the trajectory ID, observation count, and
// along-track length as attributes.
func (d *Dataset) ExportShapefile(filename string) error {
	lines, err := d.LineStrings()
	if err != nil {
		return err
	}
	lengths, err := d.Length()
	if err != nil {
		return err
	}
	e, err := shp.NewEncoder(filename, trajShape{})
	if err != nil {
		return fmt.Errorf("cftraj: creating shapefile %s: %v", filename, err)
	}
	defer e.Close()
	for i, l := range lines {
		if len(l) == 0 {
			continue
		}
		rec := trajShape{
			LineString: l,
			ID:         d.IDs[i],
			NumObs:     d.validCount(i),
			Length:     lengths[i],
		}
		if err := e.Encode(rec); err != nil {
			return fmt.Errorf("cftraj: writing trajectory %s to shapefile: %v", d.IDs[i], err)
		}
	}
	return nil
}

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

// ExportGeoJSON writes the trajectories to w as a GeoJSON
// FeatureCollection of LineStrings in geographic coordinates.
func (d *Dataset) ExportGeoJSON(w io.Writer) error {
	lines, err := d.LineStrings()
	if err != nil {
		return err
	}
	lengths, err := d.Length()
	if err != nil {
		return err
	}
	coll := geoJSONCollection{Type: "FeatureCollection"}
	for i, l := range lines {
		if len(l) == 0 {
			continue
		}
		g, err := geojson.ToGeoJSON(l)
		if err != nil {
			return fmt.Errorf("cftraj: encoding trajectory %s: %v", d.IDs[i], err)
		}
		coll.Features = append(coll.Features, geoJSONFeature{
			Type:     "Feature",
			Geometry: g,
			Properties: map[string]interface{}{
				"id":       d.IDs[i],
				"num_obs":  d.validCount(i),
				"length_m": lengths[i],
			},
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(coll)
}
