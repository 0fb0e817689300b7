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
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"
)

// Server serves a trajectory dataset over HTTP: a JSON summary at
// /api/summary, a GeoJSON FeatureCollection at /api/geojson, and a
// rendered map at /map.png.
type Server struct {
	data *Dataset

	// Log is the logger for server events. The default is the logrus
	// standard logger.
	Log logrus.FieldLogger
}

// NewServer creates a server for the given dataset.
func NewServer(d *Dataset) *Server {
	return &Server{
		data: d,
		Log:  logrus.StandardLogger(),
	}
}

// RegisterHandlers registers the server's endpoints with mux.
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/summary", s.logged(s.summaryHandler))
	mux.HandleFunc("/api/geojson", s.logged(s.geojsonHandler))
	mux.HandleFunc("/map.png", s.logged(s.mapHandler))
}

func (s *Server) logged(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		s.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"url":      r.URL.String(),
			"duration": time.Since(start),
			"addr":     r.RemoteAddr,
		}).Info("request")
	}
}

// Summary describes a dataset for the /api/summary endpoint.
type Summary struct {
	Trajectories []TrajectorySummary `json:"trajectories"`
	NumObs       int                 `json:"num_obs"`
	Layout       string              `json:"layout"`
	TimeStart    *time.Time          `json:"time_coverage_start,omitempty"`
	TimeEnd      *time.Time          `json:"time_coverage_end,omitempty"`
	Attrs        map[string]string   `json:"attributes,omitempty"`
}

// TrajectorySummary describes a single trajectory.
type TrajectorySummary struct {
	ID      string  `json:"id"`
	NumObs  int     `json:"num_obs"`
	LengthM float64 `json:"length_m"`
}

// Summarize returns the summary of the dataset that the server reports.
func (s *Server) Summarize() (*Summary, error) {
	d := s.data
	lengths, err := d.Length()
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		NumObs: d.NumObs(),
		Layout: d.SourceLayout.String(),
		Attrs:  make(map[string]string),
	}
	for i, id := range d.IDs {
		sum.Trajectories = append(sum.Trajectories, TrajectorySummary{
			ID:      id,
			NumObs:  d.validCount(i),
			LengthM: lengths[i],
		})
	}
	if t0, t1, ok := d.timeCoverage(); ok {
		sum.TimeStart, sum.TimeEnd = &t0, &t1
	}
	for k, v := range d.Attrs {
		if str, ok := v.(string); ok {
			sum.Attrs[k] = str
		}
	}
	return sum, nil
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Summarize()
	if err != nil {
		s.serverError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sum); err != nil {
		s.Log.WithError(err).Error("encoding summary")
	}
}

func (s *Server) geojsonHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	if err := s.data.ExportGeoJSON(w); err != nil {
		s.serverError(w, err)
	}
}

func (s *Server) mapHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := s.data.PlotPNG(w, 8*vg.Inch, 6*vg.Inch); err != nil {
		s.serverError(w, err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.Log.WithError(err).Error("handling request")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
