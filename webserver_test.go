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
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	d := testData()
	d.Attrs["title"] = "test tracks"
	mux := http.NewServeMux()
	NewServer(d).RegisterHandlers(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestServerSummary(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/api/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
	var sum Summary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		t.Fatal(err)
	}
	want := Summary{
		Trajectories: []TrajectorySummary{
			{ID: "drifter1", NumObs: 4, LengthM: 3 * stepMeters},
			{ID: "drifter2", NumObs: 3, LengthM: 2 * stepMeters},
		},
		NumObs: 4,
		Layout: "2d",
		Attrs:  map[string]string{"title": "test tracks"},
	}
	diff := cmp.Diff(want, sum,
		cmpopts.IgnoreFields(Summary{}, "TimeStart", "TimeEnd"),
		cmpopts.EquateApprox(1e-4, 0))
	if diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if sum.TimeStart == nil || sum.TimeEnd == nil {
		t.Fatal("time coverage is missing")
	}
	if !sum.TimeStart.Equal(testStart) {
		t.Errorf("time_coverage_start: got %v, want %v", sum.TimeStart, testStart)
	}
}

func TestServerGeoJSON(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/api/geojson")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("content type: got %q", ct)
	}
	var coll struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&coll); err != nil {
		t.Fatal(err)
	}
	if coll.Type != "FeatureCollection" || len(coll.Features) != 2 {
		t.Errorf("got %s with %d features", coll.Type, len(coll.Features))
	}
}

func TestServerMap(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/map.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type: got %q", ct)
	}
}
