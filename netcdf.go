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
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Names of the CF attributes that mark the trajectory representations.
const (
	attrCFRole            = "cf_role"
	attrSampleDimension   = "sample_dimension"
	attrInstanceDimension = "instance_dimension"
	attrFeatureType       = "featureType"
	attrGridProj4         = "grid_proj4"
)

const (
	trajDimName  = "trajectory"
	idStrlenName = "id_strlen"
)

// WriteNetCDF writes the dataset to w as a NetCDF classic file using the
// given CF trajectory representation. Converting to Layout1D requires a
// single-trajectory dataset.
func (d *Dataset) WriteNetCDF(w *os.File, layout Layout) error {
	switch layout {
	case Layout2D:
		return d.To2D(d.obsDimName()).write2D(w)
	case Layout1D:
		d1, err := d.To1D()
		if err != nil {
			return err
		}
		return d1.write1D(w)
	case LayoutContiguous, LayoutIndexed:
		return d.To2D(d.obsDimName()).writeRagged(w, layout)
	}
	return fmt.Errorf("cftraj: invalid layout %v", layout)
}

// obsDimName returns the observation dimension name, defaulting to "obs".
func (d *Dataset) obsDimName() string {
	if d.ObsDim == "" {
		return "obs"
	}
	return d.ObsDim
}

// idWidth returns the character dimension length for the trajectory ID
// variable.
func (d *Dataset) idWidth() int {
	w := 1
	for _, id := range d.IDs {
		if len(id) > w {
			w = len(id)
		}
	}
	return w
}

// addCommonHeader adds the trajectory ID variable, the per-trajectory data
// variables, and the global attributes to h.
func (d *Dataset) addCommonHeader(h *cdf.Header) {
	h.AddVariable(trajDimName, []string{trajDimName, idStrlenName}, "")
	h.AddAttribute(trajDimName, attrCFRole, "trajectory_id")
	h.AddAttribute(trajDimName, "long_name", "trajectory name")

	for _, name := range d.trajVarNames() {
		v := d.Vars[name]
		h.AddVariable(name, []string{trajDimName}, []float64{0})
		addVarAttrs(h, name, v)
	}

	h.AddAttribute("", attrFeatureType, "trajectory")
	if d.GridProj != "" {
		h.AddAttribute("", attrGridProj4, d.GridProj)
	}
	keys := make([]string, 0, len(d.Attrs))
	for k := range d.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.AddAttribute("", k, d.Attrs[k])
	}
}

func addVarAttrs(h *cdf.Header, name string, v *Variable) {
	if v.Units != "" {
		h.AddAttribute(name, "units", v.Units)
	}
	if v.Description != "" {
		h.AddAttribute(name, "long_name", v.Description)
	}
}

// write2D writes the two-dimensional representation: one dimension per
// trajectory and one per observation.
func (d *Dataset) write2D(w *os.File) error {
	obsDim := d.obsDimName()
	h := cdf.NewHeader(
		[]string{trajDimName, obsDim, idStrlenName},
		[]int{d.NumTrajectories(), d.NumObs(), d.idWidth()})
	d.addCommonHeader(h)

	h.AddVariable("time", []string{trajDimName, obsDim}, []float64{0})
	h.AddAttribute("time", "units", TimeUnits)
	for _, name := range d.obsVarNames() {
		h.AddVariable(name, []string{trajDimName, obsDim}, []float64{0})
		addVarAttrs(h, name, d.Vars[name])
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	if err := d.writeIDs(f); err != nil {
		return err
	}
	if err := d.writeTrajVars(f); err != nil {
		return err
	}
	if err := writeNCF(f, "time", d.Time); err != nil {
		return err
	}
	for _, name := range d.obsVarNames() {
		if err := writeNCF(f, name, d.Vars[name].Data); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

// write1D writes the one-dimensional representation, where all
// trajectories share a single sample-time coordinate vector.
func (d *Dataset) write1D(w *os.File) error {
	obsDim := d.obsDimName()
	h := cdf.NewHeader(
		[]string{trajDimName, obsDim, idStrlenName},
		[]int{d.NumTrajectories(), d.NumObs(), d.idWidth()})
	d.addCommonHeader(h)

	h.AddVariable("time", []string{obsDim}, []float64{0})
	h.AddAttribute("time", "units", TimeUnits)
	for _, name := range d.obsVarNames() {
		h.AddVariable(name, []string{trajDimName, obsDim}, []float64{0})
		addVarAttrs(h, name, d.Vars[name])
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	if err := d.writeIDs(f); err != nil {
		return err
	}
	if err := d.writeTrajVars(f); err != nil {
		return err
	}
	if err := writeNCF(f, "time", d.Time); err != nil {
		return err
	}
	for _, name := range d.obsVarNames() {
		if err := writeNCF(f, name, d.Vars[name].Data); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeRagged writes the contiguous or indexed ragged-array
// representation: all trajectories packed into a single sample dimension.
func (d *Dataset) writeRagged(w *os.File, layout Layout) error {
	r := d.flattenRagged()
	obsDim := d.obsDimName()
	nsamples := len(r.time)
	if nsamples == 0 {
		return fmt.Errorf("cftraj: dataset has no valid observations to write")
	}

	h := cdf.NewHeader(
		[]string{trajDimName, obsDim, idStrlenName},
		[]int{d.NumTrajectories(), nsamples, d.idWidth()})
	d.addCommonHeader(h)

	switch layout {
	case LayoutContiguous:
		h.AddVariable("rowSize", []string{trajDimName}, []int32{0})
		h.AddAttribute("rowSize", "long_name", "number of observations for this trajectory")
		h.AddAttribute("rowSize", attrSampleDimension, obsDim)
	case LayoutIndexed:
		h.AddVariable("trajectoryIndex", []string{obsDim}, []int32{0})
		h.AddAttribute("trajectoryIndex", "long_name", "which trajectory this observation belongs to")
		h.AddAttribute("trajectoryIndex", attrInstanceDimension, trajDimName)
	}

	h.AddVariable("time", []string{obsDim}, []float64{0})
	h.AddAttribute("time", "units", TimeUnits)
	names := d.obsVarNames()
	for _, name := range names {
		h.AddVariable(name, []string{obsDim}, []float64{0})
		addVarAttrs(h, name, d.Vars[name])
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	if err := d.writeIDs(f); err != nil {
		return err
	}
	if err := d.writeTrajVars(f); err != nil {
		return err
	}
	switch layout {
	case LayoutContiguous:
		if err := writeVector(f, "rowSize", r.rowSizes); err != nil {
			return err
		}
	case LayoutIndexed:
		if err := writeVector(f, "trajectoryIndex", r.index); err != nil {
			return err
		}
	}
	if err := writeVector(f, "time", r.time); err != nil {
		return err
	}
	for _, name := range names {
		if err := writeVector(f, name, r.vars[name]); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeIDs writes the trajectory ID variable as a fixed-width character
// matrix.
func (d *Dataset) writeIDs(f *cdf.File) error {
	width := d.idWidth()
	b := make([]byte, 0, len(d.IDs)*width)
	for _, id := range d.IDs {
		b = append(b, id...)
		for i := len(id); i < width; i++ {
			b = append(b, 0)
		}
	}
	wr := f.Writer(trajDimName, nil, nil)
	n, err := wr.Write(string(b))
	if err == io.EOF && n == len(b) {
		// The cdf strider reports io.EOF from a write that exactly
		// fills a non-record variable.
		err = nil
	}
	return err
}

func (d *Dataset) writeTrajVars(f *cdf.File) error {
	for _, name := range d.trajVarNames() {
		if err := writeVector(f, name, d.Vars[name].Data.Elements); err != nil {
			return err
		}
	}
	return nil
}

// writeNCF writes a DenseArray to a netcdf variable, checking that the
// array matches the variable's dimensions.
func writeNCF(f *cdf.File, name string, data *sparse.DenseArray) error {
	n := 1
	for _, v := range data.Shape {
		n *= v
	}
	if len(data.Elements) != n {
		return fmt.Errorf("cftraj: dims are %d but array length is %d", n, len(data.Elements))
	}
	return writeVector(f, name, data.Elements)
}

func writeVector(f *cdf.File, name string, data interface{}) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	n, err := w.Write(data)
	if err == io.EOF && n == vectorLen(data) {
		// The cdf strider reports io.EOF from a write that exactly
		// fills a non-record variable.
		err = nil
	}
	if err != nil {
		return fmt.Errorf("cftraj: writing variable %s to netcdf file: %v", name, err)
	}
	return nil
}

func vectorLen(data interface{}) int {
	switch d := data.(type) {
	case []float64:
		return len(d)
	case []int32:
		return len(d)
	case string:
		return len(d)
	}
	return -1
}

// ReadNetCDF reads a CF trajectory dataset from a NetCDF classic file,
// detecting which of the four array representations it uses. Ragged files
// are decoded to the 2D representation; the source layout is recorded in
// the returned dataset.
func ReadNetCDF(r cdf.ReaderWriterAt) (*Dataset, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, err
	}
	nr := &ncReader{f: f}
	return nr.read()
}

// OpenFile reads a CF trajectory dataset from the named NetCDF file.
func OpenFile(path string) (*Dataset, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	d, err := ReadNetCDF(ff)
	if err != nil {
		return nil, fmt.Errorf("cftraj: reading %s: %v", path, err)
	}
	return d, nil
}

// SaveFile writes the dataset to the named file in the given
// representation.
func (d *Dataset) SaveFile(path string, layout Layout) error {
	ff, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.WriteNetCDF(ff, layout); err != nil {
		ff.Close()
		return fmt.Errorf("cftraj: writing %s: %v", path, err)
	}
	return ff.Close()
}

// ncReader decodes one NetCDF file into a Dataset.
type ncReader struct {
	f *cdf.File
}

func (nr *ncReader) read() (*Dataset, error) {
	h := nr.f.Header

	// Locate the representation markers and the special variables.
	var rowSizeVar, indexVar, idVar string
	for _, v := range h.Variables() {
		if s, ok := attrString(h, v, attrSampleDimension); ok && s != "" {
			rowSizeVar = v
		}
		if s, ok := attrString(h, v, attrInstanceDimension); ok && s != "" {
			indexVar = v
		}
		if s, ok := attrString(h, v, attrCFRole); ok && s == "trajectory_id" {
			idVar = v
		}
	}

	timeVar, obsDim, err := nr.detectTime(rowSizeVar, indexVar)
	if err != nil {
		return nil, err
	}

	ids, err := nr.readIDs(idVar, rowSizeVar, indexVar, obsDim)
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		IDs:    ids,
		Vars:   make(map[string]*Variable),
		Attrs:  make(map[string]interface{}),
		ObsDim: obsDim,
	}
	for _, a := range h.Attributes("") {
		switch a {
		case attrFeatureType:
			// implied by the data model
		case attrGridProj4:
			if s, ok := attrString(h, "", attrGridProj4); ok {
				d.GridProj = s
			}
		default:
			d.Attrs[a] = h.GetAttribute("", a)
		}
	}

	switch {
	case rowSizeVar != "":
		d.SourceLayout = LayoutContiguous
		err = nr.readContiguous(d, rowSizeVar, timeVar, obsDim, idVar)
	case indexVar != "":
		d.SourceLayout = LayoutIndexed
		err = nr.readIndexed(d, indexVar, timeVar, obsDim, idVar)
	case len(h.Dimensions(timeVar)) == 1:
		d.SourceLayout = Layout1D
		err = nr.read1D(d, timeVar, obsDim, idVar)
	default:
		d.SourceLayout = Layout2D
		err = nr.read2D(d, timeVar, obsDim, idVar)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// detectTime finds the time variable and the observation dimension. The
// time variable is the variable whose name contains "time" and that is
// defined on the sample or observation dimension. The ragged
// representations name the sample dimension explicitly, through the
// sample_dimension attribute of the count variable or the dimension of
// the index variable, and the time variable must be defined on it.
func (nr *ncReader) detectTime(rowSizeVar, indexVar string) (timeVar, obsDim string, err error) {
	h := nr.f.Header

	var sampleDim string
	if rowSizeVar != "" {
		sampleDim, _ = attrString(h, rowSizeVar, attrSampleDimension)
	} else if indexVar != "" {
		sampleDim = h.Dimensions(indexVar)[0]
	}

	for _, v := range h.Variables() {
		if !strings.Contains(strings.ToLower(v), "time") {
			continue
		}
		dims := h.Dimensions(v)
		var last string
		switch len(dims) {
		case 1:
			last = dims[0]
		case 2:
			last = dims[1]
		default:
			continue
		}
		if sampleDim != "" && last != sampleDim {
			// A per-trajectory variable with "time" in its name.
			continue
		}
		return v, last, nil
	}
	return "", "", fmt.Errorf("cftraj: no time variable detected")
}

// readIDs reads the trajectory ID variable, synthesizing numeric IDs if
// the file does not have one.
func (nr *ncReader) readIDs(idVar, rowSizeVar, indexVar, obsDim string) ([]string, error) {
	h := nr.f.Header
	if idVar == "" {
		// No trajectory_id variable; infer the trajectory count from the
		// count or index variable, or assume a single trajectory.
		n := 1
		if rowSizeVar != "" {
			n = h.Lengths(rowSizeVar)[0]
		} else if indexVar != "" {
			ix, err := nr.readFullVar64(indexVar)
			if err != nil {
				return nil, err
			}
			for _, v := range ix {
				if int(v)+1 > n {
					n = int(v) + 1
				}
			}
		}
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("%d", i)
		}
		return ids, nil
	}
	lens := h.Lengths(idVar)
	if len(lens) != 2 {
		return nil, fmt.Errorf("cftraj: trajectory ID variable %s must have 2 dimensions", idVar)
	}
	n, width := lens[0], lens[1]
	buf := make([]byte, n*width)
	rd := nr.f.Reader(idVar, nil, nil)
	if _, err := rd.Read(buf); err != nil {
		return nil, fmt.Errorf("cftraj: reading trajectory IDs: %v", err)
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strings.TrimRight(string(buf[i*width:(i+1)*width]), "\x00 ")
	}
	return ids, nil
}

// readFullVar64 reads a complete variable as []float64, converting from
// the variable's storage type.
func (nr *ncReader) readFullVar64(name string) ([]float64, error) {
	r := nr.f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("cftraj: reading variable %s: %v", name, err)
	}
	switch b := buf.(type) {
	case []float64:
		fillNaN(b)
		return b, nil
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		fillNaN(o)
		return o, nil
	case []int32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	}
	return nil, fmt.Errorf("cftraj: variable %s has unsupported type %T", name, buf)
}

// isDataVar reports whether the named variable is a data variable rather
// than one of the structural variables.
func isDataVar(name, timeVar, idVar, rowSizeVar, indexVar string) bool {
	switch name {
	case timeVar, idVar, rowSizeVar, indexVar:
		return false
	}
	return true
}

// readVars reads every data variable on the given dimensions into the
// dataset, converting per-sample vectors through expand. The expand
// function is the identity for already-2D files.
func (nr *ncReader) dataVarNames(timeVar, idVar, rowSizeVar, indexVar string) []string {
	var names []string
	for _, v := range nr.f.Header.Variables() {
		if isDataVar(v, timeVar, idVar, rowSizeVar, indexVar) {
			names = append(names, v)
		}
	}
	sort.Strings(names)
	return names
}

func (nr *ncReader) varAttrs(d *Dataset, name string) (units, longName string) {
	units, _ = attrString(nr.f.Header, name, "units")
	longName, _ = attrString(nr.f.Header, name, "long_name")
	return units, longName
}

func (nr *ncReader) read2D(d *Dataset, timeVar, obsDim, idVar string) error {
	h := nr.f.Header
	lens := h.Lengths(timeVar)
	ntraj, nobs := lens[0], lens[1]
	if ntraj != len(d.IDs) {
		return fmt.Errorf("cftraj: %d trajectory IDs for %d trajectories", len(d.IDs), ntraj)
	}
	t, err := nr.readFullVar64(timeVar)
	if err != nil {
		return err
	}
	d.Time = denseFromSlice(t, ntraj, nobs)

	for _, name := range nr.dataVarNames(timeVar, idVar, "", "") {
		data, err := nr.readFullVar64(name)
		if err != nil {
			return err
		}
		units, longName := nr.varAttrs(d, name)
		dims := h.Dimensions(name)
		var arr *sparse.DenseArray
		switch len(dims) {
		case 1:
			arr = denseFromSlice(data, ntraj)
		case 2:
			arr = denseFromSlice(data, ntraj, nobs)
		default:
			continue // not a trajectory variable
		}
		d.Vars[name] = &Variable{Data: arr, Units: units, Description: longName}
	}
	return nil
}

func (nr *ncReader) read1D(d *Dataset, timeVar, obsDim, idVar string) error {
	h := nr.f.Header
	nobs := h.Lengths(timeVar)[0]
	ntraj := len(d.IDs)
	t, err := nr.readFullVar64(timeVar)
	if err != nil {
		return err
	}
	d.Time = denseFromSlice(t, nobs)

	for _, name := range nr.dataVarNames(timeVar, idVar, "", "") {
		data, err := nr.readFullVar64(name)
		if err != nil {
			return err
		}
		units, longName := nr.varAttrs(d, name)
		dims := h.Dimensions(name)
		var arr *sparse.DenseArray
		switch {
		case len(dims) == 1 && dims[0] == obsDim:
			// A per-sample vector shared by all trajectories, as in a
			// single-trajectory file with lon(time) and lat(time).
			arr = sparse.ZerosDense(ntraj, nobs)
			for i := 0; i < ntraj; i++ {
				copy(arr.Elements[i*nobs:(i+1)*nobs], data)
			}
		case len(dims) == 1:
			arr = denseFromSlice(data, ntraj)
		case len(dims) == 2:
			arr = denseFromSlice(data, ntraj, nobs)
		default:
			continue
		}
		d.Vars[name] = &Variable{Data: arr, Units: units, Description: longName}
	}
	return nil
}

func (nr *ncReader) readContiguous(d *Dataset, rowSizeVar, timeVar, obsDim, idVar string) error {
	rs, err := nr.readFullVar64(rowSizeVar)
	if err != nil {
		return err
	}
	rowSizes := make([]int32, len(rs))
	for i, v := range rs {
		rowSizes[i] = int32(v)
	}
	return nr.readRagged(d, timeVar, obsDim, idVar, rowSizeVar, "",
		func(t []float64, vars map[string][]float64) (*sparse.DenseArray, map[string]*sparse.DenseArray, error) {
			return expandContiguous(rowSizes, t, vars)
		})
}

func (nr *ncReader) readIndexed(d *Dataset, indexVar, timeVar, obsDim, idVar string) error {
	ix, err := nr.readFullVar64(indexVar)
	if err != nil {
		return err
	}
	index := make([]int32, len(ix))
	for i, v := range ix {
		index[i] = int32(v)
	}
	ntraj := len(d.IDs)
	return nr.readRagged(d, timeVar, obsDim, idVar, "", indexVar,
		func(t []float64, vars map[string][]float64) (*sparse.DenseArray, map[string]*sparse.DenseArray, error) {
			return expandIndexed(ntraj, index, t, vars)
		})
}

// readRagged reads the per-sample vectors and expands them to 2D arrays
// with the supplied expansion function.
func (nr *ncReader) readRagged(d *Dataset, timeVar, obsDim, idVar, rowSizeVar, indexVar string,
	expand func([]float64, map[string][]float64) (*sparse.DenseArray, map[string]*sparse.DenseArray, error)) error {
	h := nr.f.Header
	t, err := nr.readFullVar64(timeVar)
	if err != nil {
		return err
	}
	samples := make(map[string][]float64)
	meta := make(map[string][2]string)
	perTraj := make(map[string][]float64)
	for _, name := range nr.dataVarNames(timeVar, idVar, rowSizeVar, indexVar) {
		dims := h.Dimensions(name)
		if len(dims) != 1 {
			continue
		}
		data, err := nr.readFullVar64(name)
		if err != nil {
			return err
		}
		units, longName := nr.varAttrs(d, name)
		meta[name] = [2]string{units, longName}
		if dims[0] == obsDim {
			samples[name] = data
		} else {
			perTraj[name] = data
		}
	}

	tArr, arrs, err := expand(t, samples)
	if err != nil {
		return err
	}
	d.Time = tArr
	for name, arr := range arrs {
		m := meta[name]
		d.Vars[name] = &Variable{Data: arr, Units: m[0], Description: m[1]}
	}
	for name, data := range perTraj {
		m := meta[name]
		d.Vars[name] = &Variable{Data: denseFromSlice(data, len(d.IDs)), Units: m[0], Description: m[1]}
	}
	return nil
}

// denseFromSlice wraps data in a DenseArray of the given shape.
func denseFromSlice(data []float64, dims ...int) *sparse.DenseArray {
	a := sparse.ZerosDense(dims...)
	copy(a.Elements, data)
	return a
}

// attrString returns the named attribute as a string.
func attrString(h *cdf.Header, v, a string) (string, bool) {
	val := h.GetAttribute(v, a)
	if val == nil {
		return "", false
	}
	switch s := val.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

// fillNaN replaces the NetCDF default fill value with NaN in place.
func fillNaN(data []float64) {
	const fill = 9.9692099683868690e+36
	for i, v := range data {
		if v == fill {
			data[i] = math.NaN()
		}
	}
}
