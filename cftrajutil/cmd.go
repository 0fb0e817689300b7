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

// Package cftrajutil holds the command-line interface for working with CF
// trajectory files.
package cftrajutil

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/seatrack/cftraj"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/plot/vg"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to cftraj.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile specifies the NetCDF trajectory file to operate on.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the file to write results to.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets: []*pflag.FlagSet{convertCmd.Flags(), condenseCmd.Flags(),
				gridtimeCmd.Flags(), exportCmd.Flags(), plotCmd.Flags(), stampCmd.Flags()},
		},
		{
			name: "Layout",
			usage: `
              Layout specifies the trajectory array representation for output
              files: 2d, 1d, contiguous, or indexed.`,
			defaultVal: "contiguous",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "Step",
			usage: `
              Step specifies the sampling interval to interpolate to, in a
              format understood by time.ParseDuration (e.g. 30m, 1h, 6h).`,
			defaultVal: "1h",
			flagsets:   []*pflag.FlagSet{gridtimeCmd.Flags(), skillCmd.Flags()},
		},
		{
			name: "ReferenceFile",
			usage: `
              ReferenceFile specifies the trajectory file to compare
              InputFile against.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{skillCmd.Flags()},
		},
		{
			name: "Format",
			usage: `
              Format specifies the export format: geojson or shp.`,
			defaultVal: "geojson",
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "Width",
			usage: `
              Width specifies the width of the rendered map in inches.`,
			defaultVal: 8.0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Height",
			usage: `
              Height specifies the height of the rendered map in inches.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Addr",
			usage: `
              Addr specifies the address for the web server to listen on.`,
			defaultVal: ":8080",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "CreatorName",
			usage: `
              CreatorName specifies the dataset creator attribute to stamp.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stampCmd.Flags()},
		},
		{
			name: "CreatorEmail",
			usage: `
              CreatorEmail specifies the dataset creator email attribute to stamp.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stampCmd.Flags()},
		},
		{
			name: "Title",
			usage: `
              Title specifies the dataset title attribute to stamp.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stampCmd.Flags()},
		},
		{
			name: "Summary",
			usage: `
              Summary specifies the dataset summary attribute to stamp.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stampCmd.Flags()},
		},
	}

	Cfg = viper.New()
	for _, option := range options {
		for _, set := range option.flagsets {
			if set.Lookup(option.name) == nil { // Don't repeat flags.
				switch option.defaultVal.(type) {
				case string:
					if option.shorthand == "" {
						set.String(option.name, option.defaultVal.(string), option.usage)
					} else {
						set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
					}
				case float64:
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				default:
					panic("invalid argument type")
				}
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(describeCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(condenseCmd)
	Root.AddCommand(gridtimeCmd)
	Root.AddCommand(skillCmd)
	Root.AddCommand(exportCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(serveCmd)
	Root.AddCommand(stampCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cftraj: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "cftraj",
	Short: "A toolkit for CF-convention trajectory files.",
	Long: `cftraj reads, converts, and analyzes collections of trajectories
(such as drifting buoy tracks) stored in NetCDF files following the CF
"trajectory" conventions, including the 2D, 1D, contiguous ragged, and
indexed ragged array representations.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag) or by using command-line
arguments.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cftraj v%s\n", cftraj.Version)
	},
	DisableAutoGenTag: true,
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Summarize a trajectory file",
	Long: `describe prints the trajectories, observation counts, time coverage,
and speed statistics of the trajectory file specified by InputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		return Describe(os.Stdout, d)
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a trajectory file to a different array representation",
	Long: `convert rewrites the trajectory file specified by InputFile to
OutputFile using the array representation specified by Layout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		layout, err := cftraj.ParseLayout(Cfg.GetString("Layout"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		log.Printf("Writing %s representation to %s...", layout, out)
		return d.SaveFile(out, layout)
	},
	DisableAutoGenTag: true,
}

var condenseCmd = &cobra.Command{
	Use:   "condense",
	Short: "Compact the observation dimension of a trajectory file",
	Long: `condense moves each trajectory's observations to the start of the
observation dimension and trims the dimension to the longest trajectory,
writing the result to OutputFile in the input's array representation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		out, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return d.Condense().SaveFile(out, d.SourceLayout)
	},
	DisableAutoGenTag: true,
}

var gridtimeCmd = &cobra.Command{
	Use:   "gridtime",
	Short: "Interpolate a trajectory file to a regular time interval",
	Long: `gridtime linearly interpolates the trajectory file specified by
InputFile to the regular sampling interval specified by Step and writes
the result to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		step, err := time.ParseDuration(Cfg.GetString("Step"))
		if err != nil {
			return fmt.Errorf("cftraj: parsing Step: %v", err)
		}
		out, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		g, err := d.GridTimeStep(step)
		if err != nil {
			return err
		}
		return g.SaveFile(out, cftraj.Layout1D)
	},
	DisableAutoGenTag: true,
}

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Compare two trajectory files",
	Long: `skill interpolates the files specified by InputFile and
ReferenceFile to the common sampling interval specified by Step and prints
the Liu-Weissberg skill score of each trajectory pair, treating
ReferenceFile as the reference.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		refFile := os.ExpandEnv(Cfg.GetString("ReferenceFile"))
		if refFile == "" {
			return fmt.Errorf("cftraj: you need to specify a ReferenceFile to compare against")
		}
		ref, err := cftraj.OpenFile(refFile)
		if err != nil {
			return err
		}
		step, err := time.ParseDuration(Cfg.GetString("Step"))
		if err != nil {
			return fmt.Errorf("cftraj: parsing Step: %v", err)
		}
		scores, err := SkillScores(ref, d, step)
		if err != nil {
			return err
		}
		for i, s := range scores {
			fmt.Printf("%s\t%.4f\n", ref.IDs[i], s)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trajectories to a GIS format",
	Long: `export writes the trajectories in InputFile to OutputFile as
LineStrings in the format specified by Format (geojson or shp).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		out, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		switch f := Cfg.GetString("Format"); f {
		case "shp":
			return d.ExportShapefile(out)
		case "geojson":
			w, err := os.Create(out)
			if err != nil {
				return err
			}
			defer w.Close()
			return d.ExportGeoJSON(w)
		default:
			return fmt.Errorf("cftraj: invalid export format %q (must be geojson or shp)", f)
		}
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render trajectories to a PNG map",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		out, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		width, err := cast.ToFloat64E(Cfg.Get("Width"))
		if err != nil {
			return fmt.Errorf("cftraj: parsing Width: %v", err)
		}
		height, err := cast.ToFloat64E(Cfg.Get("Height"))
		if err != nil {
			return fmt.Errorf("cftraj: parsing Height: %v", err)
		}
		w, err := os.Create(out)
		if err != nil {
			return err
		}
		defer w.Close()
		return d.PlotPNG(w, vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch)
	},
	DisableAutoGenTag: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a trajectory file over HTTP",
	Long: `serve starts a web server on Addr with a JSON summary at
/api/summary, a GeoJSON FeatureCollection at /api/geojson, and a rendered
map at /map.png.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		addr := Cfg.GetString("Addr")
		mux := http.NewServeMux()
		cftraj.NewServer(d).RegisterHandlers(mux)
		log.Printf("Server starting at %s...", addr)
		return http.ListenAndServe(addr, mux)
	},
	DisableAutoGenTag: true,
}

var stampCmd = &cobra.Command{
	Use:   "stamp",
	Short: "Stamp CF discovery attributes onto a trajectory file",
	Long: `stamp sets the standard CF global attributes (conventions version,
feature type, geospatial bounds, and time coverage) plus any creator and
title attributes on InputFile and writes the result to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openInput()
		if err != nil {
			return err
		}
		out, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		o, err := d.AssignCFAttrs(cftraj.CFAttrs{
			CreatorName:  Cfg.GetString("CreatorName"),
			CreatorEmail: Cfg.GetString("CreatorEmail"),
			Title:        Cfg.GetString("Title"),
			Summary:      Cfg.GetString("Summary"),
		})
		if err != nil {
			return err
		}
		return o.SaveFile(out, d.SourceLayout)
	},
	DisableAutoGenTag: true,
}
