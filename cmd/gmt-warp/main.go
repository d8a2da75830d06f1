package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/grid"
	"github.com/goodmultitracks/multitrack/tempo"
	"github.com/goodmultitracks/multitrack/version"
	"github.com/goodmultitracks/multitrack/warp"
)

// pixelsPerSecond is the scale of the virtual ruler the drag is replayed on.
const pixelsPerSecond = 100

func main() {
	log.SetFlags(0)
	log.SetPrefix("gmt-warp: ")
	help := flag.Bool("h", false, "Show help.")
	measure := flag.Int("m", 0, "Measure to move (1-based).")
	to := flag.String("to", "", "New position of the measure, in seconds or m:ss. The measure is dragged there as on the ruler.")
	bpm := flag.Float64("bpm", 0, "Instead of -to, give the new tempo of the segment between the anchor and the measure.")
	anchor := flag.Float64("anchor", 0, "Anchor measure for -bpm. By default, the measure of the last tempo change before the moved measure.")
	output := flag.String("o", "", "Output file. The extension chooses between .json and .yml. By default, the song is written to standard output as YAML.")
	inPlace := flag.Bool("w", false, "Overwrite the input file.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() != 1 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if *measure < 2 {
		fmt.Fprintf(os.Stderr, "give the measure to move with -m; it must be 2 or greater\n")
		os.Exit(1)
	}
	if (*to == "") == (*bpm == 0) {
		fmt.Fprintf(os.Stderr, "give exactly one of -to and -bpm\n")
		os.Exit(1)
	}
	filename := flag.Arg(0)
	inputBytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read file %v: %v\n", filename, err)
		os.Exit(1)
	}
	song, err := multitrack.ReadSong(inputBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	m := tempo.ForSong(&song)
	var result warp.Result
	if *to != "" {
		t, err := tempo.ParseTime(*to)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -to: %v\n", err)
			os.Exit(1)
		}
		result, err = drag(m, song.Duration, *measure, t)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	} else {
		result = warp.Result{AnchorMeasure: *anchor, DragMeasure: *measure, NewBPM: *bpm}
		if result.AnchorMeasure == 0 {
			result.AnchorMeasure = 1
			if i := m.ChangeBefore(m.SecondsAt(float64(*measure))); i >= 0 {
				result.AnchorMeasure = m.MeasureAt(m.Changes()[i].Time)
			}
		}
	}
	warped, ok := warp.Commit(song, result.AnchorMeasure, result.DragMeasure, result.NewBPM)
	if !ok {
		fmt.Fprintf(os.Stderr, "measure %d cannot be moved there; it would reach the next tempo change\n", *measure)
		os.Exit(1)
	}
	log.Printf("measure %d at %v, %v BPM from measure %.3g", result.DragMeasure,
		tempo.FormatTime(tempo.ForSong(&warped).SecondsAt(float64(result.DragMeasure))),
		tempo.FormatBPM(result.NewBPM), result.AnchorMeasure)
	path := *output
	if *inPlace {
		path = filename
	}
	ext := ".yml"
	if path != "" {
		ext = filepath.Ext(path)
	}
	outputBytes, err := multitrack.MarshalSong(warped, ext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not marshal the song: %v\n", err)
		os.Exit(1)
	}
	if path == "" {
		os.Stdout.Write(outputBytes)
		return
	}
	if err := os.WriteFile(path, outputBytes, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "could not write file %v: %v\n", path, err)
		os.Exit(1)
	}
}

// drag replays a ruler drag of measure to time t.
func drag(m *tempo.Map, duration float64, measure int, t float64) (warp.Result, error) {
	v := grid.Viewport{Duration: duration, Width: duration * pixelsPerSecond}
	var g warp.Gesture
	if err := g.Down(m, v, v.PixelAt(m.SecondsAt(float64(measure)))); err != nil {
		return warp.Result{}, err
	}
	r, ok := g.Up(v.PixelAt(t))
	if !ok {
		return warp.Result{}, fmt.Errorf("measure %d cannot be dropped at or before its anchor", measure)
	}
	return r, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Moves a measure of a .yml or .json song by retiming the tempo map.\nUsage: %s [flags] path\n", os.Args[0])
	flag.PrintDefaults()
}
