package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/report"
	"github.com/goodmultitracks/multitrack/tempo"
	"github.com/goodmultitracks/multitrack/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	templateName := flag.String("r", "tempomap.txt", "Name of the report template to render.")
	templateDir := flag.String("t", "", "Directory of custom report templates. By default, the built-in templates are used.")
	list := flag.Bool("l", false, "List the available report templates and exit.")
	directory := flag.String("o", "", "Directory where to write the reports, named after the songs. By default, reports are written to standard output.")
	zoom := flag.Float64("zoom", 100, "Zoom in pixels per second; decides which beats and subdivisions are dense enough to be listed.")
	beats := flag.Bool("beats", true, "Include beat lines.")
	subdiv := flag.Bool("subdiv", false, "Include sixteenth subdivision lines.")
	from := flag.String("from", "0", "Start of the reported window, in seconds or m:ss.")
	to := flag.String("to", "", "End of the reported window, in seconds or m:ss. By default, the end of the song.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	var reporter *report.Reporter
	var err error
	if *templateDir != "" {
		reporter, err = report.NewFromTemplates(*templateDir)
	} else {
		reporter, err = report.New()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create the reporter: %v\n", err)
		os.Exit(1)
	}
	if *list {
		for _, name := range reporter.Names() {
			fmt.Println(name)
		}
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	opts := report.Options{Zoom: *zoom, ShowBeats: *beats, ShowSubdivisions: *subdiv}
	if opts.From, err = tempo.ParseTime(*from); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
		os.Exit(1)
	}
	if *to != "" {
		if opts.To, err = tempo.ParseTime(*to); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -to: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %w", filename, err)
		}
		song, err := multitrack.ReadSong(inputBytes)
		if err != nil {
			return err
		}
		if err := song.Validate(); err != nil {
			return fmt.Errorf("invalid song: %w", err)
		}
		if *directory == "" {
			return reporter.Execute(os.Stdout, *templateName, &song, opts)
		}
		if err := os.MkdirAll(*directory, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %w", *directory, err)
		}
		_, name := filepath.Split(filename)
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + *templateName
		f, err := os.Create(filepath.Join(*directory, name))
		if err != nil {
			return fmt.Errorf("could not create file %v: %w", name, err)
		}
		if err := reporter.Execute(f, *templateName, &song, opts); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Renders the tempo map and the grid of .yml or .json songs as text reports.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
