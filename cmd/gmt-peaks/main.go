package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goodmultitracks/multitrack/version"
	"github.com/goodmultitracks/multitrack/waveform"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	pixels := flag.Int("p", 80, "Number of peak columns to print per track.")
	channels := flag.Int("c", 1, "Number of interleaved channels in the input; they are folded into one track.")
	workers := flag.Int("j", runtime.NumCPU(), "Number of tracks processed in parallel.")
	bars := flag.Bool("b", false, "Draw the peaks as a bar of characters instead of numbers.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	store := waveform.NewStore()
	updates, unsubscribe := store.Subscribe(flag.NArg())
	defer unsubscribe()
	builder := waveform.NewBuilder(context.Background(), store, *workers)
	retval := 0
	submitted := 0
	for _, param := range flag.Args() {
		raw, err := readRaw(param, max(*channels, 1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read file %v: %v\n", param, err)
			retval = 1
			continue
		}
		if err := builder.Submit(context.Background(), param, raw); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
			continue
		}
		submitted++
	}
	if err := builder.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "building the peaks failed: %v\n", err)
		os.Exit(1)
	}
	for range submitted {
		<-updates
	}
	for _, param := range flag.Args() {
		m, ok := store.Get(param)
		if !ok {
			continue
		}
		peaks := m.Peaks(0, m.Len(), *pixels)
		_, name := filepath.Split(param)
		if *bars {
			fmt.Printf("%-20s %s\n", name, draw(peaks))
			continue
		}
		strs := make([]string, len(peaks))
		for i, p := range peaks {
			strs[i] = fmt.Sprintf("%.3f", p)
		}
		fmt.Printf("%s: %s\n", name, strings.Join(strs, " "))
	}
	os.Exit(retval)
}

// readRaw reads headerless little-endian float32 samples and folds the
// channels of each frame into their peak.
func readRaw(filename string, channels int) ([]float32, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if len(b)%(4*channels) != 0 {
		return nil, fmt.Errorf("size %d is not a whole number of %d-channel float32 frames", len(b), channels)
	}
	samples := make([]float32, len(b)/4)
	if _, err := binary.Decode(b, binary.LittleEndian, samples); err != nil {
		return nil, err
	}
	if channels == 1 {
		return samples, nil
	}
	return waveform.FoldChannels(samples, channels), nil
}

var levels = []rune(" ▁▂▃▄▅▆▇█")

func draw(peaks []float32) string {
	var sb strings.Builder
	for _, p := range peaks {
		i := int(min(max(p, 0), 1) * float32(len(levels)-1))
		sb.WriteRune(levels[i])
	}
	return sb.String()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Prints the waveform peaks of raw float32 PCM files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
