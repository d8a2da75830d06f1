package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/metronome"
	"github.com/goodmultitracks/multitrack/oto"
	"github.com/goodmultitracks/multitrack/tempo"
	"github.com/goodmultitracks/multitrack/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	modeFlag := flag.String("mode", "macro", "Click mode: macro, all or accented.")
	from := flag.String("from", "0", "Start time, in seconds or m:ss.")
	to := flag.String("to", "", "End time, in seconds or m:ss. By default, the end of the song.")
	follow := flag.Bool("f", false, "Follow the wall clock: print each click when the scheduler emits it, as during playback.")
	play := flag.Bool("p", false, "Play the clicks on the audio device while printing them.")
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
	mode, ok := metronome.ParseMode(*modeFlag)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown click mode %q\n", *modeFlag)
		os.Exit(1)
	}
	start, err := tempo.ParseTime(*from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
		os.Exit(1)
	}
	inputBytes, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read file %v: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
	song, err := multitrack.ReadSong(inputBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	end := song.Duration
	if *to != "" {
		if end, err = tempo.ParseTime(*to); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -to: %v\n", err)
			os.Exit(1)
		}
	}
	if !*follow && !*play {
		for _, c := range metronome.Clicks(&song, mode, start, end) {
			printClick(c)
		}
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *to != "" {
		song.Duration = min(song.Duration, end)
	}
	if *play {
		if err := playClicks(ctx, &song, mode, start); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}
	s := metronome.NewScheduler(&song, mode, start)
	wallStart := time.Now()
	clock := func() float64 {
		return start + time.Since(wallStart).Seconds()
	}
	clicks := make(chan metronome.Click)
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, clock, clicks)
		close(clicks)
	}()
	for c := range clicks {
		printClick(c)
	}
	if err := <-done; err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "scheduler failed: %v\n", err)
		os.Exit(1)
	}
}

// playClicks renders the clicks into the audio device. The scheduler is
// driven by the renderer's position, which the device paces.
func playClicks(ctx context.Context, song *multitrack.Song, mode metronome.Mode, start float64) error {
	audioContext, err := oto.NewContext()
	if err != nil {
		return fmt.Errorf("could not acquire oto AudioContext: %w", err)
	}
	defer audioContext.Close()
	sink := audioContext.Output()
	defer sink.Close()
	s := metronome.NewScheduler(song, mode, start)
	r := metronome.NewRenderer(audioContext.SampleRate(), start)
	buffer := make([]float32, audioContext.SampleRate()/100)
	for ctx.Err() == nil && r.Time() < song.Duration {
		clicks := s.Step(r.Time())
		for _, c := range clicks {
			printClick(c)
		}
		r.Add(clicks...)
		r.Render(buffer)
		if err := sink.WriteAudio(buffer); err != nil {
			return err
		}
	}
	return nil
}

func printClick(c metronome.Click) {
	fmt.Printf("%-10s %4d.%-2d accent %d volume %.1f\n", tempo.FormatTime(c.Time), c.Measure, c.Pulse+1, c.Accent, c.Volume)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Lists the metronome clicks of a .yml or .json song.\nUsage: %s [flags] path\n", os.Args[0])
	flag.PrintDefaults()
}
