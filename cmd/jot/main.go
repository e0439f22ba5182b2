package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/stevestencil/jot/config"
	"github.com/stevestencil/jot/utils"
)

const HelpBanner = `
   _       _
  (_) ___ | |_
  | |/ _ \| __|
  | | (_) | |_
 _/ |\___/ \__|
|__/

Movable image and text overlays.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", "", "Scene file (.toml) or directory of scene files")
	destination = flag.String("out", pipeName, "Destination image or directory")
	background  = flag.String("bg", "", "Background image: file, URL or - for stdin")
	configFile  = flag.String("config", "", "Configuration file")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of scenes to render concurrently")
	debug       = flag.Bool("debug", false, "Log every gesture and undo step")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *source == "" {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease provide a scene file with the -in flag!", utils.ErrorMessage))
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to load the configuration: %v", utils.ErrorMessage), err)
	}
	level, _ := cfg.Level()
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts, err := cfg.Options(logger)
	if err != nil {
		log.Fatalf(utils.DecorateText("Invalid configuration: %v", utils.ErrorMessage), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &runner{
		Src:      *source,
		Dst:      *destination,
		Bg:       *background,
		PipeName: pipeName,
		Workers:  *workers,
		opts:     opts,
		log:      logger,
	}
	if *destination != pipeName {
		msg := fmt.Sprintf("%s %s",
			utils.DecorateText("✎ JOT", utils.StatusMessage),
			utils.DecorateText("⇢ rendering scene...", utils.DefaultMessage),
		)
		r.spinner = utils.NewSpinner(os.Stderr, msg, time.Millisecond*80, true)
	}

	// Capture CTRL-C signal and restore back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		if r.spinner != nil {
			r.spinner.RestoreCursor()
		}
		cancel()
	}()

	now := time.Now()
	if err := r.execute(ctx); err != nil {
		log.Fatalf(
			utils.DecorateText("\nError rendering the scene: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
	}
	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}
