// Command simtemp configures the simtemp driver, streams its samples and
// optionally verifies that an alert arrives within the test window.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/luki/simtemp/internal/app"
	"github.com/luki/simtemp/internal/config"
	"github.com/luki/simtemp/internal/store"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	args := os.Args[1:]
	cmd := "run"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "run":
		runIngest(args)
	case "stats":
		runStats(args)
	case "history":
		runHistory(args)
	case "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		os.Exit(2)
	}
}

func runIngest(args []string) {
	cfg, err := parseRunFlags(args)
	if err != nil {
		if errors.Is(err, errHelp) {
			return
		}
		log.WithError(err).Fatal("invalid configuration")
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := app.Run(ctx, cfg, os.Stdout)
	if err != nil {
		stop()
		log.WithError(err).Fatal("simtemp stopped")
	}
	log.WithFields(log.Fields{
		"state":   res.State,
		"verdict": res.Verdict,
		"samples": res.Samples,
	}).Debug("run complete")
}

func runStats(args []string) {
	fs := newFlagSet("stats")
	dir := fs.String("sysfs", config.DefaultSysfsDir, "driver attribute directory")
	if err := fs.Parse(args); err != nil {
		return
	}
	if err := app.Stats(*dir, os.Stdout); err != nil {
		log.WithError(err).Fatal("stats unavailable")
	}
}

func runHistory(args []string) {
	fs := newFlagSet("history")
	dir := fs.String("record", store.DataDir(), "sample log directory")
	if err := fs.Parse(args); err != nil {
		return
	}
	if err := app.History(*dir, fs.Arg(0), os.Stdout); err != nil {
		log.WithError(err).Fatal("history unavailable")
	}
}

func printHelp() {
	fmt.Println("Usage: simtemp [run] [flags]")
	fmt.Println("       simtemp stats [-sysfs dir]")
	fmt.Println("       simtemp history [-record dir] [YYYY-MM-DD]")
	fmt.Println()
	fmt.Println("Run flags:")
	fs, _ := runFlagSet()
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  simtemp -sampling 100 -threshold 30000")
	fmt.Println("  simtemp -test -mode ramp")
	fmt.Println("  simtemp stats")
}
