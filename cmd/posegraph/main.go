// posegraph drives an animated scene graph and reports on its propagation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/posegraph/internal/config"
	"github.com/Faultbox/posegraph/internal/inspect"
	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/internal/scene"
	"github.com/Faultbox/posegraph/internal/sim"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	command := flag.Arg(0)
	args := flag.Args()
	if len(args) > 0 {
		args = args[1:]
	}

	switch command {
	case "simulate", "sim":
		run(cmdSimulate)
	case "dump":
		run(cmdDump)
	case "serve":
		run(cmdServe)
	case "config":
		cmdConfig(args)
	case "", "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`posegraph - scene graph transform propagation demo

Usage:
  posegraph [flags] <command> [args]

Commands:
  simulate          Build the demo scene and run -frames frames
  dump              Run the demo and print the final scene snapshot
  serve             Run the demo continuously with the HTTP inspector
  config [path]     Write the effective config as YAML

Flags:
  -config <file>    Config file (default ./config.yaml or user config dir)
  -debug            Enable debug logging
  -frames <n>       Frames to simulate
  -addr <host:port> Inspector listen address
  -page-size <n>    Node slots per arena page

Examples:
  posegraph -frames 600 simulate
  posegraph -debug dump
  posegraph -addr :8088 serve`)
}

// run loads configuration, initializes logging and runs cmd.
func run(cmd func(ctx context.Context, cfg *config.Config) error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, cfg); err != nil {
		logger.Error("command failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func cmdSimulate(ctx context.Context, cfg *config.Config) error {
	d, err := sim.Build(cfg)
	if err != nil {
		return err
	}

	sum, err := d.Run(ctx, sim.RunOptions{Frames: cfg.Simulation.Frames})
	if err != nil {
		return err
	}

	fmt.Printf("Frames:        %d\n", sum.Frames)
	fmt.Printf("Nodes:         %d (%d pages of %d)\n", d.Scene.Arena().Len(), d.Scene.Arena().PageCount(), d.Scene.Arena().PageSize())
	fmt.Printf("Visited:       %d (%.1f per frame)\n", sum.Visited, float64(sum.Visited)/float64(max(sum.Frames, 1)))
	fmt.Printf("View updates:  %d\n", sum.ViewUpdated)
	fmt.Printf("Skins:         %d\n", sum.Skins)
	fmt.Printf("Avg frame:     %v\n", sum.AvgFrame())
	fmt.Printf("Centroid:      %v\n", d.Scene.Centroid())
	box := d.Scene.BBox()
	fmt.Printf("Bounds:        %v .. %v\n", box.Min, box.Max)
	return nil
}

func cmdDump(ctx context.Context, cfg *config.Config) error {
	d, err := sim.Build(cfg)
	if err != nil {
		return err
	}

	var last scene.FrameStats
	frames := cfg.Simulation.Frames
	if frames <= 0 {
		frames = 1
	}
	if _, err := d.Run(ctx, sim.RunOptions{
		Frames:  frames,
		OnFrame: func(_ int, st scene.FrameStats) { last = st },
	}); err != nil {
		return err
	}

	fmt.Print(inspect.Dump(inspect.Capture(d.Scene, frames-1, last)))
	return nil
}

func cmdServe(ctx context.Context, cfg *config.Config) error {
	d, err := sim.Build(cfg)
	if err != nil {
		return err
	}

	srv := inspect.NewServer()
	srv.Publish(inspect.Capture(d.Scene, 0, scene.FrameStats{}))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Inspector.Addr)
	})
	g.Go(func() error {
		_, err := d.Run(ctx, sim.RunOptions{
			Pace: cfg.Simulation.FrameDT,
			OnFrame: func(frame int, st scene.FrameStats) {
				srv.Publish(inspect.Capture(d.Scene, frame, st))
			},
		})
		return err
	})
	return g.Wait()
}

func cmdConfig(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if len(args) == 0 {
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(args[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
