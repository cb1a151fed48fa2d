package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nettap/topoviz/config"
	"github.com/nettap/topoviz/ingest"
	"github.com/nettap/topoviz/render"
	"github.com/nettap/topoviz/server"
)

type cliOptions struct {
	mode       string
	configPath string
	dataFile   string
	outputFile string
	width      float64
	height     float64
	iterations int
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "topoviz: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, opts)

	log := cfg.Logging.NewLogger(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	if opts.mode == "server" {
		srv := server.New(cfg, log, server.NewSnapshotStore(), prometheus.NewRegistry())
		if err := srv.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
		return
	}

	if err := renderFile(cfg, opts); err != nil {
		log.Fatal().Err(err).Msg("rendering failed")
	}
	log.Info().Str("output", opts.outputFile).Msg("render complete")
}

func parseFlags() *cliOptions {
	opts := &cliOptions{}

	flag.StringVar(&opts.mode, "mode", "svg", "Render mode: svg, json, dot, server")
	flag.StringVar(&opts.configPath, "config", "", "Path to config file (YAML)")
	flag.StringVar(&opts.dataFile, "data", "", "Path to snapshot export (JSON)")
	flag.StringVar(&opts.outputFile, "output", "", "Path to output file (defaults to 'topology.[format]')")
	flag.Float64Var(&opts.width, "width", 0, "Viewport width override")
	flag.Float64Var(&opts.height, "height", 0, "Viewport height override")
	flag.IntVar(&opts.iterations, "iterations", 0, "Simulation iteration override")
	flag.Parse()

	if opts.dataFile == "" && opts.mode != "server" {
		fmt.Fprintln(os.Stderr, "Please provide a snapshot file using -data")
		flag.Usage()
		os.Exit(1)
	}

	if opts.outputFile == "" {
		switch opts.mode {
		case "svg":
			opts.outputFile = "topology.svg"
		case "json":
			opts.outputFile = "topology.json"
		case "dot":
			opts.outputFile = "topology.dot"
		}
	}
	return opts
}

// applyOverrides folds CLI flags into the loaded configuration. Flags beat
// both the config file and the environment.
func applyOverrides(cfg *config.Config, opts *cliOptions) {
	if opts.width > 0 {
		cfg.Render.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Render.Height = opts.height
	}
	if opts.iterations > 0 {
		cfg.Layout.Iterations = opts.iterations
	}
}

// renderFile runs a one-shot ingest, layout and render to a file.
func renderFile(cfg *config.Config, opts *cliOptions) error {
	data, err := os.ReadFile(opts.dataFile)
	if err != nil {
		return fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snap, err := ingest.NewJSONProcessor().ProcessData(data)
	if err != nil {
		return fmt.Errorf("failed to process snapshot: %w", err)
	}
	snap.SetDimensions(cfg.Render.Width, cfg.Render.Height)

	options := render.NewDefaultOptions(opts.mode)
	options.Width = snap.Width
	options.Height = snap.Height
	options.Background = cfg.Render.Background
	options.NodeRadius = cfg.Layout.NodeRadius
	options.FontSize = cfg.Render.FontSize
	options.ShowLabels = cfg.Render.ShowLabels
	options.MaxLabel = cfg.Render.MaxLabel

	out, err := render.Generate(snap, cfg.Layout.NewAlgorithm(), options)
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.outputFile, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
