// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command mangactl runs catalog maintenance against the configured store
// without going through the HTTP API.
//
// # Commands
//
//	mangactl generate -count 3500
//	mangactl export -out ./catalog.csv
//	mangactl export -out gs://bucket/catalog.csv
//	mangactl duplicates
//
// Configuration is read from the same environment variables as cmd/api.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/taibuivan/mimanga/internal/bootstrap"
	"github.com/taibuivan/mimanga/internal/core/export"
	"github.com/taibuivan/mimanga/internal/core/generator"
	"github.com/taibuivan/mimanga/internal/core/manga"
	"github.com/taibuivan/mimanga/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "mangactl:", err)
		os.Exit(1)
	}
}

func printUsage(writer io.Writer) {
	fmt.Fprintln(writer, `usage: mangactl <command> [flags]

commands:
  generate   -count N          generate N unique mangas
  export     -out PATH|gs://   write the catalog as CSV
  duplicates                   list titles stored more than once`)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	command, rest := args[0], args[1:]
	switch command {
	case "generate", "export", "duplicates":
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", command)
	}

	resources, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer resources.Close()

	switch command {
	case "generate":
		return runGenerate(ctx, rest, cfg, resources, logger, stdout)
	case "export":
		return runExport(ctx, rest, cfg, resources, logger, stdout)
	default:
		return runDuplicates(ctx, resources, logger, stdout)
	}
}

// # Commands

func runGenerate(ctx context.Context, args []string, cfg *config.Config, resources *bootstrap.Resources, logger *slog.Logger, stdout io.Writer) error {
	flags := flag.NewFlagSet("generate", flag.ContinueOnError)
	count := flags.Int("count", generator.DefaultCount, "number of mangas to generate")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *count < 1 || *count > cfg.GenerationMaxCount {
		return fmt.Errorf("count must be between 1 and %d", cfg.GenerationMaxCount)
	}

	result, err := resources.Generator(cfg, logger).Generate(ctx, *count)
	if result != nil {
		if encodeErr := writeJSON(stdout, map[string]any{
			"requested":      result.Requested,
			"generated":      result.Generated,
			"attempts":       result.Attempts,
			"rejected":       result.Rejected,
			"store_rejected": result.StoreRejected,
			"batches":        result.Batches,
			"duration":       result.Duration.String(),
		}); encodeErr != nil {
			return encodeErr
		}
	}
	return err
}

func runExport(ctx context.Context, args []string, cfg *config.Config, resources *bootstrap.Resources, logger *slog.Logger, stdout io.Writer) error {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	out := flags.String("out", "", "destination file or gs://bucket/object")
	if err := flags.Parse(args); err != nil {
		return err
	}

	dest := *out
	if dest == "" && cfg.ExportBucket != "" {
		dest = "gs://" + cfg.ExportBucket + "/catalog.csv"
	}
	if dest == "" {
		return errors.New("export needs -out or EXPORT_BUCKET")
	}

	sink, err := sinkFor(ctx, dest, cfg, resources)
	if err != nil {
		return err
	}

	exporter := export.NewExporter(manga.NewService(resources.Catalog, logger), logger)
	written, err := exporter.Export(ctx, sink)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]any{"location": sink.Location(), "records": written})
}

func sinkFor(ctx context.Context, dest string, cfg *config.Config, resources *bootstrap.Resources) (export.Sink, error) {
	if !strings.HasPrefix(dest, "gs://") {
		return export.SinkFor(dest, nil)
	}
	client, err := resources.OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return export.SinkFor(dest, client)
}

func runDuplicates(ctx context.Context, resources *bootstrap.Resources, logger *slog.Logger, stdout io.Writer) error {
	groups, err := manga.NewService(resources.Catalog, logger).Duplicates(ctx)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]any{"count": len(groups), "duplicates": groups})
}

func writeJSON(writer io.Writer, payload any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
