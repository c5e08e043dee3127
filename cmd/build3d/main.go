// Command build3d reconstructs textured 3D building models from shell
// geometry and survey point clouds.
//
// Usage:
//
//	build3d -shell shells.json -cloud points.asc [flags] buildingID...
//
// Shell geometry comes from a JSON file holding face rings per
// building. Point clouds come either from a single file (-cloud) or
// from a directory of per-sheet tiles named <code>.asc (-clouddir),
// located through the sheet codes covering each building footprint.
// Results are written to the output directory as OBJ, MTL and PNG
// files sharing a common prefix.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/soypat/build3d"
	"github.com/soypat/build3d/internal/config"
	"github.com/soypat/build3d/internal/logger"
)

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "build3d:", err)
		os.Exit(2)
	}
	if config.DumpRequested() {
		path := config.ConfigPath()
		if path == "" {
			path = "build3d.yaml"
		}
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintln(os.Stderr, "build3d:", err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	}
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: build3d -shell shells.json [flags] buildingID...")
		flag.PrintDefaults()
		os.Exit(2)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, flag.Args()); err != nil {
		logger.Log.Fatal("reconstruction failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, ids []string) error {
	log := logger.Log
	if cfg.Data.ShellFile == "" {
		return errors.New("no shell geometry: set -shell")
	}
	buildings, err := build3d.LoadShellFile(cfg.Data.ShellFile)
	if err != nil {
		return err
	}
	log.Info("shell geometry loaded",
		zap.String("file", cfg.Data.ShellFile), zap.Int("buildings", len(buildings)))

	var points build3d.PointCloudSource
	switch {
	case cfg.Data.CloudFile != "":
		points = build3d.CloudFileSource{Path: cfg.Data.CloudFile}
	case cfg.Data.CloudDir != "":
		points = build3d.TileDirSource{
			Dir:        cfg.Data.CloudDir,
			SystemCode: cfg.Data.SystemCode,
			Logger:     log,
		}
	default:
		return errors.New("no point cloud source: set -cloud or -clouddir")
	}

	sink, err := build3d.NewDirSink(cfg.Output.Dir)
	if err != nil {
		return err
	}
	method, err := build3d.ParseMethod(cfg.Reconstruction.Method)
	if err != nil {
		return err
	}
	job := build3d.NewJob(buildings, points, sink, build3d.Options{
		LOD:           cfg.Reconstruction.LOD,
		Method:        method,
		ImageSize:     cfg.Reconstruction.ImageSize,
		PointLimit:    cfg.Reconstruction.PointLimit,
		Buffer:        cfg.Reconstruction.Buffer,
		MemoryLimitMB: cfg.Reconstruction.MemoryLimitMB,
		Logger:        log,
	})

	for _, id := range ids {
		res, err := job.Reconstruct(ctx, id)
		if err != nil {
			return fmt.Errorf("building %s: %w", id, err)
		}
		if cfg.Output.WriteCloud {
			if _, err := job.WritePointCloud(ctx, id); err != nil {
				return fmt.Errorf("building %s: %w", id, err)
			}
		}
		fmt.Println(filepath.Join(cfg.Output.Dir, res.OBJFile))
	}

	if cfg.Output.Bundle {
		name := filepath.Join(cfg.Output.Dir, "models.zip")
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := job.Bundle(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("results bundled", zap.String("zip", name))
	}
	return nil
}
