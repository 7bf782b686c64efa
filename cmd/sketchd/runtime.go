package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/sketch-animator/internal/animate"
	"github.com/jonathan/sketch-animator/internal/config"
	"github.com/jonathan/sketch-animator/internal/db"
	"github.com/jonathan/sketch-animator/internal/pipeline"
	"github.com/jonathan/sketch-animator/internal/render"
	"github.com/jonathan/sketch-animator/internal/storage"
	"github.com/jonathan/sketch-animator/internal/vectorize"
)

// services bundles the shared wiring the subcommands build on.
type services struct {
	cfg      *config.Config
	logger   *zap.Logger
	database *db.DB
	blobs    *storage.MinioStore
	runner   *pipeline.Runner
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildServices loads configuration and connects the database, blob store and
// pipeline stages.
func buildServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	blobs, err := storage.NewMinio(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		database.Close()
		return nil, err
	}

	runner := pipeline.NewRunner(
		database,
		blobs,
		vectorize.New(cfg.VtracerPath, cfg.VideoWidth, cfg.VideoHeight, logger),
		animate.New(cfg.VideoWidth, cfg.VideoHeight, cfg.VideoFPS, cfg.AnimationSeconds, logger),
		render.New(render.Tools{
			RsvgConvert: cfg.RsvgConvertPath,
			FFmpeg:      cfg.FFmpegPath,
			Blender:     cfg.BlenderPath,
			HandScript:  cfg.HandScriptPath,
			HandOverlay: cfg.HandOverlay,
		}, logger),
		cfg.StageTimeout,
		logger,
	)

	return &services{
		cfg:      cfg,
		logger:   logger,
		database: database,
		blobs:    blobs,
		runner:   runner,
	}, nil
}

func (s *services) close() {
	s.database.Close()
	_ = s.logger.Sync()
}
