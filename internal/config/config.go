// Package config provides environment-backed configuration for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all runtime settings. Values come from environment variables;
// a .env file is loaded by the CLI entry point before Load runs.
type Config struct {
	// HTTP
	Port int `validate:"min=1,max=65535"`

	// Stores
	DatabaseURL    string `validate:"required"`
	MinioEndpoint  string `validate:"required"`
	MinioAccessKey string `validate:"required"`
	MinioSecretKey string `validate:"required"`
	MinioBucket    string `validate:"required"`
	MinioUseSSL    bool

	// Dispatch
	Workers       int           `validate:"min=1"`
	QueueCapacity int           `validate:"min=1"`
	StageTimeout  time.Duration `validate:"min=1000000000"`

	// Upload limits
	MaxUploadMB int `validate:"min=1"`

	// Video output
	VideoWidth       int     `validate:"min=16"`
	VideoHeight      int     `validate:"min=16"`
	VideoFPS         int     `validate:"min=1,max=120"`
	AnimationSeconds float64 `validate:"gt=0"`

	// External tools
	VtracerPath     string `validate:"required"`
	RsvgConvertPath string `validate:"required"`
	FFmpegPath      string `validate:"required"`
	BlenderPath     string
	HandScriptPath  string
	HandOverlay     bool

	// Logging
	Debug bool
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             envInt("PORT", 8000),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MinioEndpoint:    envString("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:   envString("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:   envString("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:      envString("MINIO_BUCKET", "sketches"),
		MinioUseSSL:      envBool("MINIO_USE_SSL", false),
		Workers:          envInt("WORKERS", 2),
		QueueCapacity:    envInt("QUEUE_CAPACITY", 64),
		StageTimeout:     envDuration("STAGE_TIMEOUT", 90*time.Second),
		MaxUploadMB:      envInt("MAX_UPLOAD_MB", 10),
		VideoWidth:       envInt("VIDEO_WIDTH", 1920),
		VideoHeight:      envInt("VIDEO_HEIGHT", 1080),
		VideoFPS:         envInt("VIDEO_FPS", 30),
		AnimationSeconds: envFloat("ANIMATION_SECONDS", 5.0),
		VtracerPath:      envString("VTRACER_PATH", "vtracer"),
		RsvgConvertPath:  envString("RSVG_CONVERT_PATH", "rsvg-convert"),
		FFmpegPath:       envString("FFMPEG_PATH", "ffmpeg"),
		BlenderPath:      envString("BLENDER_PATH", "blender"),
		HandScriptPath:   os.Getenv("HAND_SCRIPT_PATH"),
		HandOverlay:      envBool("HAND_OVERLAY", false),
		Debug:            envBool("DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration using the validator.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.HandOverlay && c.HandScriptPath == "" {
		return fmt.Errorf("config validation failed: HAND_SCRIPT_PATH is required when HAND_OVERLAY is enabled")
	}
	return nil
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
