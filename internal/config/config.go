package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Filesystem layout
	WorkDir    string
	PreviewDir string
	CropDir    string

	// Rasterizer
	DPI      int
	Pdftoppm string

	// OCR
	OCREngine     string
	TesseractPath string
	OCRLanguage   string
	OCRPageSeg    int
	OCRTimeout    time.Duration
	StatsWindow   time.Duration

	// Segmentation
	TopMargin    int
	BottomMargin int
	MinHeight    int

	// Page workers during indexing
	Workers int

	// HTTP surface
	Port   string
	APIKey string

	LogLevel string
}

// Load reads configuration from the environment, after merging any .env
// file found in the working directory.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		WorkDir:    envOr("QCROP_WORK_DIR", "temp_pages"),
		PreviewDir: envOr("QCROP_PREVIEW_DIR", "extracted_questions"),
		CropDir:    envOr("QCROP_CROP_DIR", "cropped_questions"),

		DPI:      envInt("QCROP_DPI", 300),
		Pdftoppm: envOr("QCROP_PDFTOPPM", "pdftoppm"),

		OCREngine:     strings.ToLower(envOr("QCROP_OCR_ENGINE", "tesseract")),
		TesseractPath: envOr("QCROP_TESSERACT", "tesseract"),
		OCRLanguage:   envOr("QCROP_OCR_LANG", "eng"),
		OCRPageSeg:    envInt("QCROP_OCR_PSM", 3),
		OCRTimeout:    envDuration("QCROP_OCR_TIMEOUT", 2*time.Minute),
		StatsWindow:   envDuration("QCROP_STATS_WINDOW", time.Hour),

		TopMargin:    envInt("QCROP_TOP_MARGIN", 6),
		BottomMargin: envInt("QCROP_BOTTOM_MARGIN", 8),
		MinHeight:    envInt("QCROP_MIN_HEIGHT", 20),

		Workers: envInt("QCROP_WORKERS", 1),

		Port:   envOr("QCROP_PORT", "8091"),
		APIKey: os.Getenv("QCROP_API_KEY"),

		LogLevel: envOr("QCROP_LOG_LEVEL", "info"),
	}

	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.OCRPageSeg < 0 {
		cfg.OCRPageSeg = 3
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 2 * time.Minute
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}
	if cfg.TopMargin < 0 {
		cfg.TopMargin = 6
	}
	if cfg.BottomMargin < 0 {
		cfg.BottomMargin = 8
	}
	if cfg.MinHeight <= 0 {
		cfg.MinHeight = 20
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.OCREngine {
	case "tesseract", "gosseract":
	default:
		return fmt.Errorf("QCROP_OCR_ENGINE must be tesseract or gosseract, got %q", c.OCREngine)
	}
	if c.WorkDir == "" || c.PreviewDir == "" || c.CropDir == "" {
		return fmt.Errorf("QCROP_WORK_DIR, QCROP_PREVIEW_DIR and QCROP_CROP_DIR must be non-empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("QCROP_PORT must be numeric: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
