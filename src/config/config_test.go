package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"screen-capture-fx/src/surface"
	"screen-capture-fx/src/watermark"
)

var configKeys = []string{
	EnvPathVar, "ENABLE_FILE_LOGGING", RegionShapeEnvVar, QuickCropEnvVar, OutputDirEnvVar,
	FileNamePatternEnvVar, WatermarkWorkersEnvVar, WatermarkConfigEnvVar,
}

// clearEnv blanks every key the loader reads; t.Setenv restores them, which
// also undoes anything godotenv sets for those keys.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be false")
	}
	if cfg.RegionShape != surface.ShapeRectangle {
		t.Errorf("Expected rectangle shape, got %v", cfg.RegionShape)
	}
	if !cfg.QuickCrop {
		t.Errorf("Expected QuickCrop to default to true")
	}
	if cfg.OutputDir != "." {
		t.Errorf("Expected OutputDir '.', got '%s'", cfg.OutputDir)
	}
	if cfg.FileNamePattern != DefaultFileNamePattern {
		t.Errorf("Expected default file name pattern, got '%s'", cfg.FileNamePattern)
	}
	if cfg.WatermarkWorkers != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), cfg.WatermarkWorkers)
	}
	if cfg.WatermarkConfigPath != "" {
		t.Errorf("Expected no watermark config path, got '%s'", cfg.WatermarkConfigPath)
	}
	if cfg.Watermark.Text != watermark.DefaultConfig().Text {
		t.Errorf("Expected default watermark text, got '%s'", cfg.Watermark.Text)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENABLE_FILE_LOGGING", "TRUE")
	t.Setenv(RegionShapeEnvVar, "lasso")
	t.Setenv(QuickCropEnvVar, "false")
	t.Setenv(WatermarkWorkersEnvVar, "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true")
	}
	if cfg.RegionShape != surface.ShapeFreehand {
		t.Errorf("Expected freehand shape, got %v", cfg.RegionShape)
	}
	if cfg.QuickCrop {
		t.Errorf("Expected QuickCrop to be false")
	}
	if cfg.WatermarkWorkers != 3 {
		t.Errorf("Expected 3 workers, got %d", cfg.WatermarkWorkers)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "capture.env")
	writeFile(t, envFile, "REGION_SHAPE=freehand\nWATERMARK_WORKERS=2\n")

	t.Setenv(EnvPathVar, envFile)
	t.Setenv(RegionShapeEnvVar, "ellipse")
	t.Setenv(OutputDirEnvVar, "/tmp/shots")
	t.Setenv(WatermarkWorkersEnvVar, "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.RegionShape != surface.ShapeFreehand {
		t.Errorf(".env should win over environment, got %v", cfg.RegionShape)
	}
	if cfg.WatermarkWorkers != 2 {
		t.Errorf(".env should win over environment, got %d workers", cfg.WatermarkWorkers)
	}
	if cfg.OutputDir != "/tmp/shots" {
		t.Errorf("Expected OutputDir from environment, got '%s'", cfg.OutputDir)
	}

	quick := false
	cfg, err = LoadWithOptions(LoadOptions{
		RegionShapeOverride: "ellipse",
		QuickCropOverride:   &quick,
		OutputDirOverride:   "out",
		WorkersOverride:     7,
	})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.RegionShape != surface.ShapeEllipse {
		t.Errorf("override should win, got %v", cfg.RegionShape)
	}
	if cfg.QuickCrop {
		t.Errorf("override should disable QuickCrop")
	}
	if cfg.OutputDir != "out" || cfg.WatermarkWorkers != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsUnknownShape(t *testing.T) {
	clearEnv(t)
	t.Setenv(RegionShapeEnvVar, "hexagon")

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error for an unknown region shape")
	}
}

func TestLoadWatermarkBesideEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "")
	writeFile(t, filepath.Join(dir, DefaultWatermarkFile), "text = \"beside\"\n")
	t.Setenv(EnvPathVar, envFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Watermark.Text != "beside" {
		t.Errorf("Expected watermark text 'beside', got '%s'", cfg.Watermark.Text)
	}
	if cfg.WatermarkConfigPath != filepath.Join(dir, DefaultWatermarkFile) {
		t.Errorf("unexpected watermark path '%s'", cfg.WatermarkConfigPath)
	}
}

func TestLoadMissingWatermarkFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(WatermarkConfigEnvVar, filepath.Join(t.TempDir(), "nope.toml"))

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error for a missing explicit watermark config")
	}
}
