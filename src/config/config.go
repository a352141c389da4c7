package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"screen-capture-fx/src/surface"
	"screen-capture-fx/src/watermark"
)

const (
	EnvPathVar             = "SCREEN_CAPTURE_FX"
	RegionShapeEnvVar      = "REGION_SHAPE"
	QuickCropEnvVar        = "QUICK_CROP"
	OutputDirEnvVar        = "OUTPUT_DIR"
	FileNamePatternEnvVar  = "FILE_NAME_PATTERN"
	WatermarkWorkersEnvVar = "WATERMARK_WORKERS"
	WatermarkConfigEnvVar  = "WATERMARK_CONFIG"

	DefaultFileNamePattern = "screenshot_%y-%mo-%d_%h-%mi-%s"
	DefaultWatermarkFile   = "watermark.toml"
)

// LoadOptions carries command-line overrides. Zero values leave the
// configured value in place.
type LoadOptions struct {
	RegionShapeOverride     string
	QuickCropOverride       *bool
	OutputDirOverride       string
	WatermarkConfigOverride string
	WorkersOverride         int
}

type Config struct {
	EnableFileLogging   bool
	RegionShape         surface.Shape
	QuickCrop           bool
	OutputDir           string
	FileNamePattern     string
	WatermarkWorkers    int
	WatermarkConfigPath string
	Watermark           watermark.Config
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_CAPTURE_FX env var as a path to a config file
	// Values from the .env file win over the inherited environment.
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}
	get := func(key string) string {
		if v := strings.TrimSpace(dotenvValues[key]); v != "" {
			return v
		}
		return strings.TrimSpace(os.Getenv(key))
	}

	shape, err := surface.ParseShape(firstNonEmpty(opts.RegionShapeOverride, get(RegionShapeEnvVar)))
	if err != nil {
		return nil, err
	}

	quickCrop := parseBool(get(QuickCropEnvVar), true)
	if opts.QuickCropOverride != nil {
		quickCrop = *opts.QuickCropOverride
	}

	workers := runtime.NumCPU()
	if n, err := strconv.Atoi(get(WatermarkWorkersEnvVar)); err == nil && n > 0 {
		workers = n
	}
	if opts.WorkersOverride > 0 {
		workers = opts.WorkersOverride
	}

	cfg := &Config{
		EnableFileLogging: parseBool(get("ENABLE_FILE_LOGGING"), false),
		RegionShape:       shape,
		QuickCrop:         quickCrop,
		OutputDir:         firstNonEmpty(opts.OutputDirOverride, get(OutputDirEnvVar), "."),
		FileNamePattern:   firstNonEmpty(get(FileNamePatternEnvVar), DefaultFileNamePattern),
		WatermarkWorkers:  workers,
	}

	cfg.WatermarkConfigPath, cfg.Watermark, err = resolveWatermark(opts, get(WatermarkConfigEnvVar), envPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveWatermark loads an explicitly configured watermark file, failing if
// it cannot be read. Without one, watermark.toml beside the .env file is used
// when present, else the defaults.
func resolveWatermark(opts LoadOptions, configured, envPath string) (string, watermark.Config, error) {
	if path := firstNonEmpty(opts.WatermarkConfigOverride, configured); path != "" {
		wm, err := LoadWatermark(path)
		return path, wm, err
	}
	if envPath != "" {
		path := filepath.Join(filepath.Dir(envPath), DefaultWatermarkFile)
		if _, err := os.Stat(path); err == nil {
			wm, err := LoadWatermark(path)
			return path, wm, err
		}
	}
	return "", watermark.DefaultConfig(), nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func parseBool(value string, defaultValue bool) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
