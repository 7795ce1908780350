package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Analysis holds the defaults applied to analysis runs that do not set them.
type Analysis struct {
	Horizon          int      `yaml:"horizon"`
	Scenario         string   `yaml:"scenario"`
	Model            string   `yaml:"model"`
	AdjustmentFactor float64  `yaml:"adjustment_factor"`
	Grain            string   `yaml:"grain"`
	Months           []string `yaml:"months"`
	Segments         []string `yaml:"segments"`
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath     string
	LogDir       string
	OutputDir    string
	HTTPAddr     string
	ExportFormat string
	AnalysisFile string
	Analysis     Analysis
}

// Load loads the configuration from .env files, environment variables and an
// optional YAML file of analysis defaults (ANALYSIS_CONFIG).
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	outputDir := getEnv("OUTPUT_DIR", filepath.Join(dataPath, "output"))

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	cfg := &AppConfig{
		DataPath:     dataPath,
		LogDir:       logDir,
		OutputDir:    outputDir,
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		ExportFormat: getEnv("EXPORT_FORMAT", "csv"),
		AnalysisFile: getEnv("ANALYSIS_CONFIG", ""),
		Analysis: Analysis{
			Horizon:          getEnvInt("FORECAST_HORIZON", 3),
			Scenario:         getEnv("FORECAST_SCENARIO", "realistic"),
			Model:            getEnv("FORECAST_MODEL", "ensemble"),
			AdjustmentFactor: getEnvFloat("ADJUSTMENT_FACTOR", 1.0),
			Grain:            getEnv("TIMELINE_GRAIN", "month"),
		},
	}

	// 4. YAML overlay for analysis defaults
	if cfg.AnalysisFile != "" {
		if err := cfg.Analysis.overlay(cfg.AnalysisFile); err != nil {
			return nil, err
		}
		log.Debug().Str("path", cfg.AnalysisFile).Msg("Loaded analysis defaults")
	}

	return cfg, nil
}

// overlay replaces fields that are set in the YAML file at path.
func (a *Analysis) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read analysis config %s: %w", path, err)
	}
	var file Analysis
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse analysis config %s: %w", path, err)
	}

	if file.Horizon != 0 {
		a.Horizon = file.Horizon
	}
	if file.Scenario != "" {
		a.Scenario = file.Scenario
	}
	if file.Model != "" {
		a.Model = file.Model
	}
	if file.AdjustmentFactor != 0 {
		a.AdjustmentFactor = file.AdjustmentFactor
	}
	if file.Grain != "" {
		a.Grain = file.Grain
	}
	if len(file.Months) > 0 {
		a.Months = file.Months
	}
	if len(file.Segments) > 0 {
		a.Segments = file.Segments
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if floatVal, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
