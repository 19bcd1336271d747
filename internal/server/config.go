package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	ListenAddr string              `json:"listen_addr" yaml:"listen_addr"`
	Ollama     OllamaConfig        `json:"ollama" yaml:"ollama"`
	Database   DatabaseConfig      `json:"database" yaml:"database"`
	Limits     RateLimitConfig     `json:"limits" yaml:"limits"`
	Scanner    ScannerConfig       `json:"scanner" yaml:"scanner"`
	Quality    QualityConfig       `json:"quality" yaml:"quality"`
	Observer   ObservabilityConfig `json:"observability" yaml:"observability"`
}

type OllamaConfig struct {
	Host        string  `json:"host" yaml:"host"`
	Model       string  `json:"model" yaml:"model"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	NumCtx      int     `json:"num_ctx" yaml:"num_ctx"`
	TimeoutSec  int     `json:"timeout_sec" yaml:"timeout_sec"`
	MaxParallel int     `json:"max_parallel" yaml:"max_parallel"`
}

type DatabaseConfig struct {
	DSN            string `json:"dsn" yaml:"dsn"`
	MaxConns       int32  `json:"max_conns" yaml:"max_conns"`
	MigrationsPath string `json:"migrations_path" yaml:"migrations_path"`
}

type RateLimitConfig struct {
	VibePerWindow    int `json:"vibe_per_window" yaml:"vibe_per_window"`
	GeneralPerWindow int `json:"general_per_window" yaml:"general_per_window"`
	WindowSec        int `json:"window_sec" yaml:"window_sec"`
	SweepIntervalSec int `json:"sweep_interval_sec" yaml:"sweep_interval_sec"`
}

type ScannerConfig struct {
	MaxContextFiles int `json:"max_context_files" yaml:"max_context_files"`
	MaxFileSizeKB   int `json:"max_file_size_kb" yaml:"max_file_size_kb"`
}

type QualityConfig struct {
	FallbackThreshold float64 `json:"fallback_threshold" yaml:"fallback_threshold"`
}

type ObservabilityConfig struct {
	OTLPEndpoint string  `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName  string  `json:"service_name" yaml:"service_name"`
	SampleRatio  float64 `json:"sample_ratio" yaml:"sample_ratio"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr: "127.0.0.1:8420",
		Ollama: OllamaConfig{
			Host:        "http://127.0.0.1:11434",
			Model:       "gemma2:2b",
			MaxTokens:   2048,
			Temperature: 0.1,
			NumCtx:      2048,
			TimeoutSec:  120,
			MaxParallel: 2,
		},
		Database: DatabaseConfig{
			MaxConns:       10,
			MigrationsPath: "./migrations",
		},
		Limits: RateLimitConfig{
			VibePerWindow:    30,
			GeneralPerWindow: 120,
			WindowSec:        60,
			SweepIntervalSec: 300,
		},
		Scanner: ScannerConfig{
			MaxContextFiles: 30,
			MaxFileSizeKB:   32,
		},
		Quality: QualityConfig{
			FallbackThreshold: 40,
		},
		Observer: ObservabilityConfig{
			ServiceName: "brain-api",
			SampleRatio: 1,
		},
	}
}

func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json config: %w", err)
		}
	default:
		var yamlErr error
		if yamlErr = yaml.Unmarshal(data, &cfg); yamlErr == nil {
			break
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.New("config format not recognized (expected yaml/json)")
		}
	}
	normalizeConfig(&cfg)
	return cfg, nil
}

func normalizeConfig(cfg *ServerConfig) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = "127.0.0.1:8420"
	}
	if strings.TrimSpace(cfg.Ollama.Host) == "" {
		cfg.Ollama.Host = "http://127.0.0.1:11434"
	}
	if strings.TrimSpace(cfg.Ollama.Model) == "" {
		cfg.Ollama.Model = "gemma2:2b"
	}
	if cfg.Ollama.MaxTokens <= 0 {
		cfg.Ollama.MaxTokens = 2048
	}
	if cfg.Ollama.Temperature < 0 || cfg.Ollama.Temperature > 2 {
		cfg.Ollama.Temperature = 0.1
	}
	if cfg.Ollama.NumCtx <= 0 {
		cfg.Ollama.NumCtx = 2048
	}
	if cfg.Ollama.TimeoutSec <= 0 {
		cfg.Ollama.TimeoutSec = 120
	}
	if cfg.Ollama.MaxParallel <= 0 {
		cfg.Ollama.MaxParallel = 2
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if strings.TrimSpace(cfg.Database.MigrationsPath) == "" {
		cfg.Database.MigrationsPath = "./migrations"
	}
	if cfg.Limits.VibePerWindow <= 0 {
		cfg.Limits.VibePerWindow = 30
	}
	if cfg.Limits.GeneralPerWindow <= 0 {
		cfg.Limits.GeneralPerWindow = 120
	}
	if cfg.Limits.WindowSec <= 0 {
		cfg.Limits.WindowSec = 60
	}
	if cfg.Limits.SweepIntervalSec <= 0 {
		cfg.Limits.SweepIntervalSec = 300
	}
	if cfg.Scanner.MaxContextFiles <= 0 {
		cfg.Scanner.MaxContextFiles = 30
	}
	if cfg.Scanner.MaxFileSizeKB <= 0 {
		cfg.Scanner.MaxFileSizeKB = 32
	}
	if cfg.Quality.FallbackThreshold <= 0 || cfg.Quality.FallbackThreshold > 100 {
		cfg.Quality.FallbackThreshold = 40
	}
	if cfg.Observer.SampleRatio <= 0 || cfg.Observer.SampleRatio > 1 {
		cfg.Observer.SampleRatio = 1
	}
	if strings.TrimSpace(cfg.Observer.ServiceName) == "" {
		cfg.Observer.ServiceName = "brain-api"
	}
}
