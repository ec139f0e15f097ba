package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	Log     LogConfig
	Chart   ChartConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	chart, err := loadChartConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Dataset: loadDatasetConfig(),
		Log:     logCfg,
		Chart:   chart,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DatasetConfig 描述乘客数据文件位置。
type DatasetConfig struct {
	Path string
}

func loadDatasetConfig() DatasetConfig {
	return DatasetConfig{Path: getEnvOrDefault("DATASET_PATH", "train.csv")}
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level string
	// Format is "console" or "json".
	Format      string
	Development bool
}

func loadLogConfig() (LogConfig, error) {
	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console"))
	if format != "console" && format != "json" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}

	dev, err := parseBoolEnv("LOG_DEVELOPMENT", false)
	if err != nil {
		return LogConfig{}, err
	}

	return LogConfig{
		Level:       strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format:      format,
		Development: dev,
	}, nil
}

// ChartConfig 描述图表尺寸。
type ChartConfig struct {
	Width  int
	Height int
}

func loadChartConfig() (ChartConfig, error) {
	cfg := ChartConfig{Width: 640, Height: 480}

	width, err := parseOptionalIntEnv("CHART_WIDTH")
	if err != nil {
		return ChartConfig{}, err
	}
	if width != nil {
		if *width <= 0 {
			return ChartConfig{}, fmt.Errorf("invalid CHART_WIDTH value %d", *width)
		}
		cfg.Width = *width
	}

	height, err := parseOptionalIntEnv("CHART_HEIGHT")
	if err != nil {
		return ChartConfig{}, err
	}
	if height != nil {
		if *height <= 0 {
			return ChartConfig{}, fmt.Errorf("invalid CHART_HEIGHT value %d", *height)
		}
		cfg.Height = *height
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
