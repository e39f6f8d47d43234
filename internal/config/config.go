package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dupfind/internal/logger"
	"dupfind/internal/scan"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 環境変数名
const (
	EnvRoot       = "DUPFIND_ROOT"
	EnvWorkers    = "DUPFIND_WORKERS"
	EnvFilter     = "DUPFIND_FILTER"
	EnvMinSize    = "DUPFIND_MIN_SIZE"
	EnvSkipHidden = "DUPFIND_SKIP_HIDDEN"
	EnvPreset     = "DUPFIND_PRESET"
	EnvFormat     = "DUPFIND_FORMAT"
	EnvLogLevel   = "DUPFIND_LOG_LEVEL"
	EnvAddr       = "DUPFIND_ADDR"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Scan   ScanConfig   `yaml:"scan" json:"scan"`
	Output OutputConfig `yaml:"output" json:"output"`
	Log    LogConfig    `yaml:"log" json:"log"`
	Server ServerConfig `yaml:"server" json:"server"`
}

// ScanConfig はスキャン設定
type ScanConfig struct {
	Root       string `yaml:"root" json:"root"`
	Workers    int    `yaml:"workers" json:"workers"`
	ChunkSize  int    `yaml:"chunk_size" json:"chunk_size"`
	MinSize    int64  `yaml:"min_size" json:"min_size"`
	Filter     string `yaml:"filter" json:"filter"`
	SkipHidden bool   `yaml:"skip_hidden" json:"skip_hidden"`
	Preset     string `yaml:"preset" json:"preset"`
}

// OutputConfig は出力設定
type OutputConfig struct {
	Format string `yaml:"format" json:"format"` // text または json
}

// LogConfig はログ設定
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// ServerConfig は API サーバー設定
type ServerConfig struct {
	Addr  string `yaml:"addr" json:"addr"`
	Serve bool   `yaml:"serve" json:"serve"` // スキャン後もサーバーを維持
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// LoadEnvFile は .env ファイルを環境変数に読み込む
// 既に設定されている環境変数は上書きしない
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv は環境変数で設定を上書きする
// lookup には通常 os.LookupEnv を渡す
func (f *FileConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRoot); ok && v != "" {
		f.Scan.Root = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWorkers, err)
		}
		f.Scan.Workers = n
	}
	if v, ok := lookup(EnvFilter); ok {
		f.Scan.Filter = v
	}
	if v, ok := lookup(EnvMinSize); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMinSize, err)
		}
		f.Scan.MinSize = n
	}
	if v, ok := lookup(EnvSkipHidden); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSkipHidden, err)
		}
		f.Scan.SkipHidden = b
	}
	if v, ok := lookup(EnvPreset); ok && v != "" {
		f.Scan.Preset = v
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		f.Output.Format = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		f.Log.Level = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		f.Server.Addr = v
	}
	return nil
}

// ToScanConfig はFileConfigをscan.Configに変換する
func (f *FileConfig) ToScanConfig() (scan.Config, error) {
	sc := f.Scan

	// デフォルト値の設定
	config := scan.DefaultConfig()

	if sc.Root != "" {
		config.Root = sc.Root
	}
	if sc.Workers > 0 {
		config.Workers = sc.Workers
	}
	if sc.ChunkSize > 0 {
		config.ChunkSize = sc.ChunkSize
	}
	config.MinSize = sc.MinSize
	config.Filter = sc.Filter
	config.SkipHidden = sc.SkipHidden

	// プリセット
	if sc.Preset != "" {
		preset, ok := scan.GetPreset(sc.Preset)
		if !ok {
			return config, fmt.Errorf("unknown preset: %s", sc.Preset)
		}
		config = preset.Apply(config)
	}

	return config, nil
}

// LogLevel はログレベルを返す
func (f *FileConfig) LogLevel() (logger.Level, error) {
	return logger.ParseLevel(f.Log.Level)
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	sc := f.Scan

	if sc.Workers < 0 {
		return fmt.Errorf("scan.workers must be non-negative")
	}

	if sc.ChunkSize < 0 {
		return fmt.Errorf("scan.chunk_size must be non-negative")
	}

	if sc.MinSize < 0 {
		return fmt.Errorf("scan.min_size must be non-negative")
	}

	if sc.Preset != "" {
		if _, ok := scan.GetPreset(sc.Preset); !ok {
			return fmt.Errorf("scan.preset: unknown preset %q", sc.Preset)
		}
	}

	switch strings.ToLower(f.Output.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", f.Output.Format)
	}

	if _, err := logger.ParseLevel(f.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}
