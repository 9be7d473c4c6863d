package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for guardrail
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Server  ServerConfig  `mapstructure:"server"`
	Reports ReportsConfig `mapstructure:"reports"`
}

// ScanConfig holds scanner orchestration settings
type ScanConfig struct {
	Timeout       time.Duration            `mapstructure:"timeout"`
	BinaryProbe   time.Duration            `mapstructure:"binary_probe_timeout"`
	Concurrency   int                      `mapstructure:"concurrency"`
	ToolTimeouts  map[string]time.Duration `mapstructure:"tool_timeouts"`
	Semgrep       SemgrepConfig            `mapstructure:"semgrep"`
	RevealSecrets bool                     `mapstructure:"reveal_secrets"`
	ForceSemgrep  bool                     `mapstructure:"force_semgrep"`
}

// SemgrepConfig selects semgrep rulesets per language
type SemgrepConfig struct {
	DefaultConfig string            `mapstructure:"default_config"`
	Configs       map[string]string `mapstructure:"configs"`
}

// FetchConfig bounds remote repository downloads
type FetchConfig struct {
	MaxArchiveBytes int64         `mapstructure:"max_archive_bytes"`
	MaxExtractBytes int64         `mapstructure:"max_extract_bytes"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	APIKey          string `mapstructure:"api_key"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_min"`
}

// ReportsConfig controls best-effort report persistence
type ReportsConfig struct {
	Dir  string `mapstructure:"dir"`
	Save bool   `mapstructure:"save"`
}

var defaultConfig = Config{
	Scan: ScanConfig{
		Timeout:      2 * time.Minute,
		BinaryProbe:  10 * time.Second,
		Concurrency:  4,
		ToolTimeouts: map[string]time.Duration{},
		Semgrep: SemgrepConfig{
			DefaultConfig: "auto",
			Configs:       map[string]string{},
		},
		RevealSecrets: false,
		ForceSemgrep:  false,
	},
	Fetch: FetchConfig{
		MaxArchiveBytes: 50 * 1024 * 1024,
		MaxExtractBytes: 200 * 1024 * 1024,
		Timeout:         60 * time.Second,
	},
	Server: ServerConfig{
		Addr:            "127.0.0.1:8080",
		APIKey:          "",
		RateLimitPerMin: 60,
	},
	Reports: ReportsConfig{
		Dir:  "analyses",
		Save: false,
	},
}

// Default returns a copy of the built-in defaults, independent of any
// config file or environment.
func Default() *Config {
	cfg := defaultConfig
	cfg.Scan.ToolTimeouts = map[string]time.Duration{}
	cfg.Scan.Semgrep.Configs = map[string]string{}
	return &cfg
}

// LoadConfig loads configuration from defaults, config files and environment
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("scan.timeout", defaultConfig.Scan.Timeout)
	v.SetDefault("scan.binary_probe_timeout", defaultConfig.Scan.BinaryProbe)
	v.SetDefault("scan.concurrency", defaultConfig.Scan.Concurrency)
	v.SetDefault("scan.semgrep.default_config", defaultConfig.Scan.Semgrep.DefaultConfig)
	v.SetDefault("scan.reveal_secrets", defaultConfig.Scan.RevealSecrets)
	v.SetDefault("scan.force_semgrep", defaultConfig.Scan.ForceSemgrep)

	v.SetDefault("fetch.max_archive_bytes", defaultConfig.Fetch.MaxArchiveBytes)
	v.SetDefault("fetch.max_extract_bytes", defaultConfig.Fetch.MaxExtractBytes)
	v.SetDefault("fetch.timeout", defaultConfig.Fetch.Timeout)

	v.SetDefault("server.addr", defaultConfig.Server.Addr)
	v.SetDefault("server.api_key", defaultConfig.Server.APIKey)
	v.SetDefault("server.rate_limit_per_min", defaultConfig.Server.RateLimitPerMin)

	v.SetDefault("reports.dir", defaultConfig.Reports.Dir)
	v.SetDefault("reports.save", defaultConfig.Reports.Save)

	// Configuration file search paths
	v.SetConfigName("guardrail")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	if configDir, err := GetConfigDir(); err == nil {
		v.AddConfigPath(configDir)
	}

	// Environment variables (GUARDRAIL_SCAN_TIMEOUT etc.)
	v.SetEnvPrefix("GUARDRAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults apply when absent
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	return &config, nil
}

// LoadProjectConfig loads global config merged with a project-level overlay
func LoadProjectConfig() (*Config, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	projectConfigs := []string{
		".guardrail.yaml",
		".guardrail.yml",
		"guardrail.yaml",
		"guardrail.yml",
	}

	for _, configFile := range projectConfigs {
		if _, err := os.Stat(configFile); err == nil {
			v := viper.New()
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				continue
			}
			if err := v.Unmarshal(config); err != nil {
				continue
			}
			break
		}
	}

	return config, nil
}

// ToolTimeout returns the per-tool timeout for a scanner (0 = inherit global)
func (c *Config) ToolTimeout(tool string) time.Duration {
	if c == nil || c.Scan.ToolTimeouts == nil {
		return 0
	}
	return c.Scan.ToolTimeouts[strings.ToLower(tool)]
}

// SemgrepConfigFor selects the semgrep ruleset for a language hint
func (c *Config) SemgrepConfigFor(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if c != nil {
		if cfg, ok := c.Scan.Semgrep.Configs[lang]; ok && cfg != "" {
			return cfg
		}
		if c.Scan.Semgrep.DefaultConfig != "" {
			return c.Scan.Semgrep.DefaultConfig
		}
	}
	return "auto"
}

// GetGuardrailHome returns the guardrail home directory
func GetGuardrailHome() (string, error) {
	if home := os.Getenv("GUARDRAIL_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	return filepath.Join(homeDir, ".guardrail"), nil
}

// EnsureGuardrailHome creates the guardrail home directory if it doesn't exist
func EnsureGuardrailHome() (string, error) {
	homeDir, err := GetGuardrailHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create guardrail home directory: %v", err)
	}
	return homeDir, nil
}

// GetConfigDir returns the config directory under the guardrail home
func GetConfigDir() (string, error) {
	homeDir, err := EnsureGuardrailHome()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, "config")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create config directory: %v", err)
	}
	return configDir, nil
}

// GetWorkDir returns the work directory for temporary files
func GetWorkDir() (string, error) {
	homeDir, err := EnsureGuardrailHome()
	if err != nil {
		return "", err
	}
	workDir := filepath.Join(homeDir, "work")
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create work directory: %v", err)
	}
	return workDir, nil
}
