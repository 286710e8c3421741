package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	AI        AIConfig        `yaml:"ai"`
	Templates TemplatesConfig `yaml:"templates"`
	Security  SecurityConfig  `yaml:"security"`
	Audit     AuditConfig     `yaml:"audit"`
	Share     ShareConfig     `yaml:"share,omitempty"`
	Web       WebConfig       `yaml:"web"`
	Logging   LoggingConfig   `yaml:"logging"`

	path string
}

// StorageConfig locates the key-value database.
type StorageConfig struct {
	// Path of the SQLite file. Relative paths resolve against DataDir().
	Path string `yaml:"path"`
	// CacheMaxBytes bounds the in-process read cache. 0 disables it.
	CacheMaxBytes int64 `yaml:"cache_max_bytes"`
}

type AIConfig struct {
	// Provider is "openrouter" (any OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url,omitempty"`
	// Models lists selectable models for providers without a listing endpoint.
	Models []string `yaml:"models,omitempty"`
	// Timeout bounds each request. 0 disables the bound.
	Timeout time.Duration `yaml:"timeout"`
	// RefreshSchedule is the cron spec for background model refresh in web mode.
	RefreshSchedule string `yaml:"refresh_schedule"`
}

type TemplatesConfig struct {
	// Prebuilt lists the template files loaded at startup, in display order.
	Prebuilt []string `yaml:"prebuilt"`
	// PrebuiltURL fetches prebuilt templates from a base URL instead of the
	// copies embedded in the binary.
	PrebuiltURL string `yaml:"prebuilt_url,omitempty"`
}

type SecurityConfig struct {
	// EnableSSRFProtection rejects template imports from local or private hosts.
	EnableSSRFProtection bool `yaml:"enable_ssrf_protection"`
}

type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
	FilePrefix    string `yaml:"file_prefix"`
}

type ShareConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url,omitempty"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// DefaultPrebuiltTemplates is the set of template files shipped with cue.
var DefaultPrebuiltTemplates = []string{
	"marketing-email.json",
	"marketing-social.json",
	"code-review.json",
	"code-documentation.json",
	"analysis-data.json",
	"analysis-competitor.json",
	"creative-story.json",
	"creative-brainstorm.json",
}

func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:          "cue.db",
			CacheMaxBytes: 4 << 20,
		},
		AI: AIConfig{
			Provider:        "openrouter",
			BaseURL:         "https://openrouter.ai/api/v1",
			Timeout:         120 * time.Second,
			RefreshSchedule: "@every 30m",
		},
		Templates: TemplatesConfig{
			Prebuilt: append([]string(nil), DefaultPrebuiltTemplates...),
		},
		Security: SecurityConfig{
			EnableSSRFProtection: true,
		},
		Audit: AuditConfig{
			Enabled:       false,
			Dir:           "audit",
			RetentionDays: 7,
			FilePrefix:    "cue-test",
		},
		Web: WebConfig{
			Port: 18080,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// ConfigPath returns the config file location. CUE_CONFIG overrides the
// default next to the executable.
func ConfigPath() string {
	if p := os.Getenv("CUE_CONFIG"); p != "" {
		return p
	}
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".cue.yaml")
}

func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath reads the config at path over the defaults. A missing file
// yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Path returns the file this config was loaded from.
func (c *Config) Path() string {
	if c.path == "" {
		return ConfigPath()
	}
	return c.path
}

// DataDir is the .cue directory beside the config file.
func (c *Config) DataDir() string {
	return filepath.Join(filepath.Dir(c.Path()), ".cue")
}

// ResolvePath makes p absolute against DataDir.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir(), p)
}

func (c *Config) Save() error {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
