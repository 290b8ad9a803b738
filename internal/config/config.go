package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/unkn0wn-root/rhc/internal/history"
	"github.com/unkn0wn-root/rhc/internal/theme"
	"github.com/unkn0wn-root/rhc/internal/util"
)

const (
	EnvPrefix       = "RHC"
	envConfigDir    = "RHC_CONFIG_DIR"
	configFileName  = "config.toml"
	defaultLogLevel = "info"
)

type Config struct {
	DefinitionDir         string        `mapstructure:"request_definition_directory"`
	EnvironmentDir        string        `mapstructure:"environment_directory"`
	HistoryFile           string        `mapstructure:"history_file"`
	HistoryBackend        string        `mapstructure:"history_backend"`
	MaxHistoryItems       int           `mapstructure:"max_history_items"`
	ConnectTimeoutSeconds int           `mapstructure:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int           `mapstructure:"read_timeout_seconds"`
	TimeoutSeconds        int           `mapstructure:"timeout_seconds"`
	Theme                 string        `mapstructure:"theme"`
	LogFile               string        `mapstructure:"log_file"`
	LogLevel              string        `mapstructure:"log_level"`
	Colors                theme.Palette `mapstructure:"colors"`
}

// Dir returns the configuration directory. RHC_CONFIG_DIR wins over the
// platform config dir.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(envConfigDir)); dir != "" {
		return util.ExpandHome(dir)
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, "rhc")
	}
	return util.ExpandHome("~/.config/rhc")
}

// DefaultPath is the config file used when none is given explicitly.
func DefaultPath() string {
	return filepath.Join(Dir(), configFileName)
}

func defaults(v *viper.Viper) {
	v.SetDefault("request_definition_directory", "~/rhc/definitions")
	v.SetDefault("environment_directory", "~/rhc/environments")
	v.SetDefault("history_file", "")
	v.SetDefault("history_backend", history.BackendFile)
	v.SetDefault("max_history_items", 1000)
	v.SetDefault("connect_timeout_seconds", 0)
	v.SetDefault("read_timeout_seconds", 0)
	v.SetDefault("timeout_seconds", 0)
	v.SetDefault("theme", "monokai")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", defaultLogLevel)
	for _, key := range []string{
		"default_fg", "default_bg",
		"selected_fg", "selected_bg",
		"prompt_fg", "prompt_bg",
		"variable_fg", "variable_bg",
	} {
		v.SetDefault("colors."+key, "")
	}
}

// Load reads the config file at path, or the default location when path is
// empty. A missing default file yields the defaults; a missing explicit file
// is an error. Values can be overridden with RHC_* environment variables,
// e.g. RHC_HISTORY_BACKEND or RHC_COLORS_SELECTED_FG.
func Load(path string) (Config, string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	path = util.ExpandHome(path)

	v := viper.New()
	defaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, path, fmt.Errorf("parse config %q: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) || explicit {
		return Config{}, path, fmt.Errorf("read config %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, path, fmt.Errorf("decode config %q: %w", path, err)
	}
	if err := cfg.normalise(); err != nil {
		return Config{}, path, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, path, nil
}

func (c *Config) normalise() error {
	c.HistoryBackend = strings.ToLower(strings.TrimSpace(c.HistoryBackend))
	switch c.HistoryBackend {
	case "":
		c.HistoryBackend = history.BackendFile
	case history.BackendFile, history.BackendSQLite:
	default:
		return fmt.Errorf("history_backend must be %q or %q, got %q",
			history.BackendFile, history.BackendSQLite, c.HistoryBackend)
	}
	if strings.TrimSpace(c.HistoryFile) == "" {
		if c.HistoryBackend == history.BackendSQLite {
			c.HistoryFile = "~/.rhc_history.db"
		} else {
			c.HistoryFile = "~/.rhc_history.toml"
		}
	}
	if c.MaxHistoryItems <= 0 {
		c.MaxHistoryItems = 1000
	}
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = filepath.Join(Dir(), "rhc.log")
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	c.DefinitionDir = util.ExpandHome(c.DefinitionDir)
	c.EnvironmentDir = util.ExpandHome(c.EnvironmentDir)
	c.HistoryFile = util.ExpandHome(c.HistoryFile)
	c.LogFile = util.ExpandHome(c.LogFile)
	return nil
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func (c Config) ConnectTimeout() time.Duration { return seconds(c.ConnectTimeoutSeconds) }
func (c Config) ReadTimeout() time.Duration    { return seconds(c.ReadTimeoutSeconds) }
func (c Config) Timeout() time.Duration        { return seconds(c.TimeoutSeconds) }
