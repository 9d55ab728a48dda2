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
)

// Config holds application configuration.
type Config struct {
	Log     LogConfig
	Picker  PickerConfig
	Script  ScriptConfig
	History HistoryConfig
	Watch   WatchConfig
	// Keys maps a command id to the keys that trigger it, replacing the
	// default bindings for that command.
	Keys map[string][]string
}

type LogConfig struct {
	Level       string
	File        string
	Development bool
}

// PickerConfig describes the external menu program.
type PickerConfig struct {
	Command         string
	Args            []string
	PromptFlag      string        `mapstructure:"prompt_flag"`
	ResponseTimeout time.Duration `mapstructure:"response_timeout"`
}

type ScriptConfig struct {
	InitFile     string        `mapstructure:"init_file"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// HistoryConfig holds sqlite settings for the script history.
type HistoryConfig struct {
	Enabled bool
	Path    string
}

type WatchConfig struct {
	Enabled  bool
	Debounce time.Duration
}

// Path returns the config file location. $WAYSHELL_CONFIG wins over the
// default under ~/.config.
func Path() string {
	if p := os.Getenv("WAYSHELL_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "wayshell", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix WAYSHELL_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.development", false)
	v.SetDefault("picker.command", "dmenu")
	v.SetDefault("picker.args", []string{})
	v.SetDefault("picker.prompt_flag", "-p")
	v.SetDefault("picker.response_timeout", 30*time.Second)
	v.SetDefault("script.init_file", filepath.Join(home, ".config", "wayshell", "init.lua"))
	v.SetDefault("script.query_timeout", 5*time.Second)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(home, ".local", "share", "wayshell", "history.db"))
	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce", 300*time.Millisecond)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("WAYSHELL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "wayshell"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("WAYSHELL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// a missing file means defaults; a broken one is an error
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to Path, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.development", cfg.Log.Development)
	v.Set("picker.command", cfg.Picker.Command)
	v.Set("picker.args", cfg.Picker.Args)
	v.Set("picker.prompt_flag", cfg.Picker.PromptFlag)
	v.Set("picker.response_timeout", cfg.Picker.ResponseTimeout.String())
	v.Set("script.init_file", cfg.Script.InitFile)
	v.Set("script.query_timeout", cfg.Script.QueryTimeout.String())
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.path", cfg.History.Path)
	v.Set("watch.enabled", cfg.Watch.Enabled)
	v.Set("watch.debounce", cfg.Watch.Debounce.String())
	if len(cfg.Keys) > 0 {
		v.Set("keys", cfg.Keys)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
