// Package config loads android-cli settings from a YAML file, environment
// variables and defaults, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/platform"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the effective configuration.
type Config struct {
	ADBPath         string         `mapstructure:"adb_path"`
	Device          string         `mapstructure:"device"`
	DebugServerPort int            `mapstructure:"debug_server_port"`
	ScreenshotDir   string         `mapstructure:"screenshot_dir"`
	MaxDimension    int            `mapstructure:"screenshot_max_dimension"`
	DumpRetries     int            `mapstructure:"dump_retries"`
	DumpRetryDelay  time.Duration  `mapstructure:"dump_retry_delay"`
	Timeouts        TimeoutsConfig `mapstructure:"timeouts"`
	Logging         LoggingConfig  `mapstructure:"logging"`
}

// TimeoutsConfig holds per-command transport limits.
type TimeoutsConfig struct {
	Command   time.Duration `mapstructure:"command"`
	Install   time.Duration `mapstructure:"install"`
	Dump      time.Duration `mapstructure:"dump"`
	Screencap time.Duration `mapstructure:"screencap"`
	Logcat    time.Duration `mapstructure:"logcat"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"adb_path":                 "ADB_PATH",
	"device":                   "ANDROID_DEVICE",
	"debug_server_port":        "DEBUG_SERVER_PORT",
	"screenshot_dir":           "ANDROID_SCREENSHOT_DIR",
	"screenshot_max_dimension": "ANDROID_SCREENSHOT_MAX_DIM",
	"dump_retries":             "UIAUTOMATOR_DUMP_RETRIES",
	"dump_retry_delay":         "UIAUTOMATOR_DUMP_RETRY_DELAY",
	"logging.level":            "ANDROID_CLI_LOG_LEVEL",
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	t := platform.DefaultTimeouts()
	return Config{
		ADBPath:         "adb",
		Device:          "emulator-5554",
		DebugServerPort: 19876,
		ScreenshotDir:   "/tmp/android-screenshots",
		MaxDimension:    1920,
		DumpRetries:     3,
		DumpRetryDelay:  time.Second,
		Timeouts: TimeoutsConfig{
			Command:   t.Command,
			Install:   t.Install,
			Dump:      t.Dump,
			Screencap: t.Screencap,
			Logcat:    t.Logcat,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/android-cli/config.yaml,
// falling back to ~/.config.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "android-cli", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "android-cli", "config.yaml"), nil
}

// Load reads configuration from path. If path is empty, uses DefaultConfigPath.
// A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, core.Wrap(core.KindConfig, "load config", "cannot resolve config path", err)
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("adb_path", cfg.ADBPath)
	v.SetDefault("device", cfg.Device)
	v.SetDefault("debug_server_port", cfg.DebugServerPort)
	v.SetDefault("screenshot_dir", cfg.ScreenshotDir)
	v.SetDefault("screenshot_max_dimension", cfg.MaxDimension)
	v.SetDefault("dump_retries", cfg.DumpRetries)
	v.SetDefault("dump_retry_delay", cfg.DumpRetryDelay)
	v.SetDefault("timeouts.command", cfg.Timeouts.Command)
	v.SetDefault("timeouts.install", cfg.Timeouts.Install)
	v.SetDefault("timeouts.dump", cfg.Timeouts.Dump)
	v.SetDefault("timeouts.screencap", cfg.Timeouts.Screencap)
	v.SetDefault("timeouts.logcat", cfg.Timeouts.Logcat)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, core.Wrap(core.KindConfig, "load config", "bind "+env, err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, core.Wrap(core.KindConfig, "load config", "cannot read "+path, err)
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, core.Wrap(core.KindConfig, "load config", "cannot stat "+path, err)
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.DecodeHookFuncType(secondsOrDurationHook),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, core.Wrap(core.KindConfig, "load config", "invalid value", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsOrDurationHook decodes durations from Go duration strings ("1.5s")
// or from bare numbers, which are read as seconds.
func secondsOrDurationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		s := data.(string)
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		return secondsToDuration(secs), nil
	case reflect.Float32, reflect.Float64:
		return secondsToDuration(reflect.ValueOf(data).Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return secondsToDuration(float64(reflect.ValueOf(data).Int())), nil
	}
	return data, nil
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

// Validate checks ranges that would otherwise fail late at call time.
func (c Config) Validate() error {
	switch {
	case c.ADBPath == "":
		return core.New(core.KindConfig, "config", "adb_path must not be empty")
	case c.DebugServerPort < 1 || c.DebugServerPort > 65535:
		return core.Newf(core.KindConfig, "config", "debug_server_port %d out of range 1-65535", c.DebugServerPort)
	case c.DumpRetries < 1:
		return core.Newf(core.KindConfig, "config", "dump_retries must be at least 1, got %d", c.DumpRetries)
	case c.DumpRetryDelay < 0:
		return core.Newf(core.KindConfig, "config", "dump_retry_delay must not be negative, got %s", c.DumpRetryDelay)
	case c.MaxDimension < 0:
		return core.Newf(core.KindConfig, "config", "screenshot_max_dimension must not be negative, got %d", c.MaxDimension)
	}
	for name, d := range map[string]time.Duration{
		"command":   c.Timeouts.Command,
		"install":   c.Timeouts.Install,
		"dump":      c.Timeouts.Dump,
		"screencap": c.Timeouts.Screencap,
		"logcat":    c.Timeouts.Logcat,
	} {
		if d <= 0 {
			return core.Newf(core.KindConfig, "config", "timeouts.%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// PlatformOptions converts the config into backend options.
func (c Config) PlatformOptions() platform.Options {
	return platform.Options{
		ADBPath: c.ADBPath,
		Serial:  c.Device,
		Timeouts: platform.Timeouts{
			Command:   c.Timeouts.Command,
			Install:   c.Timeouts.Install,
			Dump:      c.Timeouts.Dump,
			Screencap: c.Timeouts.Screencap,
			Logcat:    c.Timeouts.Logcat,
		},
		DumpRetries:    c.DumpRetries,
		DumpRetryDelay: c.DumpRetryDelay,
		ScreenshotDir:  c.ScreenshotDir,
		MaxDimension:   c.MaxDimension,
	}
}

// LoggingOptions converts the config into logger settings.
func (c Config) LoggingOptions() logging.Config {
	return logging.Config{Level: c.Logging.Level, Format: c.Logging.Format}
}

// fileConfig is the on-disk shape, with durations written as strings.
type fileConfig struct {
	ADBPath         string      `yaml:"adb_path"`
	Device          string      `yaml:"device"`
	DebugServerPort int         `yaml:"debug_server_port"`
	ScreenshotDir   string      `yaml:"screenshot_dir"`
	MaxDimension    int         `yaml:"screenshot_max_dimension"`
	DumpRetries     int         `yaml:"dump_retries"`
	DumpRetryDelay  string      `yaml:"dump_retry_delay"`
	Timeouts        fileTimeout `yaml:"timeouts"`
	Logging         fileLogging `yaml:"logging"`
}

type fileTimeout struct {
	Command   string `yaml:"command"`
	Install   string `yaml:"install"`
	Dump      string `yaml:"dump"`
	Screencap string `yaml:"screencap"`
	Logcat    string `yaml:"logcat"`
}

type fileLogging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MarshalYAML writes durations in their string form.
func (c Config) MarshalYAML() (any, error) {
	return fileConfig{
		ADBPath:         c.ADBPath,
		Device:          c.Device,
		DebugServerPort: c.DebugServerPort,
		ScreenshotDir:   c.ScreenshotDir,
		MaxDimension:    c.MaxDimension,
		DumpRetries:     c.DumpRetries,
		DumpRetryDelay:  c.DumpRetryDelay.String(),
		Timeouts: fileTimeout{
			Command:   c.Timeouts.Command.String(),
			Install:   c.Timeouts.Install.String(),
			Dump:      c.Timeouts.Dump.String(),
			Screencap: c.Timeouts.Screencap.String(),
			Logcat:    c.Timeouts.Logcat.String(),
		},
		Logging: fileLogging(c.Logging),
	}, nil
}

// WriteFile writes cfg to path as YAML, creating parent directories. An
// existing file is only replaced when force is set.
func WriteFile(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return core.Newf(core.KindConfig, "write config", "%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return core.Wrap(core.KindConfig, "write config", "marshal", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return core.Wrap(core.KindConfig, "write config", "create directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.Wrap(core.KindConfig, "write config", "write "+path, err)
	}
	return nil
}
