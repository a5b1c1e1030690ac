// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the application configuration. Operator settings (SSH user,
// password and address range) are not part of it; they live in the
// settings document managed by the store.
type Config struct {
	Language string         `mapstructure:"language" yaml:"language"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Scan     ScanConfig     `mapstructure:"scan" yaml:"scan"`
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	MQTT     MQTTConfig     `mapstructure:"mqtt" yaml:"mqtt"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// StoreConfig selects the persistence backend. Type "file" keeps JSON
// documents in Dir; sqlite, postgres and mysql use DSN.
type StoreConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dir  string `mapstructure:"dir" yaml:"dir"`
	DSN  string `mapstructure:"dsn" yaml:"dsn"`
}

type ScanConfig struct {
	Port    int           `mapstructure:"port" yaml:"port"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Workers int           `mapstructure:"workers" yaml:"workers"`
}

type DispatchConfig struct {
	Port           int               `mapstructure:"port" yaml:"port"`
	ConnectTimeout time.Duration     `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	CommandTimeout time.Duration     `mapstructure:"command_timeout" yaml:"command_timeout"`
	Workers        int               `mapstructure:"workers" yaml:"workers"`
	Commands       map[string]string `mapstructure:"commands" yaml:"commands,omitempty"`
}

type ScheduleConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// MetricsConfig enables the prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// MQTTConfig enables the MQTT event sink when Broker is set.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker" yaml:"broker"`
	ClientID string `mapstructure:"client_id" yaml:"client_id"`
	Topic    string `mapstructure:"topic" yaml:"topic"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// Defaults returns the default value for every config key.
func Defaults() map[string]any {
	return map[string]any{
		"language":                 "en",
		"log.level":                "info",
		"store.type":               "file",
		"store.dir":                ".",
		"store.dsn":                "./boardlock.db",
		"scan.port":                22,
		"scan.timeout":             40 * time.Millisecond,
		"scan.workers":             32,
		"dispatch.port":            22,
		"dispatch.connect_timeout": 4 * time.Second,
		"dispatch.command_timeout": 5 * time.Second,
		"dispatch.workers":         16,
		"dispatch.commands":        map[string]string{},
		"schedule.interval":        30 * time.Second,
		"metrics.listen":           "",
		"mqtt.broker":              "",
		"mqtt.client_id":           "boardlock",
		"mqtt.topic":               "boardlock",
		"mqtt.username":            "",
		"mqtt.password":            "",
	}
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Boardlock")
		default:
			configDir = "/etc/boardlock"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "boardlock")
	}

	return filepath.Join(configDir, "boardlock.yaml"), nil
}

// GetConfigPath exposes the user (system=false) or system config file path.
func GetConfigPath(system bool) (string, error) {
	return getConfigPath(system)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("could not load %s: %w", path, err)
	}
	return nil
}

// LoadConfig builds a T from defaults, the first boardlock.yaml found (or
// the explicit path), BOARDLOCK_* environment variables and cmd's flags,
// in increasing precedence.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("boardlock")
	v.SetConfigType("yaml")

	if explicitPath != nil {
		v.SetConfigFile(*explicitPath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	readErr := v.ReadInConfig()
	if readErr != nil {
		// A missing file is fine; the caller decides whether to write one.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return c, readErr
		}
	}

	v.SetEnvPrefix("boardlock")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, readErr
}

// WriteConfigFile writes c as YAML to the user or system config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}
	return WriteConfigFileTo(c, path)
}

// WriteConfigFileTo writes c as YAML to path, creating parent directories.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may hold the MQTT password.
	return os.WriteFile(path, data, 0o600)
}
