// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Daemon configuration
	Daemon DaemonConfig `mapstructure:"daemon"`

	// Screen configuration
	Screen ScreenConfig `mapstructure:"screen"`

	// Controller configuration
	Controller ControllerConfig `mapstructure:"controller"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// DaemonConfig contains daemon-specific settings
type DaemonConfig struct {
	SocketPath string `mapstructure:"socket_path"`
}

// ScreenConfig contains display backend settings
type ScreenConfig struct {
	ScreenshotDir string `mapstructure:"screenshot_dir"`
	MaxResolution string `mapstructure:"max_resolution"` // Upper bound applied by minToMaxResolution
	SwaySocket    string `mapstructure:"sway_socket"`    // Compositor IPC socket probed by the backend selector
	DRMModeFile   string `mapstructure:"drm_mode_file"`  // Where the DRM backend records the requested mode
}

// ControllerConfig contains game controller database settings
type ControllerConfig struct {
	DBPaths []string `mapstructure:"db_paths"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	FileLogging bool   `mapstructure:"file_logging"` // Enable/disable file logging
	LogFile     string `mapstructure:"log_file"`
	LogLevel    string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Daemon: DaemonConfig{
			SocketPath: "/var/run/regmsgd.sock",
		},
		Screen: ScreenConfig{
			ScreenshotDir: "/userdata/screenshots",
			MaxResolution: "1920x1080",
			SwaySocket:    "/var/run/sway-ipc.sock",
			DRMModeFile:   "/var/run/drmMode",
		},
		Controller: ControllerConfig{
			DBPaths: []string{
				"/usr/share/regmsg/gamecontrollerdb.txt",
				"/userdata/system/configs/gamecontrollerdb.txt",
			},
		},
		Logging: LoggingConfig{
			FileLogging: false,
			LogFile:     "/var/log/regmsgd.log",
			LogLevel:    "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("regmsg")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		// Add config paths in order of precedence
		viper.AddConfigPath("/etc/regmsg") // System config directory (primary)

		// If running with sudo, try the real user's config
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			userConfigPath := fmt.Sprintf("/home/%s/.config/regmsg", sudoUser)
			viper.AddConfigPath(userConfigPath)
		} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
			// Normal user config
			viper.AddConfigPath(filepath.Join(home, ".config", "regmsg"))
		}

		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("daemon.socket_path", DefaultConfig.Daemon.SocketPath)

	viper.SetDefault("screen.screenshot_dir", DefaultConfig.Screen.ScreenshotDir)
	viper.SetDefault("screen.max_resolution", DefaultConfig.Screen.MaxResolution)
	viper.SetDefault("screen.sway_socket", DefaultConfig.Screen.SwaySocket)
	viper.SetDefault("screen.drm_mode_file", DefaultConfig.Screen.DRMModeFile)

	viper.SetDefault("controller.db_paths", DefaultConfig.Controller.DBPaths)

	viper.SetDefault("logging.file_logging", DefaultConfig.Logging.FileLogging)
	viper.SetDefault("logging.log_file", DefaultConfig.Logging.LogFile)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal config
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		// If we can't create it (e.g., /etc/regmsg needs sudo), provide helpful message
		if os.IsPermission(err) && strings.Contains(configPath, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// If override is set, use that
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	// For the daemon running as root, prefer system config
	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return "/etc/regmsg/regmsg.toml"
	}

	// For regular users, use user config directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/regmsg/regmsg.toml"
	}

	return filepath.Join(home, ".config", "regmsg", "regmsg.toml")
}

// UpdateScreen updates screen configuration
func UpdateScreen(screenCfg ScreenConfig) error {
	viper.Set("screen", screenCfg)
	Get().Screen = screenCfg
	return Save()
}

// UpdateDaemon updates daemon configuration
func UpdateDaemon(daemonCfg DaemonConfig) error {
	viper.Set("daemon", daemonCfg)
	Get().Daemon = daemonCfg
	return Save()
}
