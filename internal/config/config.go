package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// AudioQuality selects the preferred stream bitrate
type AudioQuality string

const (
	AudioQualityLow    AudioQuality = "low"
	AudioQualityNormal AudioQuality = "normal"
	AudioQualityHigh   AudioQuality = "high"
)

// Bitrate returns the nominal bitrate in kbps
func (q AudioQuality) Bitrate() int {
	switch q {
	case AudioQualityLow:
		return 96
	case AudioQualityHigh:
		return 320
	default:
		return 160
	}
}

// Config holds all application configuration.
// It is also the Config payload of the state tree, so treat a loaded Config
// as read-only and replace it wholesale.
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Player  PlayerConfig  `mapstructure:"player"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LibraryConfig holds music library locations
type LibraryConfig struct {
	MusicDir    string `mapstructure:"music_dir"`
	PlaylistDir string `mapstructure:"playlist_dir"` // defaults to MusicDir
}

// AudioConfig holds audio preferences
type AudioConfig struct {
	Quality AudioQuality `mapstructure:"quality"`
}

// PlayerConfig holds external player configuration
type PlayerConfig struct {
	Command   string   `mapstructure:"command"`
	Args      []string `mapstructure:"args"`
	StartFlag string   `mapstructure:"start_flag"` // e.g., "--start=" or "-ss "
}

// CacheConfig holds scan cache configuration
type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	Disabled bool   `mapstructure:"disabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			MusicDir: defaultMusicPath(),
		},
		Audio: AudioConfig{
			Quality: AudioQualityNormal,
		},
		Player: PlayerConfig{
			Command: "mpv",
			Args:    []string{"--no-video", "--really-quiet"},
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// Equal compares two configurations field by field
func (c Config) Equal(other Config) bool {
	return c.Library == other.Library &&
		c.Audio == other.Audio &&
		c.Cache == other.Cache &&
		c.Logging == other.Logging &&
		c.Player.Command == other.Player.Command &&
		c.Player.StartFlag == other.Player.StartFlag &&
		slices.Equal(c.Player.Args, other.Player.Args)
}

// IsConfigured returns true if the music directory is set
func (c *Config) IsConfigured() bool {
	return c.Library.MusicDir != ""
}

// PlaylistDir returns the playlist directory, falling back to the music dir
func (c *Config) PlaylistDir() string {
	if c.Library.PlaylistDir != "" {
		return expandHome(c.Library.PlaylistDir)
	}
	return expandHome(c.Library.MusicDir)
}

// MusicDir returns the music directory with ~ expanded
func (c *Config) MusicDir() string {
	return expandHome(c.Library.MusicDir)
}

// defaultMusicPath returns the platform music folder
func defaultMusicPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Music")
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cadence", "cadence.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cadence", "cadence.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cadence")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "cadence")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "cadence", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cadence", "cache")
	}
}

// LoadConfig loads configuration from the default location and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(defaultConfigPath(), ".")
}

// LoadConfigFrom loads config.yaml from the first directory that has one.
// A missing file is not an error; defaults apply.
func LoadConfigFrom(dirs ...string) (*Config, error) {
	cfg := DefaultConfig()

	v := newViper()
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	switch cfg.Audio.Quality {
	case AudioQualityLow, AudioQualityNormal, AudioQualityHigh:
	default:
		return nil, fmt.Errorf("invalid audio quality %q", cfg.Audio.Quality)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Environment variable overrides, e.g. CADENCE_LIBRARY_MUSIC_DIR
	v.SetEnvPrefix("CADENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about
	defaults := DefaultConfig()
	v.SetDefault("library.music_dir", defaults.Library.MusicDir)
	v.SetDefault("library.playlist_dir", defaults.Library.PlaylistDir)
	v.SetDefault("audio.quality", string(defaults.Audio.Quality))
	v.SetDefault("player.command", defaults.Player.Command)
	v.SetDefault("player.args", defaults.Player.Args)
	v.SetDefault("player.start_flag", defaults.Player.StartFlag)
	v.SetDefault("cache.dir", defaults.Cache.Dir)
	v.SetDefault("cache.disabled", defaults.Cache.Disabled)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.level", defaults.Logging.Level)
	return v
}

// SaveConfig saves the configuration to the default location
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(defaultConfigPath(), cfg)
}

// SaveConfigTo writes cfg as config.yaml inside dir
func SaveConfigTo(dir string, cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("library.music_dir", cfg.Library.MusicDir)
	v.Set("library.playlist_dir", cfg.Library.PlaylistDir)
	v.Set("audio.quality", string(cfg.Audio.Quality))
	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)
	v.Set("player.start_flag", cfg.Player.StartFlag)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.disabled", cfg.Cache.Disabled)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearCache removes all cached scan data
func ClearCache(cfg *Config) error {
	if err := os.RemoveAll(expandHome(cfg.Cache.Dir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// CachePath returns the cache directory, or "" when caching is disabled
func (c *Config) CachePath() string {
	if c.Cache.Disabled {
		return ""
	}
	return expandHome(c.Cache.Dir)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
