package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Storage drivers
const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)

// Key timestamp layouts
const (
	LayoutISO8601 = "iso8601"
	LayoutLegacy  = "legacy"
)

// Environment variables read by [Config.ApplyEnv]
const (
	EnvConfigPath    = "SPOTIFY_ETL_CONFIG"
	EnvClientID      = "SPOTIFY_CLIENT_ID"
	EnvClientSecret  = "SPOTIFY_CLIENT_SECRET"
	EnvPlaylistURL   = "SPOTIFY_PLAYLIST_URL"
	EnvBucket        = "SPOTIFY_ETL_BUCKET"
	EnvKeyPrefix     = "SPOTIFY_ETL_KEY_PREFIX"
	EnvStorageDriver = "SPOTIFY_ETL_STORAGE_DRIVER"
	EnvLogLevel      = "SPOTIFY_ETL_LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
	Run     RunConfig     `toml:"run"`
}

// SpotifyConfig contains Spotify API credentials and the target playlist.
type SpotifyConfig struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	PlaylistURL       string  `toml:"playlist_url"`
	ProbeOwner        string  `toml:"probe_owner"`
	TokenURL          string  `toml:"token_url"`
	APIBaseURL        string  `toml:"api_base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// StorageConfig describes the destination bucket and how to reach it.
type StorageConfig struct {
	Driver    string `toml:"driver"`
	Bucket    string `toml:"bucket"`
	KeyPrefix string `toml:"key_prefix"`
	KeyLayout string `toml:"key_layout"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	PathStyle bool   `toml:"path_style"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type RunConfig struct {
	Timeout string `toml:"timeout"`
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (r RunConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(r.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: run.timeout %q: %v", ErrInvalidConfig, r.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: run.timeout must not be negative", ErrInvalidConfig)
	}
	return d, nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveConfig builds the effective configuration for a run.
//
// An optional .env file in the working directory is loaded first; a malformed one is an error. The TOML file at path is read when it exists, otherwise the embedded defaults
// are used. When path is empty, $SPOTIFY_ETL_CONFIG names the file and it must exist. Environment overrides are
// applied last.
func ResolveConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %v", ErrInvalidConfig, err)
	}

	required := false
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		required = path != ""
	}

	config := DefaultConfig()
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if config, err = LoadConfig(path); err != nil {
				return nil, err
			}
		case required:
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
	}

	config.ApplyEnv(os.LookupEnv)
	return config, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for name, field := range map[string]*string{
		EnvClientID:      &c.Spotify.ClientID,
		EnvClientSecret:  &c.Spotify.ClientSecret,
		EnvPlaylistURL:   &c.Spotify.PlaylistURL,
		EnvBucket:        &c.Storage.Bucket,
		EnvKeyPrefix:     &c.Storage.KeyPrefix,
		EnvStorageDriver: &c.Storage.Driver,
		EnvLogLevel:      &c.Log.Level,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}
}

// Validate reports the first missing or malformed setting needed for an extraction run.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrMissingCredentials)
	}
	if c.Spotify.PlaylistURL == "" {
		return fmt.Errorf("%w: spotify.playlist_url must be set", ErrInvalidConfig)
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket must be set", ErrInvalidConfig)
	}

	switch c.Storage.Driver {
	case DriverS3, "":
	case DriverMinio:
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("%w: storage.endpoint is required for the minio driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	switch c.Storage.KeyLayout {
	case LayoutISO8601, LayoutLegacy, "":
	default:
		return fmt.Errorf("%w: unknown key layout %q", ErrInvalidConfig, c.Storage.KeyLayout)
	}

	if c.Spotify.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: spotify.requests_per_second must not be negative", ErrInvalidConfig)
	}

	if _, err := c.Run.TimeoutDuration(); err != nil {
		return err
	}

	return nil
}
