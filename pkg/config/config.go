// Package config loads and saves the cardmap settings file.
//
// Settings live in a TOML file, by default $XDG_CONFIG_HOME/cardmap/config.toml
// (~/.config/cardmap/config.toml). Every key is optional; missing keys
// take the defaults from [Default]:
//
//	vault = "~/notes"
//	max_items = 5
//	center_label = "Center"
//
//	[placement]
//	card_width = 200
//	card_height = 120
//	min_gap = 20
//	boundary_padding = 40
//
//	[cache]
//	backend = "file"   # file, redis or none
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
	"github.com/matzehuels/cardmap/pkg/placement"
)

// AppName names the config and cache directories.
const AppName = "cardmap"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Defaults.
const (
	DefaultMaxItems    = 5
	DefaultCenterLabel = "Center"
	DefaultCacheTTL    = 24 * time.Hour
	DefaultRedisAddr   = "localhost:6379"
	DefaultServerAddr  = ":8080"
)

// Settings is the contents of the settings file.
type Settings struct {
	// Vault is the directory whose notes are shown around the center card.
	Vault string `toml:"vault"`
	// MaxItems caps how many notes are placed.
	MaxItems int `toml:"max_items"`
	// CenterLabel is the center card title.
	CenterLabel string `toml:"center_label"`

	Placement placement.Config `toml:"placement"`
	Cache     CacheSettings    `toml:"cache"`
	Server    ServerSettings   `toml:"server"`
}

// CacheSettings selects where computed layouts and artifacts are cached.
type CacheSettings struct {
	Backend   string   `toml:"backend"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// ServerSettings configures `cardmap serve`.
type ServerSettings struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns settings with every default applied.
func Default() Settings {
	var s Settings
	s.SetDefaults()
	return s
}

// SetDefaults fills unset fields.
func (s *Settings) SetDefaults() {
	if s.MaxItems == 0 {
		s.MaxItems = DefaultMaxItems
	}
	if s.CenterLabel == "" {
		s.CenterLabel = DefaultCenterLabel
	}
	s.Placement = s.Placement.WithDefaults()
	if s.Cache.Backend == "" {
		s.Cache.Backend = BackendFile
	}
	if s.Cache.RedisAddr == "" {
		s.Cache.RedisAddr = DefaultRedisAddr
	}
	if s.Cache.TTL.Duration == 0 {
		s.Cache.TTL.Duration = DefaultCacheTTL
	}
	if s.Server.Addr == "" {
		s.Server.Addr = DefaultServerAddr
	}
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if s.MaxItems < 0 {
		return cmerrors.New(cmerrors.ErrCodeInvalidConfig, "max_items must not be negative (got %d)", s.MaxItems)
	}
	if err := cmerrors.ValidateLabel(s.CenterLabel); err != nil {
		return cmerrors.Wrap(cmerrors.ErrCodeInvalidConfig, err, "center_label")
	}
	if err := s.Placement.Validate(); err != nil {
		return cmerrors.Wrap(cmerrors.ErrCodeInvalidConfig, err, "placement")
	}
	switch s.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return cmerrors.New(cmerrors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", s.Cache.Backend)
	}
	if s.Cache.TTL.Duration < 0 {
		return cmerrors.New(cmerrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return nil
}

// Load reads settings from path. A missing file yields [Default].
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Settings{}, cmerrors.Wrap(cmerrors.ErrCodeInternal, err, "read config %s", path)
	default:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return Settings{}, cmerrors.Wrap(cmerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Settings{}, cmerrors.New(cmerrors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
		}
	}

	s.SetDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes s to path as TOML, creating parent directories.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := Encode(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode renders s as TOML.
func Encode(s Settings) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the settings file path using the XDG standard
// (~/.config/cardmap/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory using the XDG standard (~/.cache/cardmap/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
