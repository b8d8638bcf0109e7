package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
	"github.com/matzehuels/cardmap/pkg/placement"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if s != want {
		t.Errorf("Load(missing) = %+v, want %+v", s, want)
	}
	if s.MaxItems != 5 || s.CenterLabel != "Center" || s.Cache.Backend != BackendFile {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.Placement != placement.DefaultConfig() {
		t.Errorf("placement = %+v, want defaults", s.Placement)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
vault = "~/notes"
max_items = 8

[placement]
card_width = 160
min_gap = 10

[cache]
backend = "redis"
ttl = "30m"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Vault != "~/notes" || s.MaxItems != 8 {
		t.Errorf("top-level settings = %+v", s)
	}
	if s.Placement.CardWidth != 160 || s.Placement.MinGap != 10 {
		t.Errorf("placement overrides lost: %+v", s.Placement)
	}
	if s.Placement.CardHeight != placement.DefaultCardHeight {
		t.Errorf("card_height = %v, want default %v", s.Placement.CardHeight, placement.DefaultCardHeight)
	}
	if s.Cache.Backend != BackendRedis || s.Cache.TTL.Duration != 30*time.Minute {
		t.Errorf("cache = %+v", s.Cache)
	}
	if s.Cache.RedisAddr != DefaultRedisAddr {
		t.Errorf("redis_addr = %q, want default", s.Cache.RedisAddr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"syntax", "vault = ", "parse config"},
		{"unknown key", "colour = \"red\"", "unknown key"},
		{"negative gap", "[placement]\nmin_gap = -1", "placement"},
		{"nan angle step", "[placement]\nangle_step = nan", "angle_step must be finite"},
		{"infinite radius", "[placement]\ninitial_radius = inf", "initial_radius must be finite"},
		{"bad backend", "[cache]\nbackend = \"memcached\"", "unknown cache backend"},
		{"bad ttl", "[cache]\nttl = \"soon\"", "parse config"},
		{"negative max", "max_items = -2", "max_items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
			if !cmerrors.Is(err, cmerrors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %s, want %s", cmerrors.GetCode(err), cmerrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default()
	want.Vault = "/srv/vault"
	want.Placement.MaxAttempts = 80
	want.Cache.TTL.Duration = time.Hour

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestEncodeUsesSnakeCaseKeys(t *testing.T) {
	data, err := Encode(Default())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, key := range []string{"max_items", "card_width", "boundary_padding", "max_attempts", `ttl = "24h0m0s"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded settings missing %q:\n%s", key, data)
		}
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", AppName, "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	got, err = DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", AppName, "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", AppName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = CacheDir()
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", AppName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}
}
