package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "LECTERN"

type (
	Config struct {
		DataDir    string
		DBPath     string
		JournalDir string
		Remote     Remote
		Presence   Presence
		Sync       Sync
		Session    Session
		Hub        Hub
		Log        Log
	}

	Remote struct {
		BaseURL string
		Token   string
		Timeout time.Duration
	}
	Presence struct {
		URL     string // ws(s) endpoint; derived from Remote.BaseURL when empty
		Timeout time.Duration
	}
	Sync struct {
		Schedule string // cron format, empty disables background sync
	}
	Session struct {
		MaxDelta time.Duration // caps one accounting delta, 0 = unbounded
	}
	Hub struct {
		Addr   string
		DBPath string
		Token  string
		User   string // name the token authenticates as
	}
	Log struct {
		Level  string
		Format string
	}
)

// Load reads .env (if present), then the YAML file at path (if given), then
// LECTERN_* environment variables, over built-in defaults.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	dataDir := v.GetString("data_dir")
	if dataDir == "" {
		return Config{}, fmt.Errorf("data_dir is required")
	}
	cfg := Config{
		DataDir:    dataDir,
		DBPath:     v.GetString("db_path"),
		JournalDir: v.GetString("journal_dir"),
		Remote: Remote{
			BaseURL: strings.TrimRight(v.GetString("remote.base_url"), "/"),
			Token:   v.GetString("remote.token"),
			Timeout: v.GetDuration("remote.timeout"),
		},
		Presence: Presence{
			URL:     v.GetString("presence.url"),
			Timeout: v.GetDuration("presence.timeout"),
		},
		Sync:    Sync{Schedule: v.GetString("sync.schedule")},
		Session: Session{MaxDelta: v.GetDuration("session.max_delta")},
		Hub: Hub{
			Addr:   v.GetString("hub.addr"),
			DBPath: v.GetString("hub.db_path"),
			Token:  v.GetString("hub.token"),
			User:   v.GetString("hub.user"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir, "lectern.db")
	}
	if cfg.Hub.DBPath == "" {
		cfg.Hub.DBPath = filepath.Join(dataDir, "hub.db")
	}
	if cfg.Presence.URL == "" && cfg.Remote.BaseURL != "" {
		cfg.Presence.URL = presenceURL(cfg.Remote.BaseURL)
	}
	if cfg.Session.MaxDelta < 0 {
		return Config{}, fmt.Errorf("session.max_delta must be non-negative")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("db_path", "")
	v.SetDefault("journal_dir", "")
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.timeout", 15*time.Second)
	v.SetDefault("presence.url", "")
	v.SetDefault("presence.timeout", 5*time.Second)
	v.SetDefault("sync.schedule", "*/15 * * * *")
	v.SetDefault("session.max_delta", time.Duration(0))
	v.SetDefault("hub.addr", "127.0.0.1:8787")
	v.SetDefault("hub.db_path", "")
	v.SetDefault("hub.token", "")
	v.SetDefault("hub.user", "reader")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lectern")
	}
	return ".lectern"
}

func presenceURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/api/v1/presence"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/api/v1/presence"
	default:
		return baseURL + "/api/v1/presence"
	}
}
