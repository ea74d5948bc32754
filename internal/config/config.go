package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	Debug       bool   `env:"DEBUG"`

	// Client-side settings
	ServerURL    string `env:"-"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	SessionFile  string `env:"SESSION_FILE"`
	PrefsFile    string `env:"PREFS_FILE"`
	Version      bool   `env:"-"` // show client version and exit (flag only)
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags override values taken from env
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN (postgres://..., host=... or sqlite file path)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "secret used to sign auth tokens")
	// Shared flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "server address in host:port form")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: use https scheme for BaseURL)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "verbose logging")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "directory for the client snapshot cache")
	flag.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "path to the client session file")
	flag.StringVar(&cfg.PrefsFile, "prefs", cfg.PrefsFile, "path to client preferences (TOML)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "productmanager.db"
	}
	// BaseURL must be "address:port" (no scheme, no path). Otherwise use default.
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// client defaults live under the user config dir
	base := filepath.Join(".", ".productmanager")
	if dir, err := os.UserConfigDir(); err == nil {
		base = filepath.Join(dir, "ProductManager")
	}
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(base, "users")
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = filepath.Join(base, "session")
	}
	if cfg.PrefsFile == "" {
		cfg.PrefsFile = filepath.Join(base, "prefs.toml")
	}
}
