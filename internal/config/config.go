package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string         `toml:"port" yaml:"port"`
	Domain         string         `toml:"domain" yaml:"domain"`
	JWTSecret      string         `toml:"jwt_secret" yaml:"jwt_secret"`
	SecureCookies  bool           `toml:"secure_cookies" yaml:"secure_cookies"`
	AllowedOrigins []string       `toml:"allowed_origins" yaml:"allowed_origins"`
	Database       DatabaseConfig `toml:"database" yaml:"database"`
	Google         GoogleConfig   `toml:"google" yaml:"google"`
	Log            LogConfig      `toml:"log" yaml:"log"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver" yaml:"driver"` // mongo, postgres, mysql, sqlite
	URI    string `toml:"uri" yaml:"uri"`
	Name   string `toml:"name" yaml:"name"` // database name, mongo only
}

type GoogleConfig struct {
	ClientID     string `toml:"client_id" yaml:"client_id"`
	ClientSecret string `toml:"client_secret" yaml:"client_secret"`
	CallbackURL  string `toml:"callback_url" yaml:"callback_url"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.CallbackURL != ""
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load builds the configuration from, in increasing priority: defaults, the
// config file at path (or $CONFIG_FILE), and the environment. A .env file in
// the working directory is loaded into the environment first if present.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := finalize(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Port = "3000"
	cfg.SecureCookies = true
	cfg.Database.URI = "todolist.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}

	return err
}

func loadFromEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("PORT", &cfg.Port)
	setString("DOMAIN", &cfg.Domain)
	setString("JWT_SECRET", &cfg.JWTSecret)
	setString("DB_DRIVER", &cfg.Database.Driver)
	setString("DB_URI", &cfg.Database.URI)
	setString("DB_NAME", &cfg.Database.Name)
	setString("GOOGLE_CLIENT_ID", &cfg.Google.ClientID)
	setString("GOOGLE_CLIENT_SECRET", &cfg.Google.ClientSecret)
	setString("GOOGLE_CALLBACK_URL", &cfg.Google.CallbackURL)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)

	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		secure, err := strconv.ParseBool(v)

		if err != nil {
			return fmt.Errorf("invalid SECURE_COOKIES value %q: %w", v, err)
		}

		cfg.SecureCookies = secure
	}

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	return nil
}

func finalize(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = InferDriver(cfg.Database.URI)
	}

	origins := make([]string, 0, len(defaultOrigins)+len(cfg.AllowedOrigins))
	seen := make(map[string]bool)

	for _, origin := range append(append([]string{}, defaultOrigins...), cfg.AllowedOrigins...) {
		if !seen[origin] {
			seen[origin] = true
			origins = append(origins, origin)
		}
	}

	cfg.AllowedOrigins = origins

	return nil
}

// InferDriver guesses the database driver from a connection URI.
func InferDriver(uri string) string {
	lower := strings.ToLower(uri)

	switch {
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return "mongo"
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.Contains(lower, "@tcp("):
		return "mysql"
	default:
		return "sqlite"
	}
}
