package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	TMDB        TMDBConfig        `yaml:"tmdb"`
	AWS         AWSConfig         `yaml:"aws"`
	APNs        APNsConfig        `yaml:"apns"`
	JWT         JWTConfig         `yaml:"jwt"`
	Identity    IdentityConfig    `yaml:"identity"`
	Log         LogConfig         `yaml:"log"`
	Invitations InvitationsConfig `yaml:"invitations"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Migrate  bool   `yaml:"migrate"`
}

// RedisConfig holds the catalog cache connection
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// TMDBConfig holds movie catalog configuration
type TMDBConfig struct {
	BaseURL           string        `yaml:"base_url"`
	ImageBaseURL      string        `yaml:"image_base_url"`
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// AWSConfig holds the poster archive bucket configuration.
// An empty bucket disables archiving.
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// APNsConfig holds push notification configuration.
// An empty key path disables push.
type APNsConfig struct {
	KeyPath    string `yaml:"key_path"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// IdentityConfig holds the identity provider's session token settings.
// PublicKeyPath is the provider's RS256 PEM public key.
type IdentityConfig struct {
	PublicKeyPath string `yaml:"public_key_path"`
	Issuer        string `yaml:"issuer"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// InvitationsConfig holds invite code settings
type InvitationsConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	CodeLength int           `yaml:"code_length"`
}

// Load reads configuration from a YAML file.
// ${VAR} references are expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	if cfg.Identity.PublicKeyPath == "" {
		return nil, fmt.Errorf("identity.public_key_path is required")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = 30 * time.Minute
	}
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	}
	if c.TMDB.Timeout == 0 {
		c.TMDB.Timeout = 10 * time.Second
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		c.TMDB.RequestsPerSecond = 20
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 365 * 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Invitations.TTL == 0 {
		c.Invitations.TTL = 7 * 24 * time.Hour
	}
	if c.Invitations.CodeLength == 0 {
		c.Invitations.CodeLength = 8
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
