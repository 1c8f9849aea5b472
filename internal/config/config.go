// configはgatewayとusersサービス共通の設定。
//
// 読み込み順（後勝ち）:
//  1. .env（あれば環境変数に展開）
//  2. --config / CONFIG_PATH / ./local.yaml のいずれか
//  3. 環境変数
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	minSecretLen = 32
)

// Configはアプリ全体の設定
type Config struct {
	Env         string            `yaml:"env" env:"GO_ENV" env-default:"dev"`
	HTTP        HTTPConfig        `yaml:"http"`
	DB          DBConfig          `yaml:"db"`
	Auth        AuthConfig        `yaml:"auth"`
	UserService UserServiceConfig `yaml:"user_service"`
	Sessions    SessionConfig     `yaml:"sessions"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// DB接続（DATABASE_URLがあれば最優先）
type DBConfig struct {
	Driver      string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	Host        string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port        string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User        string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password    string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Name        string `yaml:"name" env:"POSTGRES_DB" env-default:"app"`
	SSLMode     string `yaml:"sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`
	SQLitePath  string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"app.db"`
}

// DSNを組み立てる
func (d DBConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	if d.DatabaseURL != "" {
		return d.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// token発行の設定
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	Issuer          string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"divops-gateway"`
}

// User Directoryへの内部呼び出し
type UserServiceConfig struct {
	BaseURL string        `yaml:"base_url" env:"USER_SERVICE_URL" env-default:"http://localhost:8081"`
	Timeout time.Duration `yaml:"timeout" env:"USER_SERVICE_TIMEOUT" env-default:"5s"`
}

type SessionConfig struct {
	// 0なら掃除しない
	JanitorInterval time.Duration `yaml:"janitor_interval" env:"SESSION_JANITOR_INTERVAL" env-default:"1h"`
}

// MustLoadはLoadに失敗したらpanic
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Loadは設定ファイルと環境変数を読む
func Load(path string) (*Config, error) {
	// .envは任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat("local.yaml"); err == nil {
			path = "local.yaml"
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}
		// ReadConfigはファイルの後にENVも重ねる
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	return &cfg, nil
}

// DBの必須チェック
func (c *Config) ValidateDB() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DB.Driver)
	}
	if c.DB.DSN() == "" {
		return fmt.Errorf("database DSN is empty")
	}
	return nil
}

// gatewayの必須チェック
func (c *Config) ValidateGateway() error {
	if err := c.ValidateDB(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}
	if c.UserService.BaseURL == "" {
		return fmt.Errorf("USER_SERVICE_URL is required")
	}
	if c.UserService.Timeout <= 0 {
		return fmt.Errorf("USER_SERVICE_TIMEOUT must be positive")
	}
	return nil
}
