package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

// 空のディレクトリで実行（.env / local.yaml の影響を受けない）
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", "")
	return dir
}

// ENVだけ => デフォルト値
func TestLoad_EnvOnly_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.UserService.Timeout)
	assert.Equal(t, time.Hour, cfg.Sessions.JanitorInterval)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.NoError(t, cfg.ValidateGateway())
}

// YAML + ENV上書き
func TestLoad_YAMLWithEnvOverlay(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "cfg.yaml", `
env: prod
http:
  port: "9000"
auth:
  jwt_secret: "`+testSecret+`"
  access_token_ttl: 5m
user_service:
  base_url: "http://users:8081"
  timeout: 2s
`)
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "9100", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "http://users:8081", cfg.UserService.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.UserService.Timeout)
}

// CONFIG_PATHを使う
func TestLoad_ConfigPathEnv(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "other.yaml", "env: local\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
}

// 存在しないファイル => エラー
func TestLoad_MissingFile(t *testing.T) {
	isolate(t)

	_, err := Load("nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat failed")
}

// .envの値を読む
func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "SQLITE_PATH=from-dotenv.db\n")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Cleanup(func() { _ = os.Unsetenv("SQLITE_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.DB.DSN())
}

func TestDBConfig_DSN(t *testing.T) {
	d := DBConfig{Driver: DriverPostgres, Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", d.DSN())

	d.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", d.DSN())

	d.Driver = DriverSQLite
	d.SQLitePath = "/tmp/a.db"
	assert.Equal(t, "/tmp/a.db", d.DSN())
}

func TestValidateGateway(t *testing.T) {
	base := func() *Config {
		return &Config{
			DB:          DBConfig{Driver: DriverSQLite, SQLitePath: "x.db"},
			Auth:        AuthConfig{JWTSecret: testSecret, AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour},
			UserService: UserServiceConfig{BaseURL: "http://u", Timeout: time.Second},
		}
	}

	assert.NoError(t, base().ValidateGateway())

	c := base()
	c.Auth.JWTSecret = ""
	assert.ErrorContains(t, c.ValidateGateway(), "JWT_SECRET is required")

	c = base()
	c.Auth.JWTSecret = strings.Repeat("a", 8)
	assert.ErrorContains(t, c.ValidateGateway(), "at least")

	c = base()
	c.Auth.RefreshTokenTTL = time.Second
	assert.Error(t, c.ValidateGateway())

	c = base()
	c.DB.Driver = "mysql"
	assert.Error(t, c.ValidateGateway())

	c = base()
	c.UserService.BaseURL = ""
	assert.Error(t, c.ValidateGateway())
}
