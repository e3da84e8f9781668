package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "your-development-secret-key" // #nosec G101
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET обязателен в production")

// Config представляет конфигурацию приложения
type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

// ServerConfig представляет конфигурацию сервера
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// TrustedProxies - прокси, чьим X-Forwarded-For можно верить; пусто - только адрес соединения
	TrustedProxies []string
	// TrustedPlatform - заголовок платформы с IP клиента, например CF-Connecting-IP
	TrustedPlatform string
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	URL             string
	Driver          string
	Host            string
	Port            string
	Username        string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig представляет конфигурацию аутентификации
type AuthConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	ConcealOwnership bool
}

type RateLimitConfig struct {
	Window time.Duration
	Max    int64
}

type RedisConfig struct {
	Addr     string
	Password string
}

type CORSConfig struct {
	AllowedOrigins []string
	OriginPattern  *regexp.Regexp
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Enabled bool
}

// IsProduction сообщает, запущено ли приложение в production-режиме
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Addr возвращает адрес для http.Server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

var envBindings = map[string][]string{
	"app.env":                    {"APP_ENV", "NODE_ENV"},
	"server.host":                {"SERVER_HOST"},
	"server.port":                {"PORT", "SERVER_PORT"},
	"server.read_timeout":        {"SERVER_READ_TIMEOUT"},
	"server.write_timeout":       {"SERVER_WRITE_TIMEOUT"},
	"server.trusted_proxies":     {"SERVER_TRUSTED_PROXIES"},
	"server.trusted_platform":    {"SERVER_TRUSTED_PLATFORM"},
	"database.url":               {"DATABASE_URL"},
	"database.driver":            {"DATABASE_DRIVER"},
	"database.host":              {"DATABASE_HOST"},
	"database.port":              {"DATABASE_PORT"},
	"database.username":          {"DATABASE_USERNAME"},
	"database.password":          {"DATABASE_PASSWORD"},
	"database.dbname":            {"DATABASE_DBNAME"},
	"database.sslmode":           {"DATABASE_SSLMODE"},
	"database.max_open_conns":    {"DATABASE_MAX_OPEN_CONNS"},
	"database.max_idle_conns":    {"DATABASE_MAX_IDLE_CONNS"},
	"database.conn_max_lifetime": {"DATABASE_CONN_MAX_LIFETIME"},
	"auth.jwt_secret":            {"JWT_SECRET"},
	"auth.token_ttl":             {"JWT_TOKEN_TTL"},
	"auth.conceal_ownership":     {"AUTH_CONCEAL_OWNERSHIP"},
	"rate_limit.window":          {"RATE_LIMIT_WINDOW"},
	"rate_limit.max":             {"RATE_LIMIT_MAX"},
	"redis.addr":                 {"REDIS_ADDR"},
	"redis.password":             {"REDIS_PASSWORD"},
	"cors.allowed_origins":       {"CORS_ALLOWED_ORIGINS"},
	"cors.origin_pattern":        {"CORS_ORIGIN_PATTERN"},
	"log.level":                  {"LOG_LEVEL"},
	"metrics.enabled":            {"METRICS_ENABLED"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", EnvDevelopment)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.dbname", "task_manager")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.conceal_ownership", true)

	v.SetDefault("rate_limit.window", "15m")
	v.SetDefault("rate_limit.max", 100)

	v.SetDefault("cors.allowed_origins", []string{"https://nwosehstasks.netlify.app", "http://localhost:5173"})
	v.SetDefault("cors.origin_pattern", `^https://[a-z0-9-]+--nwosehstasks\.netlify\.app$`)

	v.SetDefault("metrics.enabled", true)
}

// LoadConfig читает конфигурацию из .env, config.yaml в каталоге path и переменных окружения.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("ошибка привязки переменной окружения %s: %w", key, err)
		}
	}

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("ошибка чтения конфигурационного файла: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var config Config

	config.Env = strings.ToLower(v.GetString("app.env"))

	durations := map[string]*time.Duration{}
	var readTimeout, writeTimeout, connMaxLifetime, tokenTTL, window time.Duration
	durations["server.read_timeout"] = &readTimeout
	durations["server.write_timeout"] = &writeTimeout
	durations["database.conn_max_lifetime"] = &connMaxLifetime
	durations["auth.token_ttl"] = &tokenTTL
	durations["rate_limit.window"] = &window

	for key, dst := range durations {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("неверный формат %s: %w", key, err)
		}
		*dst = d
	}

	config.Server = ServerConfig{
		Host:            v.GetString("server.host"),
		Port:            v.GetString("server.port"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		TrustedProxies:  parseList(v, "server.trusted_proxies"),
		TrustedPlatform: v.GetString("server.trusted_platform"),
	}

	config.Database = DatabaseConfig{
		URL:             v.GetString("database.url"),
		Driver:          v.GetString("database.driver"),
		Host:            v.GetString("database.host"),
		Port:            v.GetString("database.port"),
		Username:        v.GetString("database.username"),
		Password:        v.GetString("database.password"),
		DBName:          v.GetString("database.dbname"),
		SSLMode:         v.GetString("database.sslmode"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: connMaxLifetime,
	}

	if config.Database.Driver != "postgres" && config.Database.Driver != "pgx" {
		return nil, fmt.Errorf("неподдерживаемый драйвер базы данных: %s", config.Database.Driver)
	}

	config.Auth = AuthConfig{
		JWTSecret:        v.GetString("auth.jwt_secret"),
		TokenTTL:         tokenTTL,
		ConcealOwnership: v.GetBool("auth.conceal_ownership"),
	}

	if config.Auth.JWTSecret == "" {
		if config.IsProduction() {
			return nil, ErrMissingJWTSecret
		}
		config.Auth.JWTSecret = defaultJWTSecret
	}

	config.RateLimit = RateLimitConfig{
		Window: window,
		Max:    v.GetInt64("rate_limit.max"),
	}

	config.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
	}

	config.CORS.AllowedOrigins = parseList(v, "cors.allowed_origins")

	if pattern := v.GetString("cors.origin_pattern"); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("неверный формат cors.origin_pattern: %w", err)
		}
		config.CORS.OriginPattern = re
	}

	config.Log.Level = v.GetString("log.level")
	if config.Log.Level == "" {
		config.Log.Level = "info"
		if !config.IsProduction() {
			config.Log.Level = "debug"
		}
	}

	config.Metrics.Enabled = v.GetBool("metrics.enabled")

	return &config, nil
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN(production bool) string {
	if c.URL == "" {
		dsn := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Username, c.Password),
			Host:     c.Host + ":" + c.Port,
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=" + c.SSLMode,
		}

		return dsn.String()
	}

	if !production || strings.Contains(c.URL, "sslmode=") {
		return c.URL
	}

	separator := "?"
	if strings.Contains(c.URL, "?") {
		separator = "&"
	}

	return c.URL + separator + "sslmode=require"
}

// из переменной окружения список приходит одной строкой через запятую
func parseList(v *viper.Viper, key string) []string {
	var items []string
	if raw, ok := v.Get(key).(string); ok {
		items = strings.Split(raw, ",")
	} else {
		items = v.GetStringSlice(key)
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}

	return result
}
