package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds everything the server needs at startup.
type AppConfig struct {
	Env         string
	Port        string
	FrontendURL string
	StaticDir   string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Argon2   Argon2Config
	Midtrans MidtransConfig
	Payment  PaymentConfig
	OpenAI   OpenAIConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// DSN renders the lib/pq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// URL renders the connection string in URL form, as golang-migrate expects.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

type MidtransConfig struct {
	ServerKey     string
	ClientKey     string
	Production    bool
	Timeout       time.Duration
	ExpiryMinutes int
}

// PaymentConfig limits how many payment sessions one payer may open per window.
type PaymentConfig struct {
	SessionLimit  int
	SessionWindow time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

var bindings = map[string]string{
	"app.env":                    "APP_ENV",
	"app.port":                   "PORT",
	"app.frontend_url":           "FRONTEND_URL",
	"app.static_dir":             "STATIC_DIR",
	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.user":              "DATABASE_USER",
	"database.password":          "DATABASE_PASSWORD",
	"database.name":              "DATABASE_NAME",
	"database.ssl_mode":          "DATABASE_SSL_MODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
	"database.auto_migrate":      "DATABASE_AUTO_MIGRATE",
	"redis.host":                 "REDIS_HOST",
	"redis.port":                 "REDIS_PORT",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"jwt.secret_key":             "JWT_SECRET_KEY",
	"jwt.expiry_hours":           "JWT_EXPIRY_HOURS",
	"argon2.time":                "ARGON2_TIME",
	"argon2.memory":              "ARGON2_MEMORY",
	"argon2.threads":             "ARGON2_THREADS",
	"argon2.key_length":          "ARGON2_KEY_LENGTH",
	"argon2.salt_length":         "ARGON2_SALT_LENGTH",
	"midtrans.server_key":        "MIDTRANS_SERVER_KEY",
	"midtrans.client_key":        "MIDTRANS_CLIENT_KEY",
	"midtrans.production":        "MIDTRANS_PRODUCTION",
	"midtrans.timeout":           "MIDTRANS_TIMEOUT",
	"midtrans.expiry_minutes":    "MIDTRANS_EXPIRY_MINUTES",
	"payment.session_limit":      "PAYMENT_SESSION_LIMIT",
	"payment.session_window":     "PAYMENT_SESSION_WINDOW",
	"openai.api_key":             "OPENAI_API_KEY",
	"openai.model":               "OPENAI_MODEL",
	"openai.base_url":            "OPENAI_BASE_URL",
	"openai.timeout":             "OPENAI_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.frontend_url", "http://localhost:3000")
	v.SetDefault("app.static_dir", "./static/avatars")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "supportly")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.expiry_hours", 24*7)

	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("midtrans.production", false)
	v.SetDefault("midtrans.timeout", 15*time.Second)
	v.SetDefault("midtrans.expiry_minutes", 60)

	v.SetDefault("payment.session_limit", 10)
	v.SetDefault("payment.session_window", time.Hour)

	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.timeout", 15*time.Second)
}

// Load reads the .env file (when present) and the process environment.
// Environment variables win over the file.
func Load(envFile string) (*AppConfig, error) {
	v := viper.New()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()
	setDefaults(v)
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if envFile != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		} else {
			// .env keys arrive flat (jwt_secret_key); lift them under the
			// nested names so env vars still take precedence.
			for key, env := range bindings {
				fileKey := strings.ToLower(env)
				if v.InConfig(fileKey) {
					v.SetDefault(key, v.Get(fileKey))
				}
			}
		}
	}

	return FromViper(v)
}

// FromViper builds an AppConfig from an already populated viper instance.
func FromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Env:         strings.ToLower(v.GetString("app.env")),
		Port:        v.GetString("app.port"),
		FrontendURL: strings.TrimRight(v.GetString("app.frontend_url"), "/"),
		StaticDir:   v.GetString("app.static_dir"),
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:   v.GetString("jwt.secret_key"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		Argon2: Argon2Config{
			Time:       v.GetUint32("argon2.time"),
			Memory:     v.GetUint32("argon2.memory"),
			Threads:    uint8(v.GetUint("argon2.threads")),
			KeyLength:  v.GetUint32("argon2.key_length"),
			SaltLength: v.GetInt("argon2.salt_length"),
		},
		Midtrans: MidtransConfig{
			ServerKey:     v.GetString("midtrans.server_key"),
			ClientKey:     v.GetString("midtrans.client_key"),
			Production:    v.GetBool("midtrans.production"),
			Timeout:       v.GetDuration("midtrans.timeout"),
			ExpiryMinutes: v.GetInt("midtrans.expiry_minutes"),
		},
		Payment: PaymentConfig{
			SessionLimit:  v.GetInt("payment.session_limit"),
			SessionWindow: v.GetDuration("payment.session_window"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			Model:   v.GetString("openai.model"),
			BaseURL: strings.TrimRight(v.GetString("openai.base_url"), "/"),
			Timeout: v.GetDuration("openai.timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot safely run with.
func (c *AppConfig) Validate() error {
	if c.Env != "development" && c.Env != "production" && c.Env != "test" {
		return fmt.Errorf("APP_ENV must be development, production or test, got %q", c.Env)
	}
	if c.JWT.SecretKey == "" {
		return errors.New("JWT_SECRET_KEY is not defined in the environment variables")
	}
	if c.JWT.ExpiryHours <= 0 {
		return errors.New("JWT_EXPIRY_HOURS must be positive")
	}
	if c.Midtrans.ServerKey == "" {
		return errors.New("MIDTRANS_SERVER_KEY is not defined in the environment variables")
	}
	if c.Midtrans.Timeout <= 0 {
		return errors.New("MIDTRANS_TIMEOUT must be positive")
	}
	if c.Midtrans.ExpiryMinutes <= 0 {
		return errors.New("MIDTRANS_EXPIRY_MINUTES must be positive")
	}
	if c.Argon2.SaltLength <= 0 || c.Argon2.KeyLength == 0 {
		return errors.New("argon2 salt and key length must be positive")
	}
	return nil
}
