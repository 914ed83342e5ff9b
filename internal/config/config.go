package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Ключи конфигурации, они же имена переменных окружения.
const (
	KeyServerAddress  = "SERVER_ADDRESS"
	KeyGeneratorURL   = "GENERATOR_URL"
	KeyRequestTimeout = "REQUEST_TIMEOUT"
	KeyCopyAckDelay   = "COPY_ACK_DELAY"
	KeySessionSecret  = "SESSION_SECRET"
	KeySessionIdle    = "SESSION_IDLE"
	KeyDebug          = "DEBUG"
	KeyConfig         = "CONFIG"
)

// Config хранит конфигурацию приложения
type Config struct {
	ServerAddress string `json:"server_address"`
	// GeneratorURL базовый адрес сервиса генерации, обязателен для serve и generate.
	GeneratorURL   string        `json:"generator_url"`
	RequestTimeout time.Duration `json:"-"`
	CopyAckDelay   time.Duration `json:"-"`
	SessionSecret  string        `json:"-"`
	SessionIdle    time.Duration `json:"-"`
	Debug          bool          `json:"debug"`
}

// fileConfig формат JSON-файла конфигурации, длительности задаются строками ("30s").
type fileConfig struct {
	ServerAddress  string `json:"server_address"`
	GeneratorURL   string `json:"generator_url"`
	RequestTimeout string `json:"request_timeout"`
	CopyAckDelay   string `json:"copy_ack_delay"`
	SessionSecret  string `json:"session_secret"`
	SessionIdle    string `json:"session_idle"`
	Debug          *bool  `json:"debug"`
}

// флаги командной строки и соответствующие ключи
var flagKeys = map[string]string{
	"address":   KeyServerAddress,
	"generator": KeyGeneratorURL,
	"timeout":   KeyRequestTimeout,
	"secret":    KeySessionSecret,
	"debug":     KeyDebug,
}

// RegisterFlags регистрирует флаги конфигурации. Значения по умолчанию у флагов
// пустые, чтобы не перекрывать переменные окружения.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("address", "a", "", "server address")
	fs.StringP("generator", "g", "", "generator base URL")
	fs.Duration("timeout", 0, "generator request timeout")
	fs.StringP("secret", "k", "", "session cookie secret")
	fs.Bool("debug", false, "development logging")
	fs.StringP("config", "c", "", "path to JSON config file")
}

// NewConfig собирает конфигурацию. Приоритет: флаги, переменные окружения,
// файл .env, JSON-файл конфигурации, значения по умолчанию.
func NewConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyServerAddress, "localhost:8080")
	v.SetDefault(KeyGeneratorURL, "")
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyCopyAckDelay, 1200*time.Millisecond)
	v.SetDefault(KeySessionSecret, "")
	v.SetDefault(KeySessionIdle, 30*time.Minute)
	v.SetDefault(KeyDebug, false)

	configPath := os.Getenv(KeyConfig)
	if fs != nil {
		if p, err := fs.GetString("config"); err == nil && p != "" {
			configPath = p
		}
	}
	if configPath != "" {
		if err := loadJSON(v, configPath); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		ServerAddress:  v.GetString(KeyServerAddress),
		GeneratorURL:   v.GetString(KeyGeneratorURL),
		RequestTimeout: v.GetDuration(KeyRequestTimeout),
		CopyAckDelay:   v.GetDuration(KeyCopyAckDelay),
		SessionSecret:  v.GetString(KeySessionSecret),
		SessionIdle:    v.GetDuration(KeySessionIdle),
		Debug:          v.GetBool(KeyDebug),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}
	return cfg, nil
}

// loadJSON переносит значения JSON-файла в значения по умолчанию viper.
func loadJSON(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("не удалось прочитать JSON-файл конфигурации %q: %w", path, err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("ошибка разбора JSON-файла конфигурации: %w", err)
	}

	set := func(key, val string) {
		if val != "" {
			v.SetDefault(key, val)
		}
	}
	set(KeyServerAddress, fc.ServerAddress)
	set(KeyGeneratorURL, fc.GeneratorURL)
	set(KeyRequestTimeout, fc.RequestTimeout)
	set(KeyCopyAckDelay, fc.CopyAckDelay)
	set(KeySessionSecret, fc.SessionSecret)
	set(KeySessionIdle, fc.SessionIdle)
	if fc.Debug != nil {
		v.SetDefault(KeyDebug, *fc.Debug)
	}
	return nil
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return errors.New("адрес сервера не может быть пустым")
	}
	if cfg.GeneratorURL != "" {
		u, err := url.Parse(cfg.GeneratorURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("некорректный адрес сервиса генерации %q", cfg.GeneratorURL)
		}
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("таймаут запроса должен быть положительным")
	}
	if cfg.CopyAckDelay <= 0 {
		return errors.New("длительность подтверждения копирования должна быть положительной")
	}
	if cfg.SessionIdle <= 0 {
		return errors.New("время жизни сессии должно быть положительным")
	}
	return nil
}

// HasGenerator задан ли адрес сервиса генерации.
func (cfg *Config) HasGenerator() bool {
	return cfg.GeneratorURL != ""
}

// LogFields поля для логирования конфигурации, секрет не попадает в лог.
func (cfg *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("server_address", cfg.ServerAddress),
		zap.String("generator_url", cfg.GeneratorURL),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("copy_ack_delay", cfg.CopyAckDelay),
		zap.Duration("session_idle", cfg.SessionIdle),
		zap.Bool("debug", cfg.Debug),
	}
}
