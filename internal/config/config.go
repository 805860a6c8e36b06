// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	HTTPAddr     string
	LogLevel     string

	YandexClientID     string
	YandexClientSecret string
	YandexRedirectURI  string
	YandexScopes       []string

	SessionSecret string
	SessionTTL    time.Duration

	OrgID          string
	API360BaseURL  string
	LoginInfoURL   string
	AvatarBaseURL  string
	ProxyBaseURL   string
	RequestTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

// raw mirrors the environment one to one.
type raw struct {
	AppEnv             string  `mapstructure:"app_env"`
	ProdOrigins        string  `mapstructure:"prod_origins"`
	HTTPAddr           string  `mapstructure:"http_addr"`
	LogLevel           string  `mapstructure:"log_level"`
	YandexClientID     string  `mapstructure:"yandex_client_id"`
	YandexClientSecret string  `mapstructure:"yandex_client_secret"`
	YandexRedirectURI  string  `mapstructure:"yandex_redirect_uri"`
	YandexScopes       string  `mapstructure:"yandex_scopes"`
	SessionSecret      string  `mapstructure:"session_secret"`
	SessionTTL         string  `mapstructure:"session_ttl"`
	OrgID              string  `mapstructure:"org_id"`
	API360BaseURL      string  `mapstructure:"api360_base_url"`
	LoginInfoURL       string  `mapstructure:"login_info_url"`
	AvatarBaseURL      string  `mapstructure:"avatar_base_url"`
	ProxyBaseURL       string  `mapstructure:"proxy_base_url"`
	RequestTimeout     string  `mapstructure:"request_timeout"`
	RateLimitRPS       float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst"`
}

// Load loads configuration from .env (optional) and environment variables.
// Variables already set in the environment win over the .env file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		envMap, err := godotenv.Read(f)
		if err != nil {
			continue
		}
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	bindEnvs(v)

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return r.build()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "dev")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("yandex_redirect_uri", "http://localhost:8080/api/auth/callback/yandex")
	v.SetDefault("session_ttl", "720h")
	v.SetDefault("org_id", "_")
	v.SetDefault("api360_base_url", "https://api360.yandex.net")
	v.SetDefault("login_info_url", "https://login.yandex.ru/info")
	v.SetDefault("avatar_base_url", "https://avatars.yandex.net")
	v.SetDefault("request_timeout", "30000")
	v.SetDefault("rate_limit_rps", 10)
	v.SetDefault("rate_limit_burst", 20)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"app_env",
		"prod_origins",
		"http_addr",
		"log_level",
		"yandex_client_id",
		"yandex_client_secret",
		"yandex_redirect_uri",
		"yandex_scopes",
		"session_secret",
		"session_ttl",
		"org_id",
		"api360_base_url",
		"login_info_url",
		"avatar_base_url",
		"proxy_base_url",
		"request_timeout",
		"rate_limit_rps",
		"rate_limit_burst",
	}

	for _, k := range keys {
		_ = v.BindEnv(k, strings.ToUpper(k))
	}
}

func (r raw) build() (*Config, error) {
	var g errs.Group

	cfg := &Config{
		IsProduction:       r.AppEnv == PROD_STRING,
		ProdOrigins:        splitList(r.ProdOrigins),
		HTTPAddr:           r.HTTPAddr,
		LogLevel:           r.LogLevel,
		YandexClientID:     r.YandexClientID,
		YandexClientSecret: r.YandexClientSecret,
		YandexRedirectURI:  r.YandexRedirectURI,
		YandexScopes:       splitList(r.YandexScopes),
		SessionSecret:      r.SessionSecret,
		OrgID:              r.OrgID,
		API360BaseURL:      r.API360BaseURL,
		LoginInfoURL:       r.LoginInfoURL,
		AvatarBaseURL:      r.AvatarBaseURL,
		ProxyBaseURL:       r.ProxyBaseURL,
		RateLimitRPS:       r.RateLimitRPS,
		RateLimitBurst:     r.RateLimitBurst,
	}

	if cfg.YandexClientID == "" {
		g.Add(errs.New("YANDEX_CLIENT_ID is required"))
	}
	if cfg.YandexClientSecret == "" {
		g.Add(errs.New("YANDEX_CLIENT_SECRET is required"))
	}
	if cfg.SessionSecret == "" {
		g.Add(errs.New("SESSION_SECRET is required"))
	}

	ttl, err := time.ParseDuration(r.SessionTTL)
	if err != nil || ttl <= 0 {
		g.Add(errs.New("invalid SESSION_TTL %q", r.SessionTTL))
	}
	cfg.SessionTTL = ttl

	timeout, err := parseMillis(r.RequestTimeout)
	if err != nil || timeout <= 0 {
		g.Add(errs.New("invalid REQUEST_TIMEOUT %q", r.RequestTimeout))
	}
	cfg.RequestTimeout = timeout

	if cfg.RateLimitRPS < 0 {
		g.Add(errs.New("RATE_LIMIT_RPS must not be negative"))
	}

	// The screens reach the proxy over loopback unless told otherwise.
	if cfg.ProxyBaseURL == "" {
		cfg.ProxyBaseURL = loopbackURL(cfg.HTTPAddr)
	}

	if err := g.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseMillis accepts a Go duration ("30s") or a bare number of milliseconds.
func parseMillis(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

func loopbackURL(addr string) string {
	host, port := "localhost", strings.TrimPrefix(addr, ":")
	if i := strings.LastIndex(addr, ":"); i > 0 {
		if h := addr[:i]; h != "0.0.0.0" && h != "" {
			host = h
		}
		port = addr[i+1:]
	}
	return "http://" + host + ":" + port
}
