package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/prod

	RedisAddr      string        // 空ならレポートキャッシュ無効
	RedisPassword  string        //
	ReportCacheTTL time.Duration // 既定30s

	RabbitMQURL string // 空なら通知のfan-out無効

	LogLevel  string // debug/info/warn/error
	LogFormat string // json/text
}

// Loadは.envを読んでから環境変数を解釈する
func Load() (Config, error) {
	//.envが無くてもエラーにしない
	_ = godotenv.Load()

	ttl, err := durationOr("REPORT_CACHE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:      os.Getenv("PORT"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		GoEnv:     getenv("GO_ENV", "dev"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		ReportCacheTTL: ttl,

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or text")
	}

	return cfg, nil
}

// ":8080" 形式にそろえる
func (c Config) Addr() string {
	if c.Port != "" && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
