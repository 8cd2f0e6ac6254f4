package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	// сервис разметки (OpenAI-совместимый chat/completions)
	AIBaseURL      string
	AIAPIKey       string
	AIModel        string
	AITimeout      time.Duration
	AIMaxRetries   int
	AIRPS          float64
	AIMaxTextRunes int
	AIOnDegenerate bool

	AnalogueThreshold float64

	// отправка заявок: пустой URL — только в лог
	SendWebhookURL  string
	SendConcurrency int
}

// Load читает окружение; .env в рабочем каталоге подхватывается, если есть.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         atoi(getenv("PORT", "8082"), 8082),
		AllowOrigins: splitList(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MaxUploadMB:  atoi(getenv("MAX_UPLOAD_MB", "20"), 20),
		LogFile:      getenv("LOG_FILE", "logs/pricelist-service.log"),

		AIBaseURL:      getenv("AI_BASE_URL", "https://api.openai.com/v1"),
		AIAPIKey:       os.Getenv("AI_API_KEY"),
		AIModel:        getenv("AI_MODEL", "gpt-4o-mini"),
		AITimeout:      time.Duration(atoi(getenv("AI_TIMEOUT_SEC", "60"), 60)) * time.Second,
		AIMaxRetries:   atoi(getenv("AI_MAX_RETRIES", "2"), 2),
		AIRPS:          atof(getenv("AI_RPS", "1"), 1),
		AIMaxTextRunes: atoi(getenv("AI_MAX_TEXT_RUNES", "60000"), 60000),
		AIOnDegenerate: toBool(getenv("AI_ON_DEGENERATE", "true"), true),

		AnalogueThreshold: atof(getenv("ANALOGUE_THRESHOLD", "0.5"), 0.5),

		SendWebhookURL:  os.Getenv("SEND_WEBHOOK_URL"),
		SendConcurrency: atoi(getenv("SEND_CONCURRENCY", "4"), 4),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func atof(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
