package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	LogLevel        string
	LogFormat       string // json or console
	AllowedOrigins  []string
	DefaultDuration int // seconds
	MaxDuration     int // seconds
	WordCount       int
	MaxWordCount    int
	WordsFile       string
	FinishedRoomTTL time.Duration
	SendBuffer      int
	EventBuffer     int
}

// Load reads the process environment, optionally seeded from a .env file in
// the working directory. Variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		NATSURL:         os.Getenv("NATS_URL"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		DefaultDuration: getEnvInt("DEFAULT_DURATION", 60),
		MaxDuration:     getEnvInt("MAX_DURATION", 600),
		WordCount:       getEnvInt("WORD_COUNT", 50),
		MaxWordCount:    getEnvInt("MAX_WORD_COUNT", 500),
		WordsFile:       os.Getenv("WORDS_FILE"),
		FinishedRoomTTL: time.Duration(getEnvInt("FINISHED_ROOM_TTL_MINUTES", 30)) * time.Minute,
		SendBuffer:      getEnvInt("SEND_BUFFER", 64),
		EventBuffer:     getEnvInt("EVENT_BUFFER", 256),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
