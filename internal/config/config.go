package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	AllowOrigins    []string
	LogstashTCPAddr string
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOUseSSL     bool
	MinIOBucket     string
	MinIOPublicURL  string
	WeatherAPIKey   string
	MapsAPIKey      string
	EventsAPIKey    string
	UploadMaxBytes  int64
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	tokenTTL := 24 * time.Hour
	if v, err := time.ParseDuration(getenv("TOKEN_TTL", "24h")); err == nil && v > 0 {
		tokenTTL = v
	}

	uploadMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("UPLOAD_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		uploadMax = v
	}

	return Config{
		Port:            getenv("PORT", "5000"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		TokenTTL:        tokenTTL,
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
		MinIOEndpoint:   must("MINIO_ENDPOINT"),
		MinIOAccessKey:  must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:  must("MINIO_SECRET_KEY"),
		MinIOUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucket:     getenv("MINIO_BUCKET", "traveltales-uploads"),
		MinIOPublicURL:  getenv("MINIO_PUBLIC_URL", ""),
		WeatherAPIKey:   getenv("WEATHER_API_KEY", ""),
		MapsAPIKey:      getenv("MAPS_API_KEY", ""),
		EventsAPIKey:    getenv("EVENT_API_KEY", ""),
		UploadMaxBytes:  uploadMax,
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
