package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"osonaiAPI/internal/generation"
	"osonaiAPI/internal/imagesource"
)

type Config struct {
	Server     ServerConfig
	Generation GenerationConfig
	Images     ImagesConfig
	Sessions   SessionsConfig
	RateLimit  RateLimitConfig
	Metrics    MetricsConfig
	CORS       CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GenerationConfig struct {
	OpenAI  generation.OpenAIConfig
	Timeout time.Duration
}

type ImagesConfig struct {
	// RelayURL, when set, routes every remote image fetch through a relay.
	RelayURL       string
	FetchTimeout   time.Duration
	UploadMaxBytes int64
	// MaxPixels caps width*height of uploaded and fetched rasters.
	MaxPixels int
}

type SessionsConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type MetricsConfig struct {
	User        string
	Pass        string
	PprofSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Generation: GenerationConfig{
			OpenAI: generation.OpenAIConfig{
				APIKey:     getEnv("OPENAI_API_KEY", ""),
				BaseURL:    getEnv("OPENAI_BASE_URL", ""),
				TextModel:  getEnv("OPENAI_TEXT_MODEL", "gpt-4"),
				ImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
			},
			Timeout: getDuration("GENERATION_TIMEOUT", 60*time.Second),
		},
		Images: ImagesConfig{
			RelayURL:       getEnv("IMAGE_RELAY_URL", ""),
			FetchTimeout:   getDuration("FETCH_TIMEOUT", 15*time.Second),
			UploadMaxBytes: int64(getInt("UPLOAD_MAX_BYTES", imagesource.DefaultMaxUploadBytes)),
			MaxPixels:      getInt("IMAGE_MAX_PIXELS", imagesource.DefaultMaxPixels),
		},
		Sessions: SessionsConfig{
			IdleTTL:       getDuration("SESSION_IDLE_TTL", 2*time.Hour),
			SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloat("RATE_LIMIT_RPS", 5),
			Burst: getInt("RATE_LIMIT_BURST", 30),
		},
		Metrics: MetricsConfig{
			User:        getEnv("METRICS_USER", ""),
			Pass:        getEnv("METRICS_PASS", ""),
			PprofSecret: getEnv("PPROF_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}
}

// Addr is the listen address for http.Server.
func (c ServerConfig) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid %s=%q, using %g", key, value, defaultValue)
	}
	return defaultValue
}

// getDuration accepts Go durations; a bare number is seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
