package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Fal           FalConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string // websocket session logs, empty keeps them in the main log
	CorsAllowedOrigins string
	JwtSecret          string // empty disables API authentication
	NatsURL            string // empty disables domain events
	RedisURL           string // empty keeps websocket fan-out local
	EditJobTopic       string
}

type DatabaseConfig struct {
	Driver     string // "memory", "postgres" or "sqlite"
	Connection string
}

type FalConfig struct {
	ApiKey         string
	Model          string
	QueueURL       string
	StorageURL     string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

type StorageConfig struct {
	Driver    string // "fal" or "local"
	UploadDir string
}

type ObservabilityConfig struct {
	OtelEnabled    bool
	OtelEndpoint   string
	MetricsEnabled bool
	ServiceName    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			EditJobTopic:       getEnv("EDIT_JOB_TOPIC", "IMAGE_EDIT_JOBS"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "memory"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Fal: FalConfig{
			// FAL_API_KEY is the legacy name, FAL_KEY wins when both are set
			ApiKey:         getEnv("FAL_KEY", getEnv("FAL_API_KEY", "")),
			Model:          getEnv("FAL_MODEL", "fal-ai/flux-pro/kontext"),
			QueueURL:       getEnv("FAL_QUEUE_URL", "https://queue.fal.run"),
			StorageURL:     getEnv("FAL_STORAGE_URL", "https://rest.alpha.fal.ai"),
			PollInterval:   getEnvAsDuration("FAL_POLL_INTERVAL", time.Second),
			RequestTimeout: getEnvAsDuration("FAL_REQUEST_TIMEOUT", 5*time.Minute),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "fal"),
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		Observability: ObservabilityConfig{
			OtelEnabled:    getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "dreambees-backend"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("750ms", "2m") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
