package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port          int    `env:"PORT" envDefault:"8080"`
	Env           string `env:"ENV" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Dsn           string `env:"DSN"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-lite"`

	RadarAPIKey  string `env:"RADAR_API_KEY"`
	RadarBaseURL string `env:"RADAR_BASE_URL" envDefault:"https://api.radar.io"`

	ResendAPIKey  string        `env:"RESEND_API_KEY"`
	NotifyFrom    string        `env:"NOTIFY_FROM" envDefault:"ReportNow <onboarding@resend.dev>"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	StorageProvider     string `env:"STORAGE_PROVIDER" envDefault:"cloudinary"`
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER" envDefault:"reports"`
	MinioEndpoint       string `env:"MINIO_ENDPOINT"`
	MinioAccessKey      string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey      string `env:"MINIO_SECRET_KEY"`
	MinioBucket         string `env:"MINIO_BUCKET" envDefault:"reports"`
	MinioUseSSL         bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioPublicURL      string `env:"MINIO_PUBLIC_URL"`

	CorsAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	AdminJwtSecret     string   `env:"ADMIN_JWT_SECRET"`

	// DegradedCreate answers create requests with an explicit degraded
	// response instead of 503 when the database is unreachable.
	DegradedCreate bool `env:"DEGRADED_CREATE" envDefault:"false"`
}

func New() *Config {
	if loadErr := godotenv.Load(".env"); loadErr != nil {
		log.Info().Err(loadErr).Msg("[Env]: unable to load .env file")
	}

	var cfg Config

	if parseErr := env.Parse(&cfg); parseErr != nil {
		log.Error().Err(parseErr).Msg("[Env]: failed to parse environment variables")
	}

	return &cfg
}

// IsDevelopment reports whether logs should be human readable.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
