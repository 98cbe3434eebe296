package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It is public, so any
// deployment that keeps it accepts forged tokens.
const DefaultJWTSecret = "your-secret-key"

var AppEnv Config

type Config struct {
	Port        string
	Environment string
	StoreDriver string

	MongoURI string
	DBName   string

	JWTSecret string
	TokenTTL  time.Duration

	AdminPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	UploadDriver string
	UploadDir    string
	UploadURL    string
	AWSRegion    string
	S3Bucket     string
}

func (c Config) Production() bool {
	return c.Environment == "production"
}

func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && (c.MailFrom != "" || c.SMTPUsername != "")
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
	if AppEnv.JWTSecret == DefaultJWTSecret {
		log.Println("⚠️ JWT_SECRET not set, falling back to the built-in secret")
	}
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() Config {
	return Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		StoreDriver: getEnvOrDefault("STORE_DRIVER", "mongo"),

		MongoURI: getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017/i_optika"),
		DBName:   getEnvOrDefault("MONGODB_DB", "i_optika"),

		JWTSecret: getEnvOrDefault("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:  getDurationEnv("TOKEN_TTL_DAYS", 7, 24*time.Hour),

		AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", "admin123"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		SMTPHost:     getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:     getIntEnv("SMTP_PORT", 465),
		SMTPUsername: getEnvOrDefault("SMTP_USERNAME", ""),
		SMTPPassword: getEnvOrDefault("SMTP_PASSWORD", ""),
		MailFrom:     getEnvOrDefault("MAIL_FROM", ""),

		UploadDriver: getEnvOrDefault("UPLOAD_DRIVER", "local"),
		UploadDir:    getEnvOrDefault("UPLOAD_DIR", "./public/uploads"),
		UploadURL:    getEnvOrDefault("UPLOAD_URL_PREFIX", "/uploads"),
		AWSRegion:    getEnvOrDefault("AWS_REGION", ""),
		S3Bucket:     getEnvOrDefault("AWS_S3_BUCKET_NAME", ""),
	}
}
