package config

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DSN       string
	APISecret string
	Port      string
	UploadDir string
	Storage   StorageConfig
}

// StorageConfig holds the object storage credentials. It is built once in
// main and handed to the uploader, never read from globals.
type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// PublicURL is a format string with a single %s for the object key,
	// e.g. "https://cdn.example.com/%s".
	PublicURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading configuration from environment")
	}

	cfg := &Config{
		DSN:       os.Getenv("DSN"),
		APISecret: os.Getenv("API_SECRET"),
		Port:      os.Getenv("PORT"),
		UploadDir: os.Getenv("UPLOAD_DIR"),
		Storage: StorageConfig{
			AccountID:       os.Getenv("ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("BUCKET_NAME"),
			PublicURL:       os.Getenv("PUBLIC_URL"),
		},
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	return cfg
}
