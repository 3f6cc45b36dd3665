package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port         string
	LogLevel     string
	StoreBackend string
	CORSOrigins  []string
	JWTSecret    string
	Database     DatabaseConfig
	Media        MediaConfig
	ImageListID  string
}

type DatabaseConfig struct {
	URL      string
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

// DSN prefers DATABASE_URL and otherwise assembles one from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// MediaConfig is the unsigned-upload account. Empty credentials are allowed
// here and reported when an upload is attempted.
type MediaConfig struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
	Folder       string
}

// Load reads .env if present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		CORSOrigins:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),
		JWTSecret:    getEnv("JWT_SECRET", getEnv("SUPABASE_JWT_SECRET", "")),
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			User:     getEnv("user", ""),
			Password: getEnv("password", ""),
			Host:     getEnv("host", ""),
			Port:     getEnv("port", "5432"),
			Name:     getEnv("dbname", ""),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Media: MediaConfig{
			BaseURL:      getEnv("CLOUDINARY_BASE_URL", "https://api.cloudinary.com/v1_1"),
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
			Folder:       getEnv("CLOUDINARY_FOLDER", "cv-images"),
		},
		ImageListID: getEnv("IMAGE_DOC_ID", "image-list"),
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
