package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var defaultAllowedMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

type Config struct {
	HttpPort        string
	AppEnv          string
	LogLevel        string
	AllowOrigins    string
	ShutdownTimeout time.Duration

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	// retry executor
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration

	// uploads
	MaxFileSize      int64
	MaxFiles         int
	AllowedMimeTypes []string

	// cancellation / progress
	CancelTTL       time.Duration
	ProgressChannel string

	// Redis
	RedisURL string

	// Postgres
	Host     string
	User     string
	Password string
	DBName   string
	Port     string

	// S3/MinIO
	BucketEndpoint  string
	BucketAccessID  string
	BucketAccessKey string
	BucketName      string
	BucketRegion    string
	UseSSL          bool   // MinIO: false, S3: true
	StorageType     string //"minio" or "s3"
	UploadTimeout   time.Duration
	CourseURLExpiry time.Duration
}

func LoadConfig() *Config {
	return &Config{
		HttpPort:          getenv("PORT", "4000"),
		AppEnv:            os.Getenv("APP_ENV"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		AllowOrigins:      getenv("ALLOWORIGINS", "*"),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getenv("GEMINI_MODEL", "models/gemini-2.0-flash"),
		GeminiBaseURL:     getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiTimeout:     getDuration("GEMINI_TIMEOUT", 120*time.Second),
		RetryMaxAttempts:  getInt("RETRY_MAX_ATTEMPTS", 4),
		RetryInitialDelay: getDuration("RETRY_INITIAL_DELAY", time.Second),
		MaxFileSize:       int64(getInt("MAX_FILE_SIZE", 10*1024*1024)),
		MaxFiles:          getInt("MAX_FILES", 3),
		AllowedMimeTypes:  getList("ALLOWED_MIMETYPES", defaultAllowedMimeTypes),
		CancelTTL:         getDuration("CANCEL_TTL", time.Hour),
		ProgressChannel:   getenv("PROGRESS_CHANNEL", "course:progress"),
		RedisURL:          os.Getenv("REDIS_URL"),
		Host:              os.Getenv("PG_HOST"),
		User:              os.Getenv("PG_USER"),
		Password:          os.Getenv("PG_PASSWORD"),
		DBName:            os.Getenv("PG_DB"),
		Port:              getenv("PG_PORT", "5432"),
		BucketEndpoint:    os.Getenv("BUCKET_ENDPOINT"),
		BucketAccessID:    os.Getenv("BUCKET_ACCESS_ID"),
		BucketAccessKey:   os.Getenv("BUCKET_ACCESS_KEY"),
		BucketName:        os.Getenv("BUCKET_NAME"),
		BucketRegion:      os.Getenv("BUCKET_REGION"),
		UseSSL:            os.Getenv("BUCKET_USE_SSL") == "true",
		StorageType:       os.Getenv("STORAGE_TYPE"),
		UploadTimeout:     getDuration("UPLOAD_TIMEOUT", 30*time.Second),
		CourseURLExpiry:   getDuration("COURSE_URL_EXPIRY", 15*time.Minute),
	}
}

// Validate reports the first setting that prevents the server from starting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.RetryMaxAttempts < 0 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 0, got %d", c.RetryMaxAttempts)
	}
	if c.MaxFiles < 0 {
		return fmt.Errorf("MAX_FILES must be >= 0, got %d", c.MaxFiles)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be > 0")
	}
	switch c.StorageType {
	case "", "minio", "s3":
	default:
		return fmt.Errorf("STORAGE_TYPE must be minio or s3, got %q", c.StorageType)
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.AppEnv == "prod"
}

func (c *Config) DatabaseEnabled() bool {
	return c.Host != "" && c.DBName != ""
}

func (c *Config) StorageEnabled() bool {
	return c.StorageType != "" && c.BucketName != ""
}

// BodyLimit leaves 1MB on top of the attachments for the form fields.
func (c *Config) BodyLimit() int {
	return int(c.MaxFileSize)*max(c.MaxFiles, 1) + 1024*1024
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
