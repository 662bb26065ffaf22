package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Secrets never have defaults inside code and must be provided via .env, config.json or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string `validate:"required"`
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string `validate:"oneof=debug release test"`
	GinPath string
	// Database
	DBDriver    string `validate:"oneof=mysql postgres memory"`
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for list/detail caching and token revocation
	RedisEnabled    bool
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	CacheTTLSeconds int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Admin gate
	AdminUsername     string `validate:"required"`
	AdminPasswordHash string `validate:"required"`
	TokenTTLHours     int
	// Failed logins per IP before a temporary lockout
	AdminMaxFailedLogins int
	AdminLockoutMinutes  int
	// Media host
	MediaProvider       string `validate:"oneof=cloudinary s3 r2 azure local"`
	MediaFolder         string
	CloudinaryCloudName string `validate:"required_if=MediaProvider cloudinary"`
	CloudinaryAPIKey    string `validate:"required_if=MediaProvider cloudinary"`
	CloudinaryAPISecret string `validate:"required_if=MediaProvider cloudinary"`
	S3Bucket            string
	S3Region            string
	S3Endpoint          string `validate:"required_if=MediaProvider r2"`
	S3AccessKey         string
	S3SecretKey         string
	S3BaseURL           string
	AzureConnection     string `validate:"required_if=MediaProvider azure"`
	AzureContainer      string `validate:"required_if=MediaProvider azure"`
	LocalMediaDir       string
	LocalMediaBaseURL   string
	// Upload limits
	UploadMaxFileMB    int `validate:"gte=1"`
	UploadMaxFiles     int `validate:"gte=1"`
	UploadConcurrency  int `validate:"gte=1"`
	UploadRetries      int `validate:"gte=0,lte=10"`
	OrphanSweepMinutes int
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: .env -> config/config.json -> defaults -> environment variable overrides
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from config.json and environment")
	}
	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		log.Fatalf("invalid config/config.json: %v", err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	applyDerived(&cfg)

	if err := Validate(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Used by tests and tools that build config in code.
func Set(c AppConfig) {
	cfg = c
	loaded = true
}

// Validate checks provider-specific requirements.
func Validate(c AppConfig) error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("missing or invalid settings: %s", strings.Join(fields, ", "))
		}
		return err
	}
	if (c.MediaProvider == "s3" || c.MediaProvider == "r2") && c.S3Bucket == "" {
		return errors.New("S3_BUCKET is required for s3/r2 media providers")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// fileConfig mirrors the grouped layout of config/config.json.
type fileConfig struct {
	App struct {
		AppPort            string   `json:"AppPort"`
		JWTSecret          string   `json:"JWTSecret"`
		RateLimitPerMinute int      `json:"RateLimitPerMinute"`
		AllowedOrigins     []string `json:"AllowedOrigins"`
		GinMode            string   `json:"GinMode"`
		GinPath            string   `json:"GinPath"`
	} `json:"app"`
	Database struct {
		Driver   string `json:"Driver"`
		URI      string `json:"URI"`
		Host     string `json:"Host"`
		Port     string `json:"Port"`
		User     string `json:"User"`
		Password string `json:"Password"`
		Name     string `json:"Name"`
	} `json:"database"`
	Redis struct {
		Enabled         bool   `json:"Enabled"`
		Host            string `json:"Host"`
		Port            int    `json:"Port"`
		DB              int    `json:"DB"`
		Password        string `json:"Password"`
		CacheTTLSeconds int    `json:"CacheTTLSeconds"`
	} `json:"redis"`
	Log struct {
		Level      string `json:"Level"`
		Path       string `json:"Path"`
		MaxSizeMB  int    `json:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays"`
		Compress   bool   `json:"Compress"`
	} `json:"log"`
	Admin struct {
		Username      string `json:"Username"`
		PasswordHash  string `json:"PasswordHash"`
		TokenTTLHours int    `json:"TokenTTLHours"`
		MaxFailed     int    `json:"MaxFailedLogins"`
		LockoutMin    int    `json:"LockoutMinutes"`
	} `json:"admin"`
	Media struct {
		Provider            string `json:"Provider"`
		Folder              string `json:"Folder"`
		CloudinaryCloudName string `json:"CloudinaryCloudName"`
		CloudinaryAPIKey    string `json:"CloudinaryAPIKey"`
		CloudinaryAPISecret string `json:"CloudinaryAPISecret"`
		S3Bucket            string `json:"S3Bucket"`
		S3Region            string `json:"S3Region"`
		S3Endpoint          string `json:"S3Endpoint"`
		S3AccessKey         string `json:"S3AccessKey"`
		S3SecretKey         string `json:"S3SecretKey"`
		S3BaseURL           string `json:"S3BaseURL"`
		AzureConnection     string `json:"AzureConnection"`
		AzureContainer      string `json:"AzureContainer"`
		LocalDir            string `json:"LocalDir"`
		LocalBaseURL        string `json:"LocalBaseURL"`
	} `json:"media"`
	Upload struct {
		MaxFileMB          int `json:"MaxFileMB"`
		MaxFiles           int `json:"MaxFiles"`
		Concurrency        int `json:"Concurrency"`
		Retries            int `json:"Retries"`
		OrphanSweepMinutes int `json:"OrphanSweepMinutes"`
	} `json:"upload"`
}

// loadJSONConfig reads the grouped JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var fc fileConfig
	if err := json.NewDecoder(f).Decode(&fc); err != nil {
		return err
	}

	out.AppPort = fc.App.AppPort
	out.JWTSecret = fc.App.JWTSecret
	out.RateLimitPerMinute = fc.App.RateLimitPerMinute
	out.AllowedOrigins = fc.App.AllowedOrigins
	out.GinMode = fc.App.GinMode
	out.GinPath = fc.App.GinPath

	out.DBDriver = fc.Database.Driver
	out.DatabaseURI = fc.Database.URI
	out.DBHost = fc.Database.Host
	out.DBPort = fc.Database.Port
	out.DBUser = fc.Database.User
	out.DBPassword = fc.Database.Password
	out.DBName = fc.Database.Name

	out.RedisEnabled = fc.Redis.Enabled
	out.RedisHost = fc.Redis.Host
	out.RedisPort = fc.Redis.Port
	out.RedisDB = fc.Redis.DB
	out.RedisPassword = fc.Redis.Password
	out.CacheTTLSeconds = fc.Redis.CacheTTLSeconds

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress

	out.AdminUsername = fc.Admin.Username
	out.AdminPasswordHash = fc.Admin.PasswordHash
	out.TokenTTLHours = fc.Admin.TokenTTLHours
	out.AdminMaxFailedLogins = fc.Admin.MaxFailed
	out.AdminLockoutMinutes = fc.Admin.LockoutMin

	out.MediaProvider = fc.Media.Provider
	out.MediaFolder = fc.Media.Folder
	out.CloudinaryCloudName = fc.Media.CloudinaryCloudName
	out.CloudinaryAPIKey = fc.Media.CloudinaryAPIKey
	out.CloudinaryAPISecret = fc.Media.CloudinaryAPISecret
	out.S3Bucket = fc.Media.S3Bucket
	out.S3Region = fc.Media.S3Region
	out.S3Endpoint = fc.Media.S3Endpoint
	out.S3AccessKey = fc.Media.S3AccessKey
	out.S3SecretKey = fc.Media.S3SecretKey
	out.S3BaseURL = fc.Media.S3BaseURL
	out.AzureConnection = fc.Media.AzureConnection
	out.AzureContainer = fc.Media.AzureContainer
	out.LocalMediaDir = fc.Media.LocalDir
	out.LocalMediaBaseURL = fc.Media.LocalBaseURL

	out.UploadMaxFileMB = fc.Upload.MaxFileMB
	out.UploadMaxFiles = fc.Upload.MaxFiles
	out.UploadConcurrency = fc.Upload.Concurrency
	out.UploadRetries = fc.Upload.Retries
	out.OrphanSweepMinutes = fc.Upload.OrphanSweepMinutes
	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "5001"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "studiocms"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 3600
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 24
	}
	if c.AdminMaxFailedLogins == 0 {
		c.AdminMaxFailedLogins = 5
	}
	if c.AdminLockoutMinutes == 0 {
		c.AdminLockoutMinutes = 15
	}
	if c.MediaProvider == "" {
		c.MediaProvider = "cloudinary"
	}
	if c.MediaFolder == "" {
		c.MediaFolder = "studio"
	}
	if c.S3Region == "" {
		c.S3Region = "us-east-1"
	}
	if c.LocalMediaDir == "" {
		c.LocalMediaDir = "./static/media"
	}
	if c.UploadMaxFileMB == 0 {
		c.UploadMaxFileMB = 500
	}
	if c.UploadMaxFiles == 0 {
		c.UploadMaxFiles = 50
	}
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = 8
	}
	if c.OrphanSweepMinutes == 0 {
		c.OrphanSweepMinutes = 10
	}
}

// applyDerived fills values that depend on other settings, after env overrides.
func applyDerived(c *AppConfig) {
	if c.DBPort == "" {
		switch c.DBDriver {
		case "postgres":
			c.DBPort = "5432"
		default:
			c.DBPort = "3306"
		}
	}
	if c.LocalMediaBaseURL == "" {
		c.LocalMediaBaseURL = "http://localhost:" + c.AppPort + "/media"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", getEnv("PORT", "")); v != "" {
		c.AppPort = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}
	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("REDIS_ENABLED", ""); v != "" {
		c.RedisEnabled = v == "true"
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("CACHE_TTL_SECONDS", ""); v != "" {
		c.CacheTTLSeconds = mustParseInt(v)
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	if v := getEnv("ADMIN_USERNAME", ""); v != "" {
		c.AdminUsername = v
	}
	if v := getEnv("ADMIN_PASSWORD_HASH", ""); v != "" {
		c.AdminPasswordHash = v
	}
	if v := getEnv("TOKEN_TTL_HOURS", ""); v != "" {
		c.TokenTTLHours = mustParseInt(v)
	}
	if v := getEnv("ADMIN_MAX_FAILED_LOGINS", ""); v != "" {
		c.AdminMaxFailedLogins = mustParseInt(v)
	}
	if v := getEnv("ADMIN_LOCKOUT_MINUTES", ""); v != "" {
		c.AdminLockoutMinutes = mustParseInt(v)
	}
	if v := getEnv("MEDIA_PROVIDER", ""); v != "" {
		c.MediaProvider = strings.ToLower(v)
	}
	if v := getEnv("MEDIA_FOLDER", ""); v != "" {
		c.MediaFolder = v
	}
	if v := getEnv("CLOUDINARY_CLOUD_NAME", ""); v != "" {
		c.CloudinaryCloudName = v
	}
	if v := getEnv("CLOUDINARY_API_KEY", ""); v != "" {
		c.CloudinaryAPIKey = v
	}
	if v := getEnv("CLOUDINARY_API_SECRET", ""); v != "" {
		c.CloudinaryAPISecret = v
	}
	if v := getEnv("S3_BUCKET", ""); v != "" {
		c.S3Bucket = v
	}
	if v := getEnv("S3_REGION", ""); v != "" {
		c.S3Region = v
	}
	if v := getEnv("S3_ENDPOINT", ""); v != "" {
		c.S3Endpoint = v
	}
	if v := getEnv("S3_ACCESS_KEY", ""); v != "" {
		c.S3AccessKey = v
	}
	if v := getEnv("S3_SECRET_KEY", ""); v != "" {
		c.S3SecretKey = v
	}
	if v := getEnv("S3_BASE_URL", ""); v != "" {
		c.S3BaseURL = v
	}
	if v := getEnv("AZURE_STORAGE_CONNECTION_STRING", ""); v != "" {
		c.AzureConnection = v
	}
	if v := getEnv("AZURE_CONTAINER", ""); v != "" {
		c.AzureContainer = v
	}
	if v := getEnv("LOCAL_MEDIA_DIR", ""); v != "" {
		c.LocalMediaDir = v
	}
	if v := getEnv("LOCAL_MEDIA_BASE_URL", ""); v != "" {
		c.LocalMediaBaseURL = v
	}
	if v := getEnv("UPLOAD_MAX_FILE_MB", ""); v != "" {
		c.UploadMaxFileMB = mustParseInt(v)
	}
	if v := getEnv("UPLOAD_MAX_FILES", ""); v != "" {
		c.UploadMaxFiles = mustParseInt(v)
	}
	if v := getEnv("UPLOAD_CONCURRENCY", ""); v != "" {
		c.UploadConcurrency = mustParseInt(v)
	}
	if v := getEnv("UPLOAD_RETRIES", ""); v != "" {
		c.UploadRetries = mustParseInt(v)
	}
	if v := getEnv("ORPHAN_SWEEP_MINUTES", ""); v != "" {
		c.OrphanSweepMinutes = mustParseInt(v)
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
