// backend-go/internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	AdminPort      string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	// ExtractPath is the raw Famus lot detail CSV processed by `report run`.
	ExtractPath string
	OutputDir   string
	// MappingsPath optionally points at a JSON file overriding the built-in
	// exporter/variety/packaging mapping tables.
	MappingsPath string
	LogLevel     string
	// Workers bounds concurrent season builds; 0 runs every season at once.
	Workers int
	// Seasons holds "name=start..end" entries, dates in YYYY-MM-DD.
	Seasons []string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type DriveConfig struct {
	Enabled         bool
	CredentialsFile string
	FolderID        string
	DownloadDir     string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_ADMIN_PORT", "8081")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "famus_reports")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("APP_EXTRACT_PATH", "./data/famus_extract.csv")
		viper.SetDefault("APP_OUTPUT_DIR", "./data/output")
		viper.SetDefault("APP_MAPPINGS_PATH", "")
		viper.SetDefault("APP_LOG_LEVEL", "info")
		viper.SetDefault("APP_WORKERS", 0)
		viper.SetDefault("APP_SEASONS", []string{
			"2023-2024=2023-11-01..2024-11-30",
			"2024-2025=2024-12-01..2025-11-30",
		})
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_TTL_SECONDS", 300)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "famus-reports")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("DRIVE_ENABLED", false)
		viper.SetDefault("DRIVE_CREDENTIALS_FILE", "./credentials.json")
		viper.SetDefault("DRIVE_FOLDER_ID", "")
		viper.SetDefault("DRIVE_DOWNLOAD_DIR", "./data/incoming")

		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_OUTPUT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				AdminPort:      viper.GetString("SERVER_ADMIN_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				ExtractPath:  viper.GetString("APP_EXTRACT_PATH"),
				OutputDir:    viper.GetString("APP_OUTPUT_DIR"),
				MappingsPath: viper.GetString("APP_MAPPINGS_PATH"),
				LogLevel:     viper.GetString("APP_LOG_LEVEL"),
				Workers:      viper.GetInt("APP_WORKERS"),
				Seasons:      viper.GetStringSlice("APP_SEASONS"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				TTLSeconds:    viper.GetInt("CACHE_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				Enabled:         viper.GetBool("DRIVE_ENABLED"),
				CredentialsFile: viper.GetString("DRIVE_CREDENTIALS_FILE"),
				FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
				DownloadDir:     viper.GetString("DRIVE_DOWNLOAD_DIR"),
			},
		}
	})

	return instance
}

// Seasons parses the configured season ranges. Invalid entries are skipped;
// with no valid entries the built-in defaults apply.
func (c *Config) Seasons() []domain.Season {
	seasons := make([]domain.Season, 0, len(c.App.Seasons))
	for _, entry := range c.App.Seasons {
		s, err := parseSeason(entry)
		if err != nil {
			log.Printf("skipping invalid season %q: %v", entry, err)
			continue
		}
		seasons = append(seasons, s)
	}
	if len(seasons) == 0 {
		return domain.DefaultSeasons()
	}
	return seasons
}

func parseSeason(entry string) (domain.Season, error) {
	name, dates, ok := strings.Cut(entry, "=")
	if !ok {
		return domain.Season{}, fmt.Errorf("want name=start..end")
	}
	startRaw, endRaw, ok := strings.Cut(dates, "..")
	if !ok {
		return domain.Season{}, fmt.Errorf("want name=start..end")
	}
	start, err := time.Parse("2006-01-02", strings.TrimSpace(startRaw))
	if err != nil {
		return domain.Season{}, fmt.Errorf("start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(endRaw))
	if err != nil {
		return domain.Season{}, fmt.Errorf("end date: %w", err)
	}
	if end.Before(start) {
		return domain.Season{}, fmt.Errorf("end before start")
	}
	return domain.Season{Name: strings.TrimSpace(name), Start: start, End: end}, nil
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
