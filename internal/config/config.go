package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v3/log"
	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config структура конфигурации
type Config struct {
	Port             string        `env:"PORT" envDefault:"8080"`
	AppEnv           string        `env:"APP_ENV" envDefault:"production"`
	TelegramBotToken string        `env:"TELEGRAM_BOT_TOKEN"`
	JWTSecret        string        `env:"JWT_SECRET"`
	TokenTTL         time.Duration `env:"JWT_TTL" envDefault:"72h"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"flippy.db"`

	DatabaseConfig   DatabaseConfig
	CloudinaryConfig CloudinaryConfig
	RetryConfig      RetryConfig

	// Очки влияния, начисляемые каждому участнику завершённого обмена
	ImpactPointsPerSwap int `env:"IMPACT_POINTS_PER_SWAP" envDefault:"10"`
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string `env:"PGHOST" envDefault:"localhost"`
	Port     string `env:"PGPORT" envDefault:"5432"`
	User     string `env:"PGUSER" envDefault:"flippy_user"`
	Password string `env:"PGPASSWORD" envDefault:"flippy_pass"`
	Name     string `env:"PGDATABASE" envDefault:"flippy"`
	SSLMode  string `env:"PGSSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"PGMAXCONNS" envDefault:"10"`
	MinConns int32  `env:"PGMINCONNS" envDefault:"2"`
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey       string `env:"CLOUDINARY_API_KEY"`
	APISecret    string `env:"CLOUDINARY_API_SECRET"`
	UploadPreset string `env:"CLOUDINARY_UPLOAD_PRESET" envDefault:"flippy_mvp"`
	UploadFolder string `env:"CLOUDINARY_UPLOAD_FOLDER" envDefault:"flippy/items"`
}

// Enabled сообщает, заданы ли ключи Cloudinary
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// RetryConfig задаёт повторы для операций чтения из хранилища
type RetryConfig struct {
	MaxRetries   uint          `env:"RETRY_MAX" envDefault:"3"`
	InitialDelay time.Duration `env:"RETRY_DELAY" envDefault:"1s"`
	Multiplier   float64       `env:"RETRY_MULTIPLIER" envDefault:"1.5"`
}

// DatabaseURL формирует строку подключения к Postgres
func (c *Config) DatabaseURL() string {
	db := c.DatabaseConfig
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User, db.Password, db.Host, db.Port, db.Name, db.SSLMode)
}

// LoadConfig загружает переменные из .env и окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("⚠️ .env файл не найден, используем переменные окружения")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StorageDriver != DriverPostgres && c.StorageDriver != DriverSQLite {
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageDriver == DriverSQLite && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required for sqlite driver")
	}
	if c.ImpactPointsPerSwap <= 0 {
		return errors.New("IMPACT_POINTS_PER_SWAP must be positive")
	}
	return nil
}

// IsDevelopment сообщает, запущено ли приложение локально
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
