package database

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"pennywise/internal/config"
)

// Config holds database connection and pool settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	// MigrationsPath is a golang-migrate source URL.
	MigrationsPath string
}

// NewConfig derives the database configuration from the application config.
// Pool sizes can be tuned with DB_MAX_IDLE_CONNS, DB_MAX_OPEN_CONNS and
// DB_CONN_MAX_LIFETIME.
func NewConfig(app *config.Config) *Config {
	return &Config{
		Host:            app.DBHost,
		Port:            app.DBPort,
		User:            app.DBUser,
		Password:        app.DBPassword,
		DBName:          app.DBName,
		SSLMode:         app.DBSSLMode,
		MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "file://migrations"),
	}
}

// DSN returns the key/value connection string used by the GORM driver.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres:// URL used by golang-migrate.
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
