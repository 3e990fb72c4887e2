package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// PipelineAPIKey guards the endpoints that let an external cron fire
	// scheduled jobs. Empty disables them.
	PipelineAPIKey string

	Scheduler SchedulerConfig
}

// SchedulerConfig controls the in-process wake-ups for recurring
// transactions and monthly budgets.
type SchedulerConfig struct {
	Enabled      bool
	RunOnStartup bool
	Location     *time.Location
	RecurringAt  TimeOfDay
	BudgetsAt    TimeOfDay
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get values from environment variables with defaults
	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "pennywise"),
		DBPassword: getEnv("DB_PASSWORD", "pennywise"),
		DBName:     getEnv("DB_NAME", "pennywise"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	config.Scheduler = loadScheduler()

	appConfig = config
	return config, nil
}

func loadScheduler() SchedulerConfig {
	sc := SchedulerConfig{
		Enabled:      getBool("SCHEDULER_ENABLED", true),
		RunOnStartup: getBool("SCHEDULER_RUN_ON_STARTUP", false),
		Location:     time.UTC,
		RecurringAt:  TimeOfDay{Hour: 1},
		BudgetsAt:    TimeOfDay{},
	}

	tz := getEnv("SCHEDULER_TIMEZONE", "UTC")
	if loc, err := time.LoadLocation(tz); err != nil {
		log.Printf("Warning: invalid SCHEDULER_TIMEZONE value '%s', falling back to UTC\n", tz)
	} else {
		sc.Location = loc
	}

	if v := os.Getenv("RECURRING_RUN_AT"); v != "" {
		if t, err := ParseTimeOfDay(v); err != nil {
			log.Printf("Warning: %v, falling back to %s\n", err, sc.RecurringAt)
		} else {
			sc.RecurringAt = t
		}
	}
	if v := os.Getenv("BUDGETS_RUN_AT"); v != "" {
		if t, err := ParseTimeOfDay(v); err != nil {
			log.Printf("Warning: %v, falling back to %s\n", err, sc.BudgetsAt)
		} else {
			sc.BudgetsAt = t
		}
	}
	return sc
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, v, defaultValue)
		return defaultValue
	}
	return b
}
