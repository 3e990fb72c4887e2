package database

import (
	"testing"
	"time"

	"pennywise/internal/config"
)

func TestNewConfig(t *testing.T) {
	app := &config.Config{
		DBHost:     "db.internal",
		DBPort:     "6543",
		DBUser:     "ledger",
		DBPassword: "s3cret",
		DBName:     "pennywise",
		DBSSLMode:  "require",
	}

	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig(app)

		if cfg.MaxIdleConns != 10 || cfg.MaxOpenConns != 100 {
			t.Errorf("unexpected pool sizes idle=%d open=%d", cfg.MaxIdleConns, cfg.MaxOpenConns)
		}
		if cfg.ConnMaxLifetime != time.Hour {
			t.Errorf("expected 1h lifetime, got %s", cfg.ConnMaxLifetime)
		}
		if cfg.MigrationsPath != "file://migrations" {
			t.Errorf("unexpected migrations path %q", cfg.MigrationsPath)
		}
	})

	t.Run("pool overrides", func(t *testing.T) {
		t.Setenv("DB_MAX_IDLE_CONNS", "2")
		t.Setenv("DB_MAX_OPEN_CONNS", "8")
		t.Setenv("DB_CONN_MAX_LIFETIME", "15m")
		t.Setenv("MIGRATIONS_PATH", "file:///srv/migrations")

		cfg := NewConfig(app)

		if cfg.MaxIdleConns != 2 || cfg.MaxOpenConns != 8 {
			t.Errorf("unexpected pool sizes idle=%d open=%d", cfg.MaxIdleConns, cfg.MaxOpenConns)
		}
		if cfg.ConnMaxLifetime != 15*time.Minute {
			t.Errorf("expected 15m lifetime, got %s", cfg.ConnMaxLifetime)
		}
		if cfg.MigrationsPath != "file:///srv/migrations" {
			t.Errorf("unexpected migrations path %q", cfg.MigrationsPath)
		}
	})

	t.Run("invalid overrides fall back", func(t *testing.T) {
		t.Setenv("DB_MAX_OPEN_CONNS", "lots")
		t.Setenv("DB_CONN_MAX_LIFETIME", "-1s")

		cfg := NewConfig(app)

		if cfg.MaxOpenConns != 100 {
			t.Errorf("expected fallback 100, got %d", cfg.MaxOpenConns)
		}
		if cfg.ConnMaxLifetime != time.Hour {
			t.Errorf("expected fallback 1h, got %s", cfg.ConnMaxLifetime)
		}
	})
}

func TestConfigConnectionStrings(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: "5432", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}

	if got, want := cfg.DSN(), "host=localhost port=5432 user=u password=p dbname=d sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if got, want := cfg.URL(), "postgres://u:p@localhost:5432/d?sslmode=disable"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
