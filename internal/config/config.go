package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"classroom-tracker/internal/domain"
)

type Config struct {
	TeacherPassword string
	DBPath          string
	ServerPort      string

	// AnnounceURL is an optional webhook hit when a badge is awarded.
	// Announcements are disabled when empty.
	AnnounceURL string

	// SeedRoster creates the initial four-franchise roster on first boot.
	SeedRoster bool

	// CategoryDefault is the category assigned to action labels matching no
	// keyword list. Some deployments prefer "academic"; the default is
	// "general".
	CategoryDefault domain.Category
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		TeacherPassword: getEnv("TEACHER_PASSWORD", ""),
		DBPath:          getEnv("DB_PATH", "classroom.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		AnnounceURL:     getEnv("ANNOUNCE_URL", ""),
		SeedRoster:      getEnv("SEED_ROSTER", "true") == "true",
		CategoryDefault: domain.Category(getEnv("CATEGORY_DEFAULT", string(domain.CategoryGeneral))),
	}

	if cfg.TeacherPassword == "" {
		return nil, fmt.Errorf("TEACHER_PASSWORD is required")
	}
	if cfg.CategoryDefault != domain.CategoryGeneral && cfg.CategoryDefault != domain.CategoryAcademic {
		return nil, fmt.Errorf("CATEGORY_DEFAULT must be %q or %q", domain.CategoryGeneral, domain.CategoryAcademic)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Bool("seed_roster", cfg.SeedRoster).
		Str("category_default", string(cfg.CategoryDefault)).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
