package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickRateHz          int
	FrameBroadcastEvery int

	// Sessions
	MaxSessions            int
	SessionIdleSeconds     int
	IdleWorkerPollInterval int
	SnapshotTTLMinutes     int

	// Security
	JWTSecret             string
	PlayerTokenTTLMinutes int

	// Desktop viewer
	WindowWidth  int
	WindowHeight int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/billiards?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickRateHz:          getEnvInt("TICK_RATE_HZ", 60),
		FrameBroadcastEvery: getEnvInt("FRAME_BROADCAST_EVERY", 2),

		// Sessions
		MaxSessions:            getEnvInt("MAX_SESSIONS", 100),
		SessionIdleSeconds:     getEnvInt("SESSION_IDLE_SECONDS", 600),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_INTERVAL", 5),
		SnapshotTTLMinutes:     getEnvInt("SNAPSHOT_TTL_MINUTES", 60),

		// Security
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		PlayerTokenTTLMinutes: getEnvInt("PLAYER_TOKEN_TTL_MINUTES", 60),

		// Desktop viewer
		WindowWidth:  getEnvInt("WINDOW_WIDTH", 1024),
		WindowHeight: getEnvInt("WINDOW_HEIGHT", 768),
	}
}

// TickInterval is the wall-clock period of one simulation frame.
func (c *Config) TickInterval() time.Duration {
	if c.TickRateHz <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRateHz)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SessionIdleTimeout is how long a table may go without input before the
// idle worker ends it.
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleSeconds) * time.Second
}

// SnapshotTTL bounds how long a session snapshot survives in Redis.
func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
