package util

import (
	"os"
	"strconv"

	"github.com/OFFIS-RIT/osint/pkg/logger"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
}

func GetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return ""
	}
	return value
}

func GetEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}

	return value
}

func GetEnvNumeric(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	returnValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warn("Invalid numeric environment variable, using default", "key", key, "value", value)
		return defaultValue
	}

	return returnValue
}

func GetEnvInt(key string, defaultValue int) int {
	return int(GetEnvNumeric(key, float64(defaultValue)))
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	if value == "true" || value == "false" {
		return value == "true"
	}

	return defaultValue
}

// Store adapters selectable with STORE_ADAPTER.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config is the process configuration shared by the server, the worker and
// the CLI.
type Config struct {
	Debug   bool
	LogJSON bool
	Port    string

	StoreAdapter string
	SQLitePath   string
	DatabaseURL  string

	AuthorityRules      string
	SoftAcceptThreshold float64
	ParallelRuns        int

	ArchiveBucket string
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() Config {
	return Config{
		Debug:   GetEnvBool("DEBUG", false),
		LogJSON: GetEnvBool("LOG_JSON", false),
		Port:    GetEnvString("PORT", "8080"),

		StoreAdapter: GetEnvString("STORE_ADAPTER", StoreSQLite),
		SQLitePath:   GetEnvString("SQLITE_PATH", "data/reports.db"),
		DatabaseURL:  GetEnv("DATABASE_URL"),

		AuthorityRules:      GetEnv("AUTHORITY_RULES"),
		SoftAcceptThreshold: GetEnvNumeric("SOFT_ACCEPT_THRESHOLD", 0),
		ParallelRuns:        GetEnvInt("PARALLEL_RUNS", 4),

		ArchiveBucket: GetEnv("AWS_BUCKET"),
	}
}
