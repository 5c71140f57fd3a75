package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	DatabaseURL     string // empty selects the in-memory store
	AuditLogPath    string
	ActivityLogPath string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A local .env file is honored when present.
func FromEnv() Server {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	return Server{
		Addr:            getEnv("PROJECTDIR_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AuditLogPath:    getEnv("AUDIT_LOG_PATH", "Projects.txt"),
		ActivityLogPath: getEnv("ACTIVITY_LOG_PATH", "Requests.txt"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
