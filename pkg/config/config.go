package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	StorageDriver   string // "firestore" or "memory"
	FirebaseProject string
	JWTSecret       string
	JWTExpiry       int64
	ChatRoomTTL     time.Duration
	SweepInterval   time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		StorageDriver:   getEnv("STORAGE_DRIVER", "memory"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:       getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours
		ChatRoomTTL:     getEnvAsMinutes("CHAT_ROOM_TTL_MINUTES", 30),
		SweepInterval:   getEnvAsMinutes("CLEANUP_INTERVAL_MINUTES", 5),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsMinutes(key string, defaultValue int64) time.Duration {
	return time.Duration(getEnvAsInt64(key, defaultValue)) * time.Minute
}
