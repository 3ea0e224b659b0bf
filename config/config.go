package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	return nil
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvDefault lấy biến môi trường, thiếu thì dùng giá trị mặc định
func GetEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
