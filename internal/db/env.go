package db

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file from the working directory when one exists.
// Deployments without the file rely on the process environment.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env: %v", err)
		return
	}
	log.Println(".env loaded")
}
