// cmd/api/main.go
package main

import (
	"log"
	"time"

	"freight-match-api-server/config"
	"freight-match-api-server/internal/api/routes"
	"freight-match-api-server/internal/auth"
	"freight-match-api-server/internal/database"
	"freight-match-api-server/internal/s3"
	"freight-match-api-server/internal/socket"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load environment overrides (no .env in production is fine)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	// 2. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	auth.SetSecret(cfg.JWT.Secret)

	tokenTTL, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		log.Fatalf("Invalid JWT expiration %q: %v", cfg.JWT.Expiration, err)
	}

	// 3. Connect to MongoDB
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// 4. Seed the admin account
	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// 5. Initialize the S3 uploader for photo storage
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 uploader: %v", err)
	}

	// 6. WebSocket hub for realtime notifications
	wsHub := socket.NewHub()

	// 7. Wire everything into the router
	router := routes.SetupRouter(cfg, db, s3Uploader, wsHub, tokenTTL)

	// 8. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
