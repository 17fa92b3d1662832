package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	storage "github.com/phillip/events-console-go/storage"
)

// Config holds all runtime configuration plus the shared service clients.
type Config struct {
	Port      string
	DBName    string
	JWTSecret string

	MongoClient *mongo.Client
	Blobs       storage.BlobStore
}

// Load reads configuration from a .env file (if present) and environment
// variables, connects to MongoDB and builds the configured blob-store driver.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBName:    getEnv("DB_NAME", "events_console"),
		JWTSecret: getEnv("JWT_SECRET", "change_me_in_production"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(getEnv("MONGO_URI", "mongodb://localhost:27017")))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	cfg.MongoClient = client

	blobs, err := buildBlobStore(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Blobs = blobs

	return cfg, nil
}

// buildBlobStore selects the blob-store driver from STORAGE_DRIVER:
// "firebase" (default) or "cloudinary".
func buildBlobStore(ctx context.Context) (storage.BlobStore, error) {
	switch driver := getEnv("STORAGE_DRIVER", "firebase"); driver {
	case "firebase":
		return storage.NewFirebaseStorage(ctx,
			os.Getenv("FIREBASE_STORAGE_BUCKET"),
			os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		)
	case "cloudinary":
		return storage.NewCloudinaryStorage(
			os.Getenv("CLOUDINARY_CLOUD_NAME"),
			os.Getenv("CLOUDINARY_API_KEY"),
			os.Getenv("CLOUDINARY_API_SECRET"),
		)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
