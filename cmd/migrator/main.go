package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"jobtrack/internal/config"
	"jobtrack/internal/storage/mongodb"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var configPath, migrationsPath string
	flag.StringVar(&configPath, "config", "", "path to config file (or use CONFIG_PATH env)")
	flag.StringVar(&migrationsPath, "migrations", "migrations", "path to migrations directory")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	cfg := config.LoadConfig(configPath)

	log.Println("Applying sqlite migrations...")

	m, err := migrate.New("file://"+migrationsPath, "sqlite3://"+cfg.StoragePath)
	if err != nil {
		log.Fatalf("failed to init migrator: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	log.Println("sqlite schema is up to date")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Connecting to MongoDB...")

	sessions, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer sessions.Close(ctx)

	log.Println("MongoDB connected, session TTL index created")
	log.Println("Database initialization completed successfully")
}
