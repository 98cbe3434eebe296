package main

import (
	"context"
	"log"

	"optika/internal/config"
	"optika/internal/database"
	"optika/internal/seed"
)

func main() {
	log.Println("Starting seed script...")

	config.Load()
	cfg := config.AppEnv
	ctx := context.Background()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.DBName)
	log.Println("Connected to database:", db.Name())
	database.EnsureIndexes(db)

	backend := database.New(db)

	if _, err := seed.Admin(ctx, backend.UserStore(), cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	inserted, err := seed.Products(ctx, backend.ProductStore())
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Printf("Seed completed: %d products inserted", inserted)
}
