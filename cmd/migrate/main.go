// Command main applies the database schema for ViaGuild.
//
// In development Connect automigrates on startup; production skips that, so
// deploys run this command explicitly before rolling the server.
package main

import (
	"log"

	"viaguild/internal/config"
	"viaguild/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(database.Models()...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration complete")
}
