// Command main runs the database seeder for ViaGuild.
package main

import (
	"flag"
	"log"

	"viaguild/internal/config"
	"viaguild/internal/database"
	"viaguild/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numBadges := flag.Int("badges", 300, "Number of badge awards to attempt")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	replenish := flag.Bool("replenish", false, "Reset all users' allocations to tier defaults instead of seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *replenish {
		if err := seed.ReplenishAllocations(db); err != nil {
			log.Fatalf("❌ Replenish failed: %v", err)
		}
		return
	}

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d badges, clean=%v\n", *numUsers, *numBadges, *shouldClean)

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumBadges:   *numBadges,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
