package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/luckywheel-vn/luckywheel-backend/internal/config"
	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	mongorepo "github.com/luckywheel-vn/luckywheel-backend/internal/repositories/mongodb"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/mongodb"
)

// Seeds the default wheel configuration for a campaign and, when
// ADMIN_EMAIL/ADMIN_PASSWORD are set, a bootstrap admin account.
// Usage: go run ./cmd/scripts -campaign lucky-wheel-2025-10-14
func main() {
	_ = godotenv.Load()

	campaignID := flag.String("campaign", "", "campaign to seed (defaults to Campaign.DefaultID)")
	flag.Parse()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *campaignID == "" {
		*campaignID = cfg.Campaign.DefaultID
	}

	client, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	prizeRepo := mongorepo.NewPrizeRepository(db)

	existing, err := prizeRepo.FindActiveByCampaign(ctx, *campaignID)
	if err != nil {
		log.Fatalf("Failed to check existing prizes: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Campaign %s already has %d active prizes, skipping prize seed", *campaignID, len(existing))
	} else {
		defaults := []models.PrizeConfig{
			{CampaignID: *campaignID, Value: 20000, Label: "20.000đ", Weight: 40, BackgroundColor: "#ffb8b8", FontSize: "18px", Active: true},
			{CampaignID: *campaignID, Value: 30000, Label: "30.000đ", Weight: 30, BackgroundColor: "#ffd88d", FontSize: "18px", Active: true},
			{CampaignID: *campaignID, Value: 50000, Label: "50.000đ", Weight: 20, BackgroundColor: "#b8e6b8", FontSize: "18px", Active: true},
			{CampaignID: *campaignID, Value: 100000, Label: "100.000đ", Weight: 10, BackgroundColor: "#ffc6ff", FontSize: "18px", Active: true},
		}
		for i := range defaults {
			if err := prizeRepo.Create(ctx, &defaults[i]); err != nil {
				log.Fatalf("Failed to seed prize %d: %v", defaults[i].Value, err)
			}
		}
		log.Printf("Seeded %d prizes for campaign %s", len(defaults), *campaignID)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	adminRepo := mongorepo.NewAdminUserRepository(db)
	if _, err := adminRepo.FindByEmail(ctx, email); err == nil {
		log.Printf("Admin %s already exists, skipping admin seed", email)
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		log.Fatalf("Failed to check existing admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	admin := &models.AdminUser{
		Email:    email,
		Password: string(hash),
		Role:     "admin",
	}
	if err := adminRepo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	log.Printf("Created admin %s", email)
}
