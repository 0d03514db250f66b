package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"

	"github.com/luckywheel-vn/luckywheel-backend/api/routes"
	"github.com/luckywheel-vn/luckywheel-backend/internal/config"
	"github.com/luckywheel-vn/luckywheel-backend/internal/handlers"
	"github.com/luckywheel-vn/luckywheel-backend/internal/repositories"
	mongorepo "github.com/luckywheel-vn/luckywheel-backend/internal/repositories/mongodb"
	"github.com/luckywheel-vn/luckywheel-backend/internal/services"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/haravan"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/mongodb"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/n8n"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var spinRepo repositories.SpinRepository = mongorepo.NewSpinRepository(db)
	var prizeRepo repositories.PrizeRepository = mongorepo.NewPrizeRepository(db)
	var adminRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	// The unique (campaignId, phone) index is the single-spin guarantee;
	// refusing to start without it beats serving spins unguarded.
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := spinRepo.EnsureIndexes(indexCtx); err != nil {
		cancelIndex()
		log.Fatalf("Failed to ensure spin indexes: %v", err)
	}
	cancelIndex()

	// External clients
	haravanClient := haravan.NewClient(
		cfg.Haravan.BaseURL,
		cfg.Haravan.AuthToken,
		cfg.Haravan.CollectionID,
		cfg.Haravan.MockAPI,
	)
	n8nClient := n8n.NewClient(cfg.N8N.WebhookURL, cfg.N8N.APIKey, cfg.N8N.Secret)
	if cfg.N8N.WebhookURL == "" {
		slog.Warn("N8N webhook URL not configured, notifications will be skipped")
	}

	// Services
	spinService := services.NewSpinService(spinRepo, prizeRepo, cfg.Security.PhonePepper)
	discountService := services.NewDiscountService(spinRepo, haravanClient)
	notifyService := services.NewNotificationService(spinRepo, n8nClient)
	authService := services.NewAuthService(adminRepo, cfg)

	// Handlers
	deps := routes.HandlerDependencies{
		AuthHandler:  handlers.NewAuthHandler(authService),
		SpinHandler:  handlers.NewSpinHandler(spinService, discountService, notifyService),
		AdminHandler: handlers.NewAdminHandler(spinService, discountService, cfg),
	}

	router := routes.SetupRouter(cfg, mongoClient, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port,
			"database", cfg.MongoDB.Database, "haravanMock", cfg.Haravan.MockAPI)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	slog.Info("server exiting")
}
