package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	authService "authflow/internal/application/auth"
	"authflow/internal/delivery/http/handler"
	"authflow/internal/delivery/http/router"
	"authflow/internal/infrastructure/config"
	"authflow/internal/infrastructure/database"
	"authflow/internal/infrastructure/repository"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx := context.Background()

	// Initialize database
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	tokenTTL := time.Duration(cfg.TokenTTLDays) * 24 * time.Hour
	authSvc := authService.NewService(userRepo, []byte(cfg.JWTSecret), tokenTTL)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authSvc)

	// Setup routes
	handlers := router.Handlers{
		Auth: authHandler,
	}
	mux := router.Setup(handlers, authSvc, cfg.FrontendURL)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	fmt.Println("=================================")
	fmt.Println("       AuthFlow Server")
	fmt.Println("=================================")
	fmt.Printf("Server:    http://localhost%s\n", addr)
	fmt.Printf("Frontend:  %s\n", cfg.FrontendURL)
	fmt.Printf("Token TTL: %dd\n", cfg.TokenTTLDays)
	fmt.Println("=================================")
	log.Fatal(http.ListenAndServe(addr, mux))
}
