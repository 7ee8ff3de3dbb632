package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"launchtrade/internal/handlers"
	"launchtrade/internal/launch"
	"launchtrade/internal/middleware"
	"launchtrade/internal/routes"
	"launchtrade/pkg/config"
	"launchtrade/pkg/ipfs"
	launchsolana "launchtrade/pkg/solana"
	"launchtrade/pkg/solana/meteora"
)

func main() {
	// Load .env if present; real deployments set env directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	config.InitDB()
	if os.Getenv("RUN_MIGRATIONS") == "true" {
		config.ExecuteMigrations()
	}

	// Build the Solana stack
	client, err := launchsolana.NewClient(os.Getenv("SOLANA_RPC_URL"))
	if err != nil {
		log.Fatal("Failed to create Solana client: ", err)
	}
	authority, err := launchsolana.LoadAuthorityFromEnv()
	if err != nil {
		log.Fatal("Failed to load launch authority: ", err)
	}
	verifier, err := launchsolana.NewPaymentVerifier(client, os.Getenv("COMMISSION_WALLET"), os.Getenv("ADMIN_WALLET"))
	if err != nil {
		log.Fatal("Failed to create payment verifier: ", err)
	}
	minter := launchsolana.NewMinter(client, authority)
	pools, err := meteora.NewProvisioner(client, minter, authority)
	if err != nil {
		log.Fatal("Failed to create liquidity provisioner: ", err)
	}

	metadata := ipfs.NewPublisher(ipfs.NewClient())

	svc := launch.NewService(config.DB, verifier, metadata, minter, pools)

	// Initialize RabbitMQ (optional, will log warning if not configured)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
		publisher, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Failed to create RabbitMQ publisher: ", err)
		}
		defer publisher.Close()
		svc.SetEventPublisher(publisher)
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	gate := middleware.NewMemoryRequestCounter(30*time.Second, 3)
	defer gate.Close()
	tokenHandler := handlers.NewTokenHandler(svc, gate)

	// Set up router
	r := routes.SetupRouter(tokenHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
