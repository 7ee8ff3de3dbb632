package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"

	"launchtrade/internal/launch"
	"launchtrade/pkg/config"
	"launchtrade/pkg/ipfs"
	launchsolana "launchtrade/pkg/solana"
	"launchtrade/pkg/solana/meteora"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	config.InitDB()

	client, err := launchsolana.NewClient(os.Getenv("SOLANA_RPC_URL"))
	if err != nil {
		logrus.Fatal("Failed to create Solana client: ", err)
	}
	authority, err := launchsolana.LoadAuthorityFromEnv()
	if err != nil {
		logrus.Fatal("Failed to load launch authority: ", err)
	}
	verifier, err := launchsolana.NewPaymentVerifier(client, os.Getenv("COMMISSION_WALLET"), os.Getenv("ADMIN_WALLET"))
	if err != nil {
		logrus.Fatal("Failed to create payment verifier: ", err)
	}
	minter := launchsolana.NewMinter(client, authority)
	pools, err := meteora.NewProvisioner(client, minter, authority)
	if err != nil {
		logrus.Fatal("Failed to create liquidity provisioner: ", err)
	}

	svc := launch.NewService(config.DB, verifier, ipfs.NewPublisher(ipfs.NewClient()), minter, pools)

	c := cron.New()
	_, err = c.AddFunc("@every 30s", func() {
		svc.ProcessDueJobs(context.Background())
	})
	if err != nil {
		logrus.Fatal("Failed to schedule liquidity job processor: ", err)
	}

	logrus.Info("Liquidity worker started, processing due jobs every 30s")
	c.Run()
}
