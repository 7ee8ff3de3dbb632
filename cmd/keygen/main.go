package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	launchsolana "launchtrade/pkg/solana"
)

// Generates a fresh service authority key pair and saves it as an encrypted
// keystore entry. The printed address goes into SOLANA_KEYSTORE_ADDRESS; the
// password used here goes into SOLANA_KEYSTORE_PASSWORD.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	password := os.Getenv("SOLANA_KEYSTORE_PASSWORD")
	if password == "" {
		log.Fatal("SOLANA_KEYSTORE_PASSWORD is required")
	}

	km := launchsolana.NewKeyManager()
	account, err := km.GenerateKeyPair()
	if err != nil {
		log.Fatal("Failed to generate key pair: ", err)
	}

	if err := km.SaveKeyStoreEntry(account, password); err != nil {
		log.Fatal("Failed to save keystore entry: ", err)
	}

	log.Printf("Keystore entry saved for address %s", account.PublicKey.ToBase58())
}
