package utils

import "fmt"

// Marketplace URL builders for a launched mint.

func JupiterURL(mint string) string {
	return fmt.Sprintf("https://jup.ag/swap/SOL-%s", mint)
}

func BirdeyeURL(mint string) string {
	return fmt.Sprintf("https://birdeye.so/token/%s?chain=solana", mint)
}

func MeteoraPoolURL(pool string) string {
	return fmt.Sprintf("https://app.meteora.ag/pools/%s", pool)
}
