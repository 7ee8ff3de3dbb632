package handlers

// CreateTokenRequest is the wire format of a launch request. The payment is
// pre-submitted by the client; txSignature is its proof.
type CreateTokenRequest struct {
	UserWallet      string  `json:"user_wallet" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Symbol          string  `json:"symbol" binding:"required"`
	Supply          uint64  `json:"supply" binding:"required"`
	Description     string  `json:"description"`
	PlanType        string  `json:"planType" binding:"required"`
	AutoLiquidity   bool    `json:"autoLiquidity"`
	LiquiditySOL    float64 `json:"liquiditySOL"`
	LiquidityTokens float64 `json:"liquidityTokens"`
	Mintable        bool    `json:"mintable"`
	TxSignature     string  `json:"txSignature" binding:"required"`

	// Image is base64, optionally a data URL.
	Image     string `json:"image"`
	ImageName string `json:"imageName"`
}

// CreateTokenResponse is returned on a successful launch. MeteoraURL stays
// null for the delayed tier until background liquidity completes.
type CreateTokenResponse struct {
	Success     bool    `json:"success"`
	MintAddress string  `json:"mintAddress"`
	JupiterURL  string  `json:"jupiterUrl"`
	BirdeyeURL  string  `json:"birdeyeUrl"`
	MeteoraURL  *string `json:"meteoraUrl"`
	Message     string  `json:"message"`
}

// ErrorResponse is the failure envelope for all endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreateUserRequest registers a wallet explicitly.
type CreateUserRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// ContactRequest is a contact-form submission.
type ContactRequest struct {
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Description string `json:"description" binding:"required"`
}
