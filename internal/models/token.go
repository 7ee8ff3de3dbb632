package models

import "time"

// Launch states persisted in Token.LaunchState. A row only exists once the
// mint has succeeded, so the persisted value is one of the terminal states;
// the earlier states live on the in-flight launch and show up in logs.
const (
	LaunchStateValidating         = "validating"
	LaunchStatePaymentVerifying   = "payment_verifying"
	LaunchStateMinting            = "minting"
	LaunchStateMetadataPublishing = "metadata_publishing"
	LaunchStateLiquidityImmediate = "liquidity_immediate"
	LaunchStateLiquidityPending   = "liquidity_pending"
	LaunchStateLiquiditySkipped   = "liquidity_skipped"
	LaunchStatePersisted          = "persisted"
)

// Token is one row per completed or in-progress launch. The unique indexes
// on symbol, mint_address and payment_signature are the idempotency guards:
// a replayed request loses the race at the constraint, not in application
// code.
type Token struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name        string `gorm:"size:64;not null" json:"name"`
	Symbol      string `gorm:"size:16;uniqueIndex;not null" json:"symbol"`
	Supply      uint64 `gorm:"not null" json:"supply"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:255" json:"image_url"`
	MetadataURI string `gorm:"size:255" json:"metadata_uri"`
	MintAddress string `gorm:"size:64;uniqueIndex;not null" json:"mint_address"`
	Mintable    bool   `gorm:"default:false" json:"mintable"`
	LaunchState string `gorm:"size:32;not null" json:"launch_state"`

	// Payment accounting, amounts in SOL.
	CommissionPaid   bool    `gorm:"default:false" json:"commission_paid"`
	CommissionAmount float64 `gorm:"not null;default:0" json:"commission_amount"`
	AdminPaid        bool    `gorm:"default:false" json:"admin_paid"`
	AdminAmount      float64 `gorm:"not null;default:0" json:"admin_amount"`
	TotalFeePaid     float64 `gorm:"not null;default:0" json:"total_fee_paid_by_user"`
	PaymentSignature string  `gorm:"size:128;uniqueIndex;not null" json:"payment_signature"`
	PlanType         string  `gorm:"size:16;not null" json:"plan_type"`

	// Liquidity sub-state. LiquidityAdded stays false while a delayed pool
	// is pending; the worker flips it in place on the same row.
	AutoLiquidity         bool       `gorm:"default:false" json:"auto_liquidity"`
	InitialLiquidityToken float64    `gorm:"default:0" json:"initial_liquidity_token"`
	InitialLiquiditySOL   float64    `gorm:"default:0" json:"initial_liquidity_sol"`
	LiquidityAdded        bool       `gorm:"default:false" json:"liquidity_added"`
	CooldownApplied       bool       `gorm:"default:false" json:"cooldown_applied"`
	CooldownTimestamp     *time.Time `json:"cooldown_timestamp"`
	LiquidityAddedAt      *time.Time `json:"liquidity_added_at"`
	JupiterURL            *string    `gorm:"size:255" json:"jupiter_url"`
	BirdeyeURL            *string    `gorm:"size:255" json:"birdeye_url"`
	MeteoraURL            *string    `gorm:"size:255" json:"meteora_url"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Token) TableName() string {
	return "tokens"
}
