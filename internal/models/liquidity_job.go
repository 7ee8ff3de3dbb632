package models

import "time"

// LiquidityJob statuses. A job moves pending -> running -> completed|failed
// and is never retried automatically; a failed job leaves its token row in
// the liquidity-pending state for manual follow-up.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// LiquidityJob is the durable record of a scheduled delayed-liquidity
// continuation. It replaces an in-process timer so a pending pool survives a
// restart. One job per mint; the worker claims it with a guarded status
// transition so it executes at most once.
type LiquidityJob struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	MintAddress  string    `gorm:"size:64;uniqueIndex;not null" json:"mint_address"`
	ScheduledFor time.Time `gorm:"not null;index" json:"scheduled_for"`
	Status       string    `gorm:"size:16;not null;default:pending;index" json:"status"`
	LastError    string    `gorm:"type:text" json:"last_error"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LiquidityJob) TableName() string {
	return "liquidity_jobs"
}
