package models

import "time"

// User is created lazily the first time a wallet interacts with the service.
// The wallet address is the identity and never changes after creation.
type User struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	WalletAddress string    `gorm:"size:64;uniqueIndex;not null" json:"wallet_address"`
	Tokens        []Token   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
