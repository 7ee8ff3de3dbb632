package models

import "time"

// ContactMessage stores contact-form submissions.
type ContactMessage struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Email       string    `gorm:"size:128;not null" json:"email"`
	Phone       string    `gorm:"size:32;not null" json:"phone"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}
