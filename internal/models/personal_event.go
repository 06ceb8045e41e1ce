package models

import "time"

type PersonalEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OwnerID     string    `json:"owner_id" gorm:"not null;size:255;index"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	Description *string   `json:"description" gorm:"type:text"`
	StartAt     time.Time `json:"start_at" gorm:"not null;index"`
	EndAt       time.Time `json:"end_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (PersonalEvent) TableName() string {
	return "personal_events"
}
