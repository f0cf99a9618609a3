package models

import (
	"time"
)

const (
	TopicAcquisition = "acquisition"
	TopicActivation  = "activation"
	TopicRetention   = "retention"
)

// Link maps a short alias to its destination URL. Clicks is only ever
// incremented by the visit recording path.
type Link struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	LongURL   string    `json:"long_url" gorm:"not null"`
	Alias     string    `json:"alias" gorm:"unique;not null"`
	Topic     string    `json:"topic" gorm:"default:acquisition;index"`
	Clicks    int       `json:"clicks" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidTopic(topic string) bool {
	switch topic {
	case TopicAcquisition, TopicActivation, TopicRetention:
		return true
	}
	return false
}
