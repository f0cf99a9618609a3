package models

import (
	"time"
)

// Visit is one recorded redirect. Rows are immutable once written.
type Visit struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	LinkID     uint      `json:"link_id" gorm:"not null;index:idx_visits_link_ts"`
	Timestamp  time.Time `json:"timestamp" gorm:"index:idx_visits_link_ts"`
	IPAddress  string    `json:"ip_address" gorm:"not null"`
	UserAgent  string    `json:"user_agent"`
	Country    string    `json:"country"`
	City       string    `json:"city"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	OSType     string    `json:"os_type"`
	DeviceType string    `json:"device_type"`
}

// VisitEvent is what the redirect handler hands to the background
// workers; everything derived (geo, OS, device) is filled in later so
// the hot path stays cheap.
type VisitEvent struct {
	Alias     string
	IPAddress string
	UserAgent string
	Timestamp time.Time
}
