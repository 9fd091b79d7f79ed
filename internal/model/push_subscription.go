package model

import "time"

// PushSubscription holds a browser push subscription for one user. Unique
// per endpoint; deleted on opt-out or when delivery reports the endpoint
// permanently gone.
type PushSubscription struct {
	Endpoint  string `gorm:"primaryKey"`
	UserID    string `gorm:"type:uuid;index;not null"`
	P256DH    string `gorm:"column:p256dh;not null"`
	Auth      string `gorm:"not null"`
	CreatedAt time.Time
}
