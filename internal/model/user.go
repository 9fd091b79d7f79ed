package model

import "time"

// Roles understood by the alert fan-out. Crews submit checks; managers and
// directors receive alerts.
const (
	RoleEMT      = "emt"
	RoleManager  = "manager"
	RoleDirector = "director"
)

// User is a crew member or manager. Authentication lives outside this
// service; the table exists so alert fan-out can resolve the manager set.
type User struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Username  string `gorm:"uniqueIndex;size:128;not null"`
	FullName  string `gorm:"size:256"`
	Role      string `gorm:"size:32;not null;default:emt"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
