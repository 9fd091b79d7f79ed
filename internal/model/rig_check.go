package model

import (
	"time"

	"gorm.io/datatypes"
)

// RigCheck is the start-of-shift inspection record. It is an append-only
// fact: the severity fields are computed once, before the row is written,
// and never change afterwards.
type RigCheck struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	VehicleID   string `gorm:"type:uuid;index;not null"`
	CrewID      string `gorm:"type:uuid"`
	CrewDisplay string `gorm:"size:256"`

	ItemStatuses datatypes.JSONMap
	MissingItems datatypes.JSONSlice[string]

	DamageNotes    *string
	DamagePhotoRef *string `gorm:"size:512"`

	HandoffDisputed     bool
	HandoffDisputeNotes *string

	Severity     string `gorm:"size:16;not null"`
	SeverityNote *string

	CreatedAt time.Time `gorm:"index;not null"`
}
