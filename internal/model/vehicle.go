package model

import "time"

// Vehicle is a rig moving through repeating shift cycles. The shift fields
// (ShiftOpenSince, ShiftCrewDisplay, OpeningCheckID) are owned exclusively
// by the shift lifecycle service and are only written inside a transaction
// guarded by ShiftVersion.
type Vehicle struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	RigNumber    string `gorm:"uniqueIndex;size:64;not null"`
	BaseStatus   string `gorm:"size:16;not null;default:green"`
	OutOfService bool   `gorm:"not null;default:false"`

	LastCheckedAt    *time.Time
	ShiftOpenSince   *time.Time
	ShiftCrewDisplay *string `gorm:"size:256"`
	OpeningCheckID   *string `gorm:"type:uuid"`

	// ShiftVersion increments on every shift transition. A conditional
	// update on this column serializes writers per vehicle.
	ShiftVersion int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShiftOpen reports whether the vehicle currently has an open shift.
func (v *Vehicle) ShiftOpen() bool {
	return v.ShiftOpenSince != nil
}
