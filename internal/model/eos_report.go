package model

import (
	"time"

	"gorm.io/datatypes"
)

// Fuel levels reported on an end-of-shift handoff. FuelEmpty doubles as the
// sentinel written by a forced shift termination.
const (
	FuelEmpty         = "empty"
	FuelQuarter       = "quarter"
	FuelHalf          = "half"
	FuelThreeQuarters = "three_quarters"
	FuelFull          = "full"
)

// Cleanliness holds the structured end-of-shift cleanliness flags.
type Cleanliness struct {
	Cab     bool `json:"cab"`
	Patient bool `json:"patient"`
	Trash   bool `json:"trash"`
}

// EOSReport is the end-of-shift handoff record. CrewDisplay is copied from
// the vehicle's open shift at close time so the handoff keeps showing the
// outgoing crew even after the vehicle's shift fields are cleared.
type EOSReport struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	VehicleID string `gorm:"type:uuid;index;not null"`
	CrewID    string `gorm:"type:uuid"`

	FuelLevel     string `gorm:"size:32"`
	Cleanliness   datatypes.JSONType[Cleanliness]
	RestockNeeded datatypes.JSONSlice[string]

	VehicleCondition *string
	Notes            *string
	CrewDisplay      *string `gorm:"size:256"`

	CreatedAt time.Time `gorm:"index;not null"`
}
