// Package handoff computes the previous-shift summary shown to an incoming
// crew. A dispute of that summary is not persisted here: it rides into the
// next start-of-shift submission, keeping past shift records immutable.
package handoff

import (
	"context"
	"time"

	"fleetguard-backend/internal/model"
	"fleetguard-backend/internal/store"
)

// Summary is the read-only merge of the last end-of-shift report and the
// last damage-carrying check for one vehicle.
type Summary struct {
	LastCrew        *string            `json:"lastCrew"`
	FuelLevel       *string            `json:"fuelLevel"`
	Cleanliness     *model.Cleanliness `json:"cleanlinessDetails"`
	RestockNeeded   []string           `json:"restockNeeded"`
	HandoffNotes    *string            `json:"handoffNotes"`
	DamageSummary   *string            `json:"damageSummary"`
	AIDamageWarning *string            `json:"aiDamageWarning"`
	EndedAt         *time.Time         `json:"endedAt"`
}

// Resolver reads handoff summaries from the persistent store.
type Resolver struct {
	store store.Store
}

// NewResolver creates a handoff Resolver.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// GetHandoff returns the previous-shift summary for a vehicle, or nil when
// the vehicle has no end-of-shift report and no damage-carrying check.
// authUsername is the incoming crew's display name, used as the last-resort
// crew attribution.
func (r *Resolver) GetHandoff(ctx context.Context, vehicleID, authUsername string) (*Summary, error) {
	report, err := r.store.LatestEOSReport(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	check, err := r.store.LatestDamageCheck(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if report == nil && check == nil {
		return nil, nil
	}

	sum := &Summary{}
	if report != nil {
		if report.FuelLevel != "" {
			fuel := report.FuelLevel
			sum.FuelLevel = &fuel
		}
		clean := report.Cleanliness.Data()
		sum.Cleanliness = &clean
		sum.RestockNeeded = report.RestockNeeded
		sum.HandoffNotes = report.Notes
		endedAt := report.CreatedAt
		sum.EndedAt = &endedAt
	}
	if check != nil {
		sum.DamageSummary = check.DamageNotes
		sum.AIDamageWarning = check.SeverityNote
	}

	sum.LastCrew = pickCrew(report, check, authUsername)
	return sum, nil
}

// pickCrew prefers the explicit crew display on the newer record, then the
// older record, then the authenticated username.
func pickCrew(report *model.EOSReport, check *model.RigCheck, authUsername string) *string {
	type candidate struct {
		at   time.Time
		crew string
	}
	var candidates []candidate
	if report != nil && report.CrewDisplay != nil {
		candidates = append(candidates, candidate{report.CreatedAt, *report.CrewDisplay})
	}
	if check != nil {
		candidates = append(candidates, candidate{check.CreatedAt, check.CrewDisplay})
	}
	if len(candidates) == 2 && candidates[1].at.After(candidates[0].at) {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}
	for _, c := range candidates {
		if c.crew != "" {
			crew := c.crew
			return &crew
		}
	}
	if authUsername != "" {
		return &authUsername
	}
	return nil
}
