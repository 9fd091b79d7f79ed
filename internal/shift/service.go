package shift

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fleetguard-backend/internal/model"
	"fleetguard-backend/internal/notification"
	"fleetguard-backend/internal/severity"
	"fleetguard-backend/internal/store"
)

// Alerter delivers one alert payload to all on-duty managers. Satisfied by
// notification.Notifier.
type Alerter interface {
	Notify(ctx context.Context, payload notification.Payload)
}

// Service is the shift lifecycle state machine. Every vehicle is either
// CLOSED (no open shift) or OPEN; all transitions run through here and are
// serialized per vehicle by the store's version-guarded transactions.
type Service struct {
	store      store.Store
	aggregator *severity.Aggregator
	alerter    Alerter
}

// NewService creates the shift lifecycle service.
func NewService(s store.Store, aggregator *severity.Aggregator, alerter Alerter) *Service {
	return &Service{store: s, aggregator: aggregator, alerter: alerter}
}

// StartShiftInput is one start-of-shift inspection submission.
type StartShiftInput struct {
	VehicleID    string
	CrewID       string
	CrewDisplay  string
	ItemStatuses map[string]any
	MissingItems []string
	DamageNotes  string
	Photo        *severity.Photo
	PhotoRef     string
	Disputed     bool
	DisputeNotes string
}

// EndShiftInput is one end-of-shift handoff submission.
type EndShiftInput struct {
	VehicleID        string
	CrewID           string
	FuelLevel        string
	Cleanliness      model.Cleanliness
	RestockNeeded    []string
	VehicleCondition string
	Notes            string
}

// StartShift scores the submission, persists the check, and transitions the
// vehicle to OPEN. When the result is alert-worthy the manager fan-out is
// awaited before returning, so the submitter knows notification was
// attempted. A vehicle that is already OPEN is auto-closed first with a
// synthetic handoff record attributed to the prior crew.
func (s *Service) StartShift(ctx context.Context, in StartShiftInput) (*model.RigCheck, error) {
	if in.VehicleID == "" {
		return nil, ErrMissingVehicle
	}

	v, err := s.loadVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if v.OutOfService {
		return nil, ErrVehicleOutOfService
	}

	now := time.Now().UTC()
	result := s.aggregator.Aggregate(ctx, severity.Input{
		MissingItems: in.MissingItems,
		Disputed:     in.Disputed,
		DisputeNotes: in.DisputeNotes,
		DamageNotes:  in.DamageNotes,
		Photo:        in.Photo,
	})

	check := &model.RigCheck{
		ID:              uuid.NewString(),
		VehicleID:       v.ID,
		CrewID:          in.CrewID,
		CrewDisplay:     in.CrewDisplay,
		ItemStatuses:    datatypes.JSONMap(in.ItemStatuses),
		MissingItems:    datatypes.JSONSlice[string](in.MissingItems),
		DamageNotes:     optional(in.DamageNotes),
		DamagePhotoRef:  optional(in.PhotoRef),
		HandoffDisputed: in.Disputed,
		Severity:        string(result.Level),
		SeverityNote:    optional(result.Note()),
		CreatedAt:       now,
	}
	if in.Disputed {
		check.HandoffDisputeNotes = optional(in.DisputeNotes)
	}

	var autoClose *model.EOSReport
	if v.ShiftOpen() {
		log.Printf("shift: vehicle %s already open since %s, auto-closing orphaned shift before new start",
			v.RigNumber, v.ShiftOpenSince.Format(time.RFC3339))
		autoClose = syntheticReport(v, in.CrewID, now,
			"Auto-closed: a new shift started before this one was handed off.")
	}

	if err := s.store.OpenShift(ctx, v, check, autoClose, now); err != nil {
		if errors.Is(err, store.ErrStaleVehicle) {
			return nil, ErrShiftConflict
		}
		return nil, fmt.Errorf("persist shift start: %w", err)
	}

	if alertWorthy(result.Level, in) {
		s.alerter.Notify(ctx, startAlert(in, result))
	}

	return check, nil
}

// EndShift records the handoff report and transitions the vehicle to
// CLOSED. The OPEN precondition is checked on read and enforced again by
// the transactional guard at write time. No alert fires on a normal end.
func (s *Service) EndShift(ctx context.Context, in EndShiftInput) (*model.EOSReport, error) {
	if in.VehicleID == "" {
		return nil, ErrMissingVehicle
	}

	v, err := s.loadVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if !v.ShiftOpen() {
		return nil, ErrNoActiveShift
	}

	report := &model.EOSReport{
		ID:               uuid.NewString(),
		VehicleID:        v.ID,
		CrewID:           in.CrewID,
		FuelLevel:        in.FuelLevel,
		Cleanliness:      datatypes.NewJSONType(in.Cleanliness),
		RestockNeeded:    datatypes.JSONSlice[string](in.RestockNeeded),
		VehicleCondition: optional(in.VehicleCondition),
		Notes:            optional(in.Notes),
		CrewDisplay:      v.ShiftCrewDisplay,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.store.CloseShift(ctx, v, report); err != nil {
		if errors.Is(err, store.ErrStaleVehicle) {
			return nil, ErrShiftConflict
		}
		return nil, fmt.Errorf("persist shift end: %w", err)
	}
	return report, nil
}

// ForceEndShift lets a manager terminate a vehicle's open shift without the
// crew. A no-op when the vehicle is CLOSED. The synthetic report is
// attributed to the crew that held the shift, not the acting manager, and
// managers are alerted that the shift was forced closed.
func (s *Service) ForceEndShift(ctx context.Context, vehicleID, actingManagerID string) (*model.EOSReport, error) {
	if vehicleID == "" {
		return nil, ErrMissingVehicle
	}

	v, err := s.loadVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.ShiftOpen() {
		return nil, nil
	}

	now := time.Now().UTC()
	report := syntheticReport(v, actingManagerID, now, "Shift force-ended by manager.")

	if err := s.store.CloseShift(ctx, v, report); err != nil {
		if errors.Is(err, store.ErrStaleVehicle) {
			return nil, ErrShiftConflict
		}
		return nil, fmt.Errorf("persist forced shift end: %w", err)
	}

	s.alerter.Notify(ctx, notification.Payload{
		Title: alertTitle(severity.Yellow),
		Body:  fmt.Sprintf("Shift on %s was force-ended by a manager.", v.RigNumber),
		URL:   alertTargetPath,
	})
	return report, nil
}

func (s *Service) loadVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	v, err := s.store.GetVehicle(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load vehicle: %w", err)
	}
	return v, nil
}

// syntheticReport builds the sentinel end-of-shift record written when a
// shift is terminated without the crew's own handoff. The crew display is
// read from the vehicle immediately before the shift fields are cleared.
func syntheticReport(v *model.Vehicle, crewID string, now time.Time, note string) *model.EOSReport {
	return &model.EOSReport{
		ID:          uuid.NewString(),
		VehicleID:   v.ID,
		CrewID:      crewID,
		FuelLevel:   model.FuelEmpty,
		Notes:       &note,
		CrewDisplay: v.ShiftCrewDisplay,
		CreatedAt:   now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
