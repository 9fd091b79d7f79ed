package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetguard-backend/internal/model"
)

// ErrStaleVehicle is returned when a shift transition loses the optimistic
// concurrency race: the vehicle's shift state changed between read and
// write, and the whole transaction was rolled back.
var ErrStaleVehicle = errors.New("vehicle shift state changed concurrently")

// VehicleStatus is a vehicle plus the note from its most recent check, as
// shown on the dispatcher dashboard.
type VehicleStatus struct {
	model.Vehicle
	LatestNote *string `json:"latest_note"`
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	GetVehicle(ctx context.Context, id string) (*model.Vehicle, error)
	ListVehicles(ctx context.Context) ([]VehicleStatus, error)
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	SetVehicleService(ctx context.Context, id string, outOfService bool) error

	// OpenShift persists a start-of-shift check and transitions the vehicle
	// to OPEN in a single transaction guarded by v's ShiftVersion. A non-nil
	// autoClose record is written first to settle an orphaned open shift.
	OpenShift(ctx context.Context, v *model.Vehicle, check *model.RigCheck, autoClose *model.EOSReport, now time.Time) error

	// CloseShift persists an end-of-shift report and clears the vehicle's
	// shift fields in a single transaction guarded by v's ShiftVersion.
	CloseShift(ctx context.Context, v *model.Vehicle, report *model.EOSReport) error

	LatestEOSReport(ctx context.Context, vehicleID string) (*model.EOSReport, error)
	LatestDamageCheck(ctx context.Context, vehicleID string) (*model.RigCheck, error)

	ManagerIDs(ctx context.Context) ([]string, error)
	SubscriptionsForUsers(ctx context.Context, userIDs []string) ([]model.PushSubscription, error)
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *gormStore) ListVehicles(ctx context.Context) ([]VehicleStatus, error) {
	var vehicles []model.Vehicle
	if err := s.db.WithContext(ctx).Order("rig_number").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	var checks []model.RigCheck
	if err := s.db.WithContext(ctx).
		Select("vehicle_id", "severity_note", "created_at").
		Order("created_at DESC").
		Find(&checks).Error; err != nil {
		return nil, fmt.Errorf("failed to load latest checks: %w", err)
	}

	latestNotes := make(map[string]*string, len(vehicles))
	for _, c := range checks {
		if _, seen := latestNotes[c.VehicleID]; !seen {
			latestNotes[c.VehicleID] = c.SeverityNote
		}
	}

	statuses := make([]VehicleStatus, len(vehicles))
	for i, v := range vehicles {
		statuses[i] = VehicleStatus{Vehicle: v, LatestNote: latestNotes[v.ID]}
	}
	return statuses, nil
}

func (s *gormStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	return s.db.WithContext(ctx).Create(v).Error
}

func (s *gormStore) SetVehicleService(ctx context.Context, id string, outOfService bool) error {
	res := s.db.WithContext(ctx).Model(&model.Vehicle{}).
		Where("id = ?", id).
		Update("out_of_service", outOfService)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *gormStore) OpenShift(ctx context.Context, v *model.Vehicle, check *model.RigCheck, autoClose *model.EOSReport, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if autoClose != nil {
			if err := tx.Create(autoClose).Error; err != nil {
				return fmt.Errorf("failed to auto-close orphaned shift for vehicle %s: %w", v.ID, err)
			}
		}

		if err := tx.Create(check).Error; err != nil {
			return fmt.Errorf("failed to create rig check for vehicle %s: %w", v.ID, err)
		}

		res := tx.Model(&model.Vehicle{}).
			Where("id = ? AND shift_version = ?", v.ID, v.ShiftVersion).
			Updates(map[string]any{
				"shift_open_since":   now,
				"shift_crew_display": check.CrewDisplay,
				"opening_check_id":   check.ID,
				"last_checked_at":    now,
				"base_status":        check.Severity,
				"shift_version":      v.ShiftVersion + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to open shift for vehicle %s: %w", v.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleVehicle
		}
		return nil
	})
}

func (s *gormStore) CloseShift(ctx context.Context, v *model.Vehicle, report *model.EOSReport) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("failed to create end-of-shift report for vehicle %s: %w", v.ID, err)
		}

		// shift_open_since IS NOT NULL keeps a racing double-close from
		// slipping past a stale read.
		res := tx.Model(&model.Vehicle{}).
			Where("id = ? AND shift_version = ? AND shift_open_since IS NOT NULL", v.ID, v.ShiftVersion).
			Updates(map[string]any{
				"shift_open_since":   nil,
				"shift_crew_display": nil,
				"opening_check_id":   nil,
				"shift_version":      v.ShiftVersion + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close shift for vehicle %s: %w", v.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleVehicle
		}
		return nil
	})
}

func (s *gormStore) LatestEOSReport(ctx context.Context, vehicleID string) (*model.EOSReport, error) {
	var report model.EOSReport
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *gormStore) LatestDamageCheck(ctx context.Context, vehicleID string) (*model.RigCheck, error) {
	var check model.RigCheck
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ? AND damage_notes IS NOT NULL AND damage_notes <> ''", vehicleID).
		Order("created_at DESC").
		First(&check).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

func (s *gormStore) ManagerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("role IN ?", []string{model.RoleManager, model.RoleDirector}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *gormStore) SubscriptionsForUsers(ctx context.Context, userIDs []string) ([]model.PushSubscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}
