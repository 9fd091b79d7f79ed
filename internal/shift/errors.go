package shift

import "errors"

// Errors surfaced to the submitting crew. Collaborator and delivery
// degradation is deliberately not represented here: it is logged and
// absorbed, never shown to the submitter.
var (
	// ErrMissingVehicle rejects a submission with no vehicle id before any
	// state is touched.
	ErrMissingVehicle = errors.New("vehicle id is required")

	// ErrVehicleNotFound rejects a submission for an unknown vehicle.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrVehicleOutOfService rejects a shift start on a vehicle excluded
	// from assignment.
	ErrVehicleOutOfService = errors.New("vehicle is out of service")

	// ErrNoActiveShift rejects an end-of-shift submission when the vehicle
	// has no open shift.
	ErrNoActiveShift = errors.New("no active shift for this vehicle")

	// ErrShiftConflict reports that another crew transitioned the same
	// vehicle concurrently; the submission had no effect.
	ErrShiftConflict = errors.New("shift state changed concurrently, please retry")
)
