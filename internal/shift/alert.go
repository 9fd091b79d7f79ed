package shift

import (
	"strings"

	"fleetguard-backend/internal/notification"
	"fleetguard-backend/internal/severity"
)

const alertTargetPath = "/dashboard"

// alertWorthy decides whether a start-of-shift submission notifies
// managers: elevated severity, missing equipment, written damage, or a
// handoff dispute all qualify.
func alertWorthy(level severity.Level, in StartShiftInput) bool {
	return level == severity.Yellow || level == severity.Red ||
		len(in.MissingItems) > 0 ||
		strings.TrimSpace(in.DamageNotes) != "" ||
		in.Disputed
}

func alertTitle(level severity.Level) string {
	if level == severity.Red {
		return "🚨 CRITICAL: FleetGuard Alert"
	}
	return "⚠️ FleetGuard Alert"
}

// startAlert builds the manager alert for a start-of-shift submission. The
// body prefers the composed severity note, then raw damage notes, then a
// generic missing-items line.
func startAlert(in StartShiftInput, result severity.Result) notification.Payload {
	crew := in.CrewDisplay
	if crew == "" {
		crew = "Crew"
	}

	body := result.Note()
	if body == "" {
		if strings.TrimSpace(in.DamageNotes) != "" {
			body = in.DamageNotes
		} else {
			body = "Missing items flagged."
		}
	}

	return notification.Payload{
		Title: alertTitle(result.Level),
		Body:  crew + ": " + body,
		URL:   alertTargetPath,
	}
}
