package severity

import (
	"context"
	"log"
	"strings"
)

// FallbackNote is recorded when the damage classifier cannot be reached.
const FallbackNote = "AI analysis unavailable — manually flagged for dispatcher review."

// disputeFallbackLimit bounds the verbatim dispute text used when the
// summarizer is unavailable.
const disputeFallbackLimit = 160

// Photo is an attached damage photo, passed through to the classifier.
type Photo struct {
	Data []byte
	MIME string
}

// DamageClassifier scores free-text damage reports and/or photo evidence.
type DamageClassifier interface {
	Classify(ctx context.Context, notes string, photo *Photo) (Level, string, error)
}

// DisputeSummarizer condenses free-text dispute notes into a short sentence.
type DisputeSummarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Input carries every independent severity signal from one start-of-shift
// submission.
type Input struct {
	MissingItems []string
	Disputed     bool
	DisputeNotes string
	DamageNotes  string
	Photo        *Photo
}

// HasDamage reports whether any damage evidence was submitted.
func (in Input) HasDamage() bool {
	return strings.TrimSpace(in.DamageNotes) != "" || in.Photo != nil
}

// Aggregator merges severity signals into one level and composed note.
// The merge policy itself is deterministic; only the collaborators are not.
type Aggregator struct {
	classifier DamageClassifier
	summarizer DisputeSummarizer
}

// NewAggregator creates an Aggregator over the given collaborators.
func NewAggregator(classifier DamageClassifier, summarizer DisputeSummarizer) *Aggregator {
	return &Aggregator{classifier: classifier, summarizer: summarizer}
}

// Aggregate applies the merge policy. Signals may only raise the level,
// never lower it; note segments append in signal order. Collaborator
// failures degrade to fixed fallbacks and never produce an error.
func (a *Aggregator) Aggregate(ctx context.Context, in Input) Result {
	res := Result{Level: Green}

	if len(in.MissingItems) > 0 {
		res.Level = Max(res.Level, Yellow)
		res.Segments = append(res.Segments, Segment{
			Kind: SegmentMissingItems,
			Text: "Missing equipment: " + strings.Join(in.MissingItems, ", "),
		})
	}

	if in.Disputed {
		res.Level = Max(res.Level, Yellow)
		res.Segments = append(res.Segments, Segment{
			Kind: SegmentDispute,
			Text: a.disputeText(ctx, in.DisputeNotes),
		})
	}

	if in.HasDamage() {
		level, note, err := a.classifier.Classify(ctx, in.DamageNotes, in.Photo)
		if err != nil {
			// Absence of automated scoring must never suppress an
			// alert-worthy event.
			log.Printf("severity: damage classifier degraded: %v", err)
			level, note = Yellow, FallbackNote
		}
		res.Level = Max(res.Level, level)
		if note != "" {
			res.Segments = append(res.Segments, Segment{Kind: SegmentDamage, Text: note})
		}
	}

	return res
}

func (a *Aggregator) disputeText(ctx context.Context, notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return "Handoff disputed by incoming crew."
	}
	summary, err := a.summarizer.Summarize(ctx, notes)
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			log.Printf("severity: dispute summarizer degraded: %v", err)
		}
		return truncate(notes, disputeFallbackLimit)
	}
	return strings.TrimSpace(summary)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
