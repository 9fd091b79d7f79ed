package severity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeClassifier struct {
	level  Level
	note   string
	err    error
	called bool
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, _ *Photo) (Level, string, error) {
	f.called = true
	return f.level, f.note, f.err
}

type fakeSummarizer struct {
	out string
	err error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	return f.out, f.err
}

func TestAggregate_NoSignalsIsGreen(t *testing.T) {
	agg := NewAggregator(&fakeClassifier{}, &fakeSummarizer{})

	res := agg.Aggregate(context.Background(), Input{})

	assert.Equal(t, Green, res.Level)
	assert.Empty(t, res.Segments)
	assert.Equal(t, "", res.Note())
}

func TestAggregate_MissingItemsRaiseToYellow(t *testing.T) {
	classifier := &fakeClassifier{}
	agg := NewAggregator(classifier, &fakeSummarizer{})

	res := agg.Aggregate(context.Background(), Input{MissingItems: []string{"O2 tank", "AED pads"}})

	assert.Equal(t, Yellow, res.Level)
	assert.Equal(t, "Missing equipment: O2 tank, AED pads", res.Note())
	assert.False(t, classifier.called, "no damage submitted, classifier must not run")
}

func TestAggregate_DisputeAppendsWithoutLoweringSeverity(t *testing.T) {
	agg := NewAggregator(&fakeClassifier{}, &fakeSummarizer{out: "Crew disputes cleanliness."})

	res := agg.Aggregate(context.Background(), Input{
		MissingItems: []string{"O2 tank"},
		Disputed:     true,
		DisputeNotes: "the rig was filthy when we got it",
	})

	assert.Equal(t, Yellow, res.Level)
	assert.Len(t, res.Segments, 2)
	assert.Equal(t, SegmentMissingItems, res.Segments[0].Kind)
	assert.Equal(t, SegmentDispute, res.Segments[1].Kind)
	assert.Equal(t, "Missing equipment: O2 tank | Crew disputes cleanliness.", res.Note())
}

func TestAggregate_DisputeSummarizerFallsBackToVerbatim(t *testing.T) {
	agg := NewAggregator(&fakeClassifier{}, &fakeSummarizer{err: errors.New("timeout")})

	res := agg.Aggregate(context.Background(), Input{
		Disputed:     true,
		DisputeNotes: "oxygen was not restocked",
	})

	assert.Equal(t, Yellow, res.Level)
	assert.Equal(t, "oxygen was not restocked", res.Note())
}

func TestAggregate_LongDisputeFallbackIsTruncated(t *testing.T) {
	long := strings.Repeat("x", 400)
	agg := NewAggregator(&fakeClassifier{}, &fakeSummarizer{err: errors.New("down")})

	res := agg.Aggregate(context.Background(), Input{Disputed: true, DisputeNotes: long})

	assert.Less(t, len([]rune(res.Note())), 400)
}

func TestAggregate_DisputeWithoutNotes(t *testing.T) {
	agg := NewAggregator(&fakeClassifier{}, &fakeSummarizer{})

	res := agg.Aggregate(context.Background(), Input{Disputed: true})

	assert.Equal(t, Yellow, res.Level)
	assert.Equal(t, "Handoff disputed by incoming crew.", res.Note())
}

func TestAggregate_DamageClassifierRaisesToRed(t *testing.T) {
	agg := NewAggregator(&fakeClassifier{level: Red, note: "Cracked windshield."}, &fakeSummarizer{})

	res := agg.Aggregate(context.Background(), Input{
		MissingItems: []string{"O2 tank"},
		DamageNotes:  "windshield is cracked",
	})

	assert.Equal(t, Red, res.Level)
	assert.Equal(t, "Missing equipment: O2 tank | Cracked windshield.", res.Note())
}

func TestAggregate_GreenClassifierNeverLowersMissingItemSeverity(t *testing.T) {
	agg := NewAggregator(&fakeClassifier{level: Green, note: "Normal wear."}, &fakeSummarizer{})

	res := agg.Aggregate(context.Background(), Input{
		MissingItems: []string{"O2 tank"},
		DamageNotes:  "scuff on rear bumper",
	})

	assert.Equal(t, Yellow, res.Level)
}

func TestAggregate_ClassifierFailureFallsBackToYellow(t *testing.T) {
	agg := NewAggregator(&fakeClassifier{err: errors.New("unreachable")}, &fakeSummarizer{})

	res := agg.Aggregate(context.Background(), Input{DamageNotes: "dent in door"})

	assert.Equal(t, Yellow, res.Level)
	assert.Equal(t, FallbackNote, res.Note())
}

func TestAggregate_PhotoOnlyWithUnreachableClassifierIsNeverGreen(t *testing.T) {
	agg := NewAggregator(&fakeClassifier{err: errors.New("unreachable")}, &fakeSummarizer{})

	res := agg.Aggregate(context.Background(), Input{
		Photo: &Photo{Data: []byte{0xff, 0xd8}, MIME: "image/jpeg"},
	})

	assert.Equal(t, Yellow, res.Level)
	assert.Contains(t, res.Note(), "AI analysis unavailable")
}

func TestMax(t *testing.T) {
	assert.Equal(t, Yellow, Max(Green, Yellow))
	assert.Equal(t, Red, Max(Red, Yellow))
	assert.Equal(t, Green, Max(Green, Green))
	assert.Equal(t, Red, Max(Yellow, Red))
}
