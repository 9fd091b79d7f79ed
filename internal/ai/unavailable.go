package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"fleetguard-backend/internal/severity"
)

// ErrDisabled is returned by Unavailable; the severity aggregator turns it
// into the documented fallback classification.
var ErrDisabled = errors.New("ai collaborator is not configured")

// Unavailable is the collaborator used when no API key is configured. Every
// call fails, which degrades severity scoring to its fixed fallbacks
// without aborting any operation.
type Unavailable struct{}

func (Unavailable) Classify(context.Context, string, *severity.Photo) (severity.Level, string, error) {
	return "", "", ErrDisabled
}

func (Unavailable) Summarize(context.Context, string) (string, error) {
	return "", ErrDisabled
}

func errAsAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return genai.APIError{}, false
}
