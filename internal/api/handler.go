package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"fleetguard-backend/internal/handoff"
	"fleetguard-backend/internal/shift"
	"fleetguard-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	shifts  *shift.Service
	handoff *handoff.Resolver
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, shifts *shift.Service, resolver *handoff.Resolver, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		shifts:  shifts,
		handoff: resolver,
		webpush: webpushOptions,
	}
}
