package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleetguard-backend/config"
	"fleetguard-backend/internal/handoff"
	"fleetguard-backend/internal/mw"
	"fleetguard-backend/internal/shift"
	"fleetguard-backend/internal/store"
)

// NewRouter creates and configures a new Gin router exposing the shift
// lifecycle, handoff, vehicle, and subscription endpoints.
func NewRouter(cfg *config.ServerConfig, s store.Store, shifts *shift.Service, resolver *handoff.Resolver, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, shifts, resolver, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/shifts/start", handler.StartShift)
		api.POST("/shifts/end", handler.EndShift)
		api.POST("/shifts/force-end", handler.ForceEndShift)

		api.GET("/vehicles", caching, handler.GetVehicles)
		api.POST("/vehicles", handler.CreateVehicle)
		api.PATCH("/vehicles/:vehicle_id/service", handler.SetVehicleService)
		api.GET("/vehicles/:vehicle_id/handoff", caching, handler.GetHandoff)

		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
