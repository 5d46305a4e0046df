package location

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/observability/telemetry"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

// positionTTL bounds how long a cached position is served after the device
// goes quiet.
const positionTTL = 5 * time.Minute

// Broadcaster pushes live position frames to connected clients.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Service ingests raw GPS fixes from onboard devices: it persists the fix,
// caches the latest position per device, runs the geofence evaluation for
// the device's driver and streams the position to dashboards.
type Service struct {
	devices  ports.DeviceRepository
	drivers  ports.DriverRepository
	routes   ports.RouteRepository
	geofence ports.GeofenceService
	cache    ports.Cache
	hub      Broadcaster
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	devices ports.DeviceRepository,
	drivers ports.DriverRepository,
	routes ports.RouteRepository,
	geofence ports.GeofenceService,
	cache ports.Cache,
	hub Broadcaster,
	log *zap.Logger,
) *Service {
	return &Service{
		devices:  devices,
		drivers:  drivers,
		routes:   routes,
		geofence: geofence,
		cache:    cache,
		hub:      hub,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) RecordLocation(ctx context.Context, deviceID uint, lat, lng float64) (*ports.LocationResult, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, domain.E(domain.CodeValidation, "coordinates out of range")
	}

	device, err := s.devices.FindByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, domain.E(domain.CodeNotFound, "device not found")
	}

	loc := &domain.DeviceLocation{
		DeviceID:  deviceID,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: s.now(),
	}
	if err := s.devices.SaveLocation(ctx, loc); err != nil {
		return nil, err
	}
	telemetry.LocationUpdatesTotal.Inc()

	driver, err := s.drivers.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, domain.E(domain.CodeNotFound, "device is not assigned to a driver")
	}
	if driver.AssignedRouteID == nil {
		return nil, domain.E(domain.CodeValidation, "driver has no assigned route")
	}

	route, err := s.routes.FindByID(ctx, *driver.AssignedRouteID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, domain.E(domain.CodeNotFound, "assigned route not found")
	}

	transition, err := s.geofence.HandlePosition(ctx, driver, route.Stops, lat, lng)
	if err != nil {
		return nil, err
	}

	s.cachePosition(ctx, deviceID, loc, transition.NowInZone)
	s.broadcastPosition(driver, loc, transition.NowInZone)

	return &ports.LocationResult{LocationID: loc.ID, InZone: transition.NowInZone}, nil
}

// LatestPosition serves the cached position when present, falling back to
// storage for devices whose cache entry expired.
func (s *Service) LatestPosition(ctx context.Context, deviceID uint) (*domain.DeviceLocation, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, positionKey(deviceID)); err == nil && raw != "" {
			var cached struct {
				Latitude  float64   `json:"lat"`
				Longitude float64   `json:"lng"`
				Timestamp time.Time `json:"ts"`
			}
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &domain.DeviceLocation{
					DeviceID:  deviceID,
					Latitude:  cached.Latitude,
					Longitude: cached.Longitude,
					Timestamp: cached.Timestamp,
				}, nil
			}
		}
	}

	loc, err := s.devices.LatestLocation(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.E(domain.CodeNotFound, "no location recorded for device")
	}
	return loc, nil
}

func (s *Service) cachePosition(ctx context.Context, deviceID uint, loc *domain.DeviceLocation, inZone bool) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"lat":     loc.Latitude,
		"lng":     loc.Longitude,
		"ts":      loc.Timestamp,
		"in_zone": inZone,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, positionKey(deviceID), string(payload), positionTTL); err != nil {
		s.log.Warn("failed to cache position", zap.Uint("device_id", deviceID), zap.Error(err))
	}
}

func (s *Service) broadcastPosition(driver *domain.Driver, loc *domain.DeviceLocation, inZone bool) {
	if s.hub == nil {
		return
	}
	frame, err := json.Marshal(map[string]interface{}{
		"type":      "position",
		"device_id": loc.DeviceID,
		"driver_id": driver.ID,
		"lat":       loc.Latitude,
		"lng":       loc.Longitude,
		"in_zone":   inZone,
		"ts":        loc.Timestamp,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast(frame)
}

func positionKey(deviceID uint) string {
	return fmt.Sprintf("device:position:%d", deviceID)
}
