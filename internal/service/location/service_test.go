package location

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/mocks"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type captureBroadcaster struct {
	frames [][]byte
}

func (b *captureBroadcaster) Broadcast(message []byte) {
	b.frames = append(b.frames, message)
}

type fixture struct {
	devices  *mocks.MockDeviceRepository
	drivers  *mocks.MockDriverRepository
	routes   *mocks.MockRouteRepository
	geofence *mocks.MockGeofenceService
	cache    *mocks.MockCache
	hub      *captureBroadcaster
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		devices:  &mocks.MockDeviceRepository{},
		drivers:  &mocks.MockDriverRepository{},
		routes:   &mocks.MockRouteRepository{},
		geofence: &mocks.MockGeofenceService{},
		cache:    &mocks.MockCache{},
		hub:      &captureBroadcaster{},
	}
	f.svc = NewService(f.devices, f.drivers, f.routes, f.geofence, f.cache, f.hub, zap.NewNop())
	return f
}

func (f *fixture) seed() {
	routeID := uint(8)
	f.devices.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Device, error) {
		return &domain.Device{ID: id, Name: "validator-1"}, nil
	}
	f.drivers.FindByDeviceIDFunc = func(ctx context.Context, deviceID uint) (*domain.Driver, error) {
		return &domain.Driver{ID: 3, AssignedRouteID: &routeID}, nil
	}
	f.routes.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Route, error) {
		return &domain.Route{ID: id, Stops: []domain.Stop{
			{Name: "stop", MinLat: 30.00, MinLng: 31.00, MaxLat: 30.10, MaxLng: 31.10},
		}}, nil
	}
}

func TestRecordLocation(t *testing.T) {
	f := newFixture()
	f.seed()
	f.geofence.HandlePositionFunc = func(ctx context.Context, driver *domain.Driver, stops []domain.Stop, lat, lng float64) (*ports.ZoneTransition, error) {
		return &ports.ZoneTransition{WasInZone: false, NowInZone: true}, nil
	}
	var saved *domain.DeviceLocation
	f.devices.SaveLocationFunc = func(ctx context.Context, l *domain.DeviceLocation) error {
		l.ID = 101
		saved = l
		return nil
	}
	var cachedKey string
	f.cache.SetFunc = func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
		cachedKey = key
		return nil
	}

	res, err := f.svc.RecordLocation(context.Background(), 9, 30.05, 31.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LocationID != 101 || !res.InZone {
		t.Errorf("unexpected result: %+v", res)
	}
	if saved == nil || saved.DeviceID != 9 {
		t.Errorf("expected a persisted reading for device 9, got %+v", saved)
	}
	if cachedKey != "device:position:9" {
		t.Errorf("unexpected cache key %q", cachedKey)
	}
	if len(f.hub.frames) != 1 {
		t.Fatalf("expected one broadcast frame, got %d", len(f.hub.frames))
	}
	var frame map[string]interface{}
	if err := json.Unmarshal(f.hub.frames[0], &frame); err != nil {
		t.Fatalf("broadcast frame is not json: %v", err)
	}
	if frame["type"] != "position" || frame["in_zone"] != true {
		t.Errorf("unexpected frame: %v", frame)
	}
}

func TestRecordLocationCoordinatesOutOfRange(t *testing.T) {
	f := newFixture()

	for _, tc := range []struct{ lat, lng float64 }{
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
	} {
		if _, err := f.svc.RecordLocation(context.Background(), 9, tc.lat, tc.lng); !domain.IsCode(err, domain.CodeValidation) {
			t.Errorf("(%v, %v): expected VALIDATION, got %v", tc.lat, tc.lng, err)
		}
	}
}

func TestRecordLocationUnknownDevice(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RecordLocation(context.Background(), 9, 30.05, 31.05)
	if !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRecordLocationUnassignedDevice(t *testing.T) {
	f := newFixture()
	f.devices.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Device, error) {
		return &domain.Device{ID: id}, nil
	}

	_, err := f.svc.RecordLocation(context.Background(), 9, 30.05, 31.05)
	if !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRecordLocationDriverWithoutRoute(t *testing.T) {
	f := newFixture()
	f.devices.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Device, error) {
		return &domain.Device{ID: id}, nil
	}
	f.drivers.FindByDeviceIDFunc = func(ctx context.Context, deviceID uint) (*domain.Driver, error) {
		return &domain.Driver{ID: 3}, nil
	}

	_, err := f.svc.RecordLocation(context.Background(), 9, 30.05, 31.05)
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestLatestPositionCacheHit(t *testing.T) {
	f := newFixture()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.cache.GetFunc = func(ctx context.Context, key string) (string, error) {
		payload, _ := json.Marshal(map[string]interface{}{"lat": 30.05, "lng": 31.05, "ts": ts})
		return string(payload), nil
	}
	storageHit := false
	f.devices.LatestLocationFunc = func(ctx context.Context, deviceID uint) (*domain.DeviceLocation, error) {
		storageHit = true
		return nil, nil
	}

	loc, err := f.svc.LatestPosition(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 30.05 || loc.Longitude != 31.05 {
		t.Errorf("unexpected position: %+v", loc)
	}
	if storageHit {
		t.Error("a cache hit must not reach storage")
	}
}

func TestLatestPositionFallsBackToStorage(t *testing.T) {
	f := newFixture()
	f.devices.LatestLocationFunc = func(ctx context.Context, deviceID uint) (*domain.DeviceLocation, error) {
		return &domain.DeviceLocation{ID: 101, DeviceID: deviceID, Latitude: 29.9, Longitude: 31.2}, nil
	}

	loc, err := f.svc.LatestPosition(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.ID != 101 {
		t.Errorf("expected the stored reading, got %+v", loc)
	}
}

func TestLatestPositionNothingRecorded(t *testing.T) {
	f := newFixture()

	_, err := f.svc.LatestPosition(context.Background(), 9)
	if !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
