package trip

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/queue"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/observability/telemetry"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/pkg/randtoken"
)

// qrTokenTTL bounds how useful a replayed QR token is while avoiding a new
// token on every read of a rapidly polled QR screen.
const qrTokenTTL = 10 * time.Second

const qrTokenLength = 32

// Service drives the trip state machine: NoActiveTrip -> Active -> Ended.
// Ended is terminal; the next journey on a vehicle is a new trip.
type Service struct {
	txm      ports.TxManager
	trips    ports.TripRepository
	vehicles ports.VehicleRepository
	routes   ports.RouteRepository
	drivers  ports.DriverRepository
	wallets  ports.WalletService
	mq       queue.MessageQueue
	log      *zap.Logger
	now      func() time.Time
	qrTTL    time.Duration
}

func NewService(
	txm ports.TxManager,
	trips ports.TripRepository,
	vehicles ports.VehicleRepository,
	routes ports.RouteRepository,
	drivers ports.DriverRepository,
	wallets ports.WalletService,
	mq queue.MessageQueue,
	log *zap.Logger,
) *Service {
	return &Service{
		txm:      txm,
		trips:    trips,
		vehicles: vehicles,
		routes:   routes,
		drivers:  drivers,
		wallets:  wallets,
		mq:       mq,
		log:      log,
		now:      time.Now,
		qrTTL:    qrTokenTTL,
	}
}

// SetQRTokenTTL overrides the token freshness window; zero or negative
// values are ignored.
func (s *Service) SetQRTokenTTL(ttl time.Duration) {
	if ttl > 0 {
		s.qrTTL = ttl
	}
}

func (s *Service) Start(ctx context.Context, driverID, vehicleID, routeID uint) (*domain.Trip, error) {
	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, domain.E(domain.CodeNotFound, "vehicle not found")
	}
	if vehicle.DriverID != driverID {
		return nil, domain.E(domain.CodeForbidden, "vehicle does not belong to this driver")
	}

	route, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, domain.E(domain.CodeNotFound, "route not found")
	}
	if len(route.Stops) == 0 {
		return nil, domain.E(domain.CodeValidation, "route has no stops")
	}

	var trip *domain.Trip
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		// Checked here for a clean error; the partial unique index on
		// trips(vehicle_id) WHERE end_time IS NULL closes the race
		// between two concurrent starts.
		active, err := s.trips.ActiveByVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		if active != nil {
			return domain.E(domain.CodeConflict, "vehicle already has an active trip")
		}

		now := s.now()
		year, month, day := now.Date()
		today := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		maxSeq, err := s.trips.MaxSequence(ctx, driverID, today)
		if err != nil {
			return err
		}

		if err := s.drivers.UpdateInZone(ctx, driverID, false); err != nil {
			return err
		}
		if err := s.drivers.AssignRoute(ctx, driverID, routeID); err != nil {
			return err
		}

		trip = &domain.Trip{
			DriverID:       driverID,
			VehicleID:      vehicleID,
			RouteID:        routeID,
			Date:           today,
			SequenceNumber: maxSeq + 1,
			StartTime:      now,
			InZone:         false,
		}
		return s.trips.Create(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	telemetry.ActiveTrips.Inc()
	telemetry.TripsStartedTotal.Inc()
	s.publish("trip.started", map[string]interface{}{
		"event_id":        uuid.NewString(),
		"trip_id":         trip.ID,
		"driver_id":       driverID,
		"vehicle_id":      vehicleID,
		"route_id":        routeID,
		"sequence_number": trip.SequenceNumber,
		"start_time":      trip.StartTime,
	})
	s.log.Info("trip started",
		zap.Uint("trip_id", trip.ID),
		zap.Uint("driver_id", driverID),
		zap.Uint("vehicle_id", vehicleID),
		zap.Int("sequence_number", trip.SequenceNumber),
	)
	return trip, nil
}

// End closes the driver's latest active trip, resets the driver's in_zone
// flag and settles the wallet unconditionally, regardless of geofence
// state. This is the explicit driver action, distinct from the
// geofence-triggered close.
func (s *Service) End(ctx context.Context, driverID uint) (*domain.Trip, error) {
	var trip *domain.Trip
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		trip, err = s.trips.ActiveByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if trip == nil {
			return domain.E(domain.CodeNotFound, "no active trip to end")
		}

		endTime := s.now()
		if err := s.trips.SetEnded(ctx, trip.ID, endTime, false); err != nil {
			return err
		}
		trip.EndTime = &endTime
		trip.InZone = false

		if err := s.drivers.UpdateInZone(ctx, driverID, false); err != nil {
			return err
		}
		return s.wallets.Settle(ctx, driverID)
	})
	if err != nil {
		return nil, err
	}

	telemetry.ActiveTrips.Dec()
	s.publish("trip.ended", map[string]interface{}{
		"event_id":  uuid.NewString(),
		"trip_id":   trip.ID,
		"driver_id": driverID,
		"end_time":  trip.EndTime,
		"reason":    "driver",
	})
	s.log.Info("trip ended",
		zap.Uint("trip_id", trip.ID),
		zap.Uint("driver_id", driverID),
	)
	return trip, nil
}

// CloseOnZoneEntry ends the latest active trip because the driver's
// position entered the route zone. A missing active trip returns (nil, nil);
// settlement is handled by the caller so the geofence path settles exactly
// once per transition.
func (s *Service) CloseOnZoneEntry(ctx context.Context, driverID uint) (*domain.Trip, error) {
	trip, err := s.trips.ActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, nil
	}

	endTime := s.now()
	if err := s.trips.SetEnded(ctx, trip.ID, endTime, true); err != nil {
		return nil, err
	}
	trip.EndTime = &endTime
	trip.InZone = true

	telemetry.ActiveTrips.Dec()
	s.publish("trip.ended", map[string]interface{}{
		"event_id":  uuid.NewString(),
		"trip_id":   trip.ID,
		"driver_id": driverID,
		"end_time":  trip.EndTime,
		"reason":    "zone_entry",
	})
	return trip, nil
}

func (s *Service) ActiveTrip(ctx context.Context, driverID uint) (*domain.Trip, error) {
	trip, err := s.trips.ActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.E(domain.CodeNotFound, "no active trip")
	}
	return trip, nil
}

func (s *Service) ActiveTripByDevice(ctx context.Context, deviceID uint) (*domain.Trip, error) {
	driver, err := s.drivers.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, domain.E(domain.CodeNotFound, "device is not assigned to a driver")
	}
	trip, err := s.trips.ActiveByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.E(domain.CodeNotFound, "no active trip")
	}
	return trip, nil
}

// RotateQRToken returns the trip's current payment token, generating a new
// one only when none exists or the current one is older than the freshness
// window. Rapid repeated reads inside the window see the same token.
func (s *Service) RotateQRToken(ctx context.Context, tripID uint) (string, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return "", err
	}
	if trip == nil {
		return "", domain.E(domain.CodeNotFound, "trip not found")
	}
	if !trip.Active() {
		return "", domain.E(domain.CodeExpired, "trip has ended")
	}

	now := s.now()
	if trip.QRToken != "" && trip.QRTokenGeneratedAt != nil && now.Sub(*trip.QRTokenGeneratedAt) < s.qrTTL {
		return trip.QRToken, nil
	}

	token := randtoken.New(qrTokenLength)
	if err := s.trips.UpdateQRToken(ctx, tripID, token, now); err != nil {
		return "", err
	}
	return token, nil
}

// QRPayload assembles what a client encodes into the trip's QR image.
func (s *Service) QRPayload(ctx context.Context, tripID uint) (*ports.QRPayload, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.E(domain.CodeNotFound, "trip not found")
	}
	if !trip.Active() {
		return nil, domain.E(domain.CodeExpired, "trip has ended")
	}

	token, err := s.RotateQRToken(ctx, tripID)
	if err != nil {
		return nil, err
	}

	route, err := s.routes.FindByID(ctx, trip.RouteID)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicles.FindByID(ctx, trip.VehicleID)
	if err != nil {
		return nil, err
	}

	payload := &ports.QRPayload{
		Token:     token,
		TripID:    trip.ID,
		StartTime: trip.StartTime,
	}
	if route != nil && len(route.Stops) > 0 {
		payload.FromStop = route.Stops[0].Name
		payload.ToStop = route.Stops[len(route.Stops)-1].Name
	}
	if vehicle != nil {
		payload.VehicleNumber = vehicle.Number
	}
	return payload, nil
}

func (s *Service) publish(subject string, payload map[string]interface{}) {
	if s.mq == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := s.mq.Publish(subject, data); err != nil {
		s.log.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
