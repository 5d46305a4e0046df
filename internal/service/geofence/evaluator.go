package geofence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/queue"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

// Service evaluates driver positions against the stop rectangles of the
// assigned route. Zone membership itself is a pure function; transition
// handling closes trips and settles wallets.
type Service struct {
	txm     ports.TxManager
	drivers ports.DriverRepository
	trips   ports.TripService
	wallets ports.WalletService
	mq      queue.MessageQueue
	log     *zap.Logger
}

func NewService(
	txm ports.TxManager,
	drivers ports.DriverRepository,
	trips ports.TripService,
	wallets ports.WalletService,
	mq queue.MessageQueue,
	log *zap.Logger,
) *Service {
	return &Service{
		txm:     txm,
		drivers: drivers,
		trips:   trips,
		wallets: wallets,
		mq:      mq,
		log:     log,
	}
}

// InZone reports whether the position falls inside at least one stop
// rectangle. No side effects.
func (s *Service) InZone(stops []domain.Stop, lat, lng float64) bool {
	for i := range stops {
		if stops[i].Contains(lat, lng) {
			return true
		}
	}
	return false
}

// HandlePosition persists the new in_zone flag on every call. On the
// false->true transition it additionally closes the latest active trip (a
// missing active trip is a no-op, not an error) and settles the driver's
// wallet.
func (s *Service) HandlePosition(ctx context.Context, driver *domain.Driver, stops []domain.Stop, lat, lng float64) (*ports.ZoneTransition, error) {
	transition := &ports.ZoneTransition{
		WasInZone: driver.InZone,
		NowInZone: s.InZone(stops, lat, lng),
	}

	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.drivers.UpdateInZone(ctx, driver.ID, transition.NowInZone); err != nil {
			return err
		}
		if !transition.Entered() {
			return nil
		}

		trip, err := s.trips.CloseOnZoneEntry(ctx, driver.ID)
		if err != nil {
			return err
		}
		if trip != nil {
			transition.ClosedTripID = &trip.ID
		}
		return s.wallets.Settle(ctx, driver.ID)
	})
	if err != nil {
		return nil, err
	}

	if transition.Entered() {
		s.publishEntered(driver.ID, transition, lat, lng)
		s.log.Info("driver entered zone",
			zap.Uint("driver_id", driver.ID),
			zap.Uintp("closed_trip_id", transition.ClosedTripID),
		)
	}
	return transition, nil
}

func (s *Service) publishEntered(driverID uint, transition *ports.ZoneTransition, lat, lng float64) {
	if s.mq == nil {
		return
	}
	payload := map[string]interface{}{
		"event_id":       uuid.NewString(),
		"driver_id":      driverID,
		"latitude":       lat,
		"longitude":      lng,
		"closed_trip_id": transition.ClosedTripID,
		"at":             time.Now().UTC(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to marshal zone event", zap.Error(err))
		return
	}
	if err := s.mq.Publish("driver.zone_entered", data); err != nil {
		s.log.Warn("failed to publish zone event", zap.Error(err))
	}
}
