package geofence

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/mocks"
)

var testStops = []domain.Stop{
	{Name: "north", MinLat: 30.00, MinLng: 31.00, MaxLat: 30.10, MaxLng: 31.10},
	{Name: "south", MinLat: 29.80, MinLng: 31.00, MaxLat: 29.90, MaxLng: 31.10},
}

func newTestService(drivers *mocks.MockDriverRepository, trips *mocks.MockTripService, wallets *mocks.MockWalletService, mq *mocks.MockMessageQueue) *Service {
	return NewService(&mocks.MockTxManager{}, drivers, trips, wallets, mq, zap.NewNop())
}

func TestInZone(t *testing.T) {
	svc := newTestService(&mocks.MockDriverRepository{}, &mocks.MockTripService{}, &mocks.MockWalletService{}, &mocks.MockMessageQueue{})

	cases := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"inside first stop", 30.05, 31.05, true},
		{"inside second stop", 29.85, 31.05, true},
		{"on the boundary", 30.00, 31.00, true},
		{"between the stops", 29.95, 31.05, false},
		{"far away", 25.00, 35.00, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.InZone(testStops, tc.lat, tc.lng); got != tc.want {
				t.Errorf("InZone(%v, %v) = %v, want %v", tc.lat, tc.lng, got, tc.want)
			}
		})
	}
}

func TestHandlePositionEntryClosesTripAndSettles(t *testing.T) {
	var updatedInZone *bool
	drivers := &mocks.MockDriverRepository{
		UpdateInZoneFunc: func(ctx context.Context, id uint, inZone bool) error {
			updatedInZone = &inZone
			return nil
		},
	}
	trips := &mocks.MockTripService{
		CloseOnZoneEntryFunc: func(ctx context.Context, driverID uint) (*domain.Trip, error) {
			return &domain.Trip{ID: 42, DriverID: driverID}, nil
		},
	}
	settled := false
	wallets := &mocks.MockWalletService{
		SettleFunc: func(ctx context.Context, driverID uint) error {
			settled = true
			return nil
		},
	}
	mq := &mocks.MockMessageQueue{}
	svc := newTestService(drivers, trips, wallets, mq)

	driver := &domain.Driver{ID: 3, InZone: false}
	transition, err := svc.HandlePosition(context.Background(), driver, testStops, 30.05, 31.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !transition.Entered() {
		t.Fatal("expected a zone entry transition")
	}
	if transition.ClosedTripID == nil || *transition.ClosedTripID != 42 {
		t.Errorf("expected closed trip 42, got %v", transition.ClosedTripID)
	}
	if updatedInZone == nil || !*updatedInZone {
		t.Error("expected in_zone persisted as true")
	}
	if !settled {
		t.Error("a zone entry must settle the driver's wallet")
	}
	if len(mq.Published) != 1 || mq.Published[0].Subject != "driver.zone_entered" {
		t.Errorf("expected one driver.zone_entered event, got %v", mq.Published)
	}
}

func TestHandlePositionEntrySettlesWithoutActiveTrip(t *testing.T) {
	trips := &mocks.MockTripService{
		CloseOnZoneEntryFunc: func(ctx context.Context, driverID uint) (*domain.Trip, error) {
			return nil, nil
		},
	}
	settled := false
	wallets := &mocks.MockWalletService{
		SettleFunc: func(ctx context.Context, driverID uint) error {
			settled = true
			return nil
		},
	}
	svc := newTestService(&mocks.MockDriverRepository{}, trips, wallets, &mocks.MockMessageQueue{})

	driver := &domain.Driver{ID: 3, InZone: false}
	transition, err := svc.HandlePosition(context.Background(), driver, testStops, 30.05, 31.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transition.ClosedTripID != nil {
		t.Errorf("expected no closed trip, got %v", *transition.ClosedTripID)
	}
	if !settled {
		t.Error("settlement must run even when no trip was active")
	}
}

func TestHandlePositionNoTransition(t *testing.T) {
	closed := false
	trips := &mocks.MockTripService{
		CloseOnZoneEntryFunc: func(ctx context.Context, driverID uint) (*domain.Trip, error) {
			closed = true
			return nil, nil
		},
	}
	settled := false
	wallets := &mocks.MockWalletService{
		SettleFunc: func(ctx context.Context, driverID uint) error {
			settled = true
			return nil
		},
	}
	svc := newTestService(&mocks.MockDriverRepository{}, trips, wallets, &mocks.MockMessageQueue{})

	// Already in the zone and still in the zone.
	driver := &domain.Driver{ID: 3, InZone: true}
	transition, err := svc.HandlePosition(context.Background(), driver, testStops, 30.05, 31.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transition.Entered() {
		t.Error("staying in the zone is not an entry")
	}
	if closed || settled {
		t.Error("no transition must mean no close and no settlement")
	}
}

func TestHandlePositionExit(t *testing.T) {
	var updatedInZone *bool
	drivers := &mocks.MockDriverRepository{
		UpdateInZoneFunc: func(ctx context.Context, id uint, inZone bool) error {
			updatedInZone = &inZone
			return nil
		},
	}
	settled := false
	wallets := &mocks.MockWalletService{
		SettleFunc: func(ctx context.Context, driverID uint) error {
			settled = true
			return nil
		},
	}
	svc := newTestService(drivers, &mocks.MockTripService{}, wallets, &mocks.MockMessageQueue{})

	driver := &domain.Driver{ID: 3, InZone: true}
	transition, err := svc.HandlePosition(context.Background(), driver, testStops, 29.95, 31.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transition.NowInZone {
		t.Error("expected the driver outside the zone")
	}
	if updatedInZone == nil || *updatedInZone {
		t.Error("expected in_zone persisted as false")
	}
	if settled {
		t.Error("leaving the zone must not settle")
	}
}
