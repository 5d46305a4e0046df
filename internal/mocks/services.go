package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

// MockWalletService is a mock implementation of WalletService
type MockWalletService struct {
	PassengerWalletFunc func(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error)
	DriverWalletFunc    func(ctx context.Context, driverID uint) (*domain.DriverWallet, error)
	DebitFunc           func(ctx context.Context, ref domain.ActorRef, amount decimal.Decimal) (decimal.Decimal, error)
	CreditFunc          func(ctx context.Context, ref domain.ActorRef, amount decimal.Decimal) error
	CreditPendingFunc   func(ctx context.Context, driverID uint, amount decimal.Decimal) error
	SettleFunc          func(ctx context.Context, driverID uint) error
	SetBalanceFunc      func(ctx context.Context, passengerID uint, balance decimal.Decimal) error
	TransferFunc        func(ctx context.Context, senderPhone, receiverPhone string, amount decimal.Decimal) (*domain.Transfer, error)
}

func (m *MockWalletService) PassengerWallet(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error) {
	if m.PassengerWalletFunc != nil {
		return m.PassengerWalletFunc(ctx, passengerID)
	}
	return nil, nil
}

func (m *MockWalletService) DriverWallet(ctx context.Context, driverID uint) (*domain.DriverWallet, error) {
	if m.DriverWalletFunc != nil {
		return m.DriverWalletFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockWalletService) Debit(ctx context.Context, ref domain.ActorRef, amount decimal.Decimal) (decimal.Decimal, error) {
	if m.DebitFunc != nil {
		return m.DebitFunc(ctx, ref, amount)
	}
	return decimal.Zero, nil
}

func (m *MockWalletService) Credit(ctx context.Context, ref domain.ActorRef, amount decimal.Decimal) error {
	if m.CreditFunc != nil {
		return m.CreditFunc(ctx, ref, amount)
	}
	return nil
}

func (m *MockWalletService) CreditPending(ctx context.Context, driverID uint, amount decimal.Decimal) error {
	if m.CreditPendingFunc != nil {
		return m.CreditPendingFunc(ctx, driverID, amount)
	}
	return nil
}

func (m *MockWalletService) Settle(ctx context.Context, driverID uint) error {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, driverID)
	}
	return nil
}

func (m *MockWalletService) SetBalance(ctx context.Context, passengerID uint, balance decimal.Decimal) error {
	if m.SetBalanceFunc != nil {
		return m.SetBalanceFunc(ctx, passengerID, balance)
	}
	return nil
}

func (m *MockWalletService) Transfer(ctx context.Context, senderPhone, receiverPhone string, amount decimal.Decimal) (*domain.Transfer, error) {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, senderPhone, receiverPhone, amount)
	}
	return nil, nil
}

// MockTripService is a mock implementation of TripService
type MockTripService struct {
	StartFunc              func(ctx context.Context, driverID, vehicleID, routeID uint) (*domain.Trip, error)
	EndFunc                func(ctx context.Context, driverID uint) (*domain.Trip, error)
	ActiveTripFunc         func(ctx context.Context, driverID uint) (*domain.Trip, error)
	ActiveTripByDeviceFunc func(ctx context.Context, deviceID uint) (*domain.Trip, error)
	CloseOnZoneEntryFunc   func(ctx context.Context, driverID uint) (*domain.Trip, error)
	RotateQRTokenFunc      func(ctx context.Context, tripID uint) (string, error)
	QRPayloadFunc          func(ctx context.Context, tripID uint) (*ports.QRPayload, error)
}

func (m *MockTripService) Start(ctx context.Context, driverID, vehicleID, routeID uint) (*domain.Trip, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, driverID, vehicleID, routeID)
	}
	return nil, nil
}

func (m *MockTripService) End(ctx context.Context, driverID uint) (*domain.Trip, error) {
	if m.EndFunc != nil {
		return m.EndFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockTripService) ActiveTrip(ctx context.Context, driverID uint) (*domain.Trip, error) {
	if m.ActiveTripFunc != nil {
		return m.ActiveTripFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockTripService) ActiveTripByDevice(ctx context.Context, deviceID uint) (*domain.Trip, error) {
	if m.ActiveTripByDeviceFunc != nil {
		return m.ActiveTripByDeviceFunc(ctx, deviceID)
	}
	return nil, nil
}

func (m *MockTripService) CloseOnZoneEntry(ctx context.Context, driverID uint) (*domain.Trip, error) {
	if m.CloseOnZoneEntryFunc != nil {
		return m.CloseOnZoneEntryFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockTripService) RotateQRToken(ctx context.Context, tripID uint) (string, error) {
	if m.RotateQRTokenFunc != nil {
		return m.RotateQRTokenFunc(ctx, tripID)
	}
	return "", nil
}

func (m *MockTripService) QRPayload(ctx context.Context, tripID uint) (*ports.QRPayload, error) {
	if m.QRPayloadFunc != nil {
		return m.QRPayloadFunc(ctx, tripID)
	}
	return nil, nil
}

// MockGeofenceService is a mock implementation of GeofenceService
type MockGeofenceService struct {
	InZoneFunc         func(stops []domain.Stop, lat, lng float64) bool
	HandlePositionFunc func(ctx context.Context, driver *domain.Driver, stops []domain.Stop, lat, lng float64) (*ports.ZoneTransition, error)
}

func (m *MockGeofenceService) InZone(stops []domain.Stop, lat, lng float64) bool {
	if m.InZoneFunc != nil {
		return m.InZoneFunc(stops, lat, lng)
	}
	return false
}

func (m *MockGeofenceService) HandlePosition(ctx context.Context, driver *domain.Driver, stops []domain.Stop, lat, lng float64) (*ports.ZoneTransition, error) {
	if m.HandlePositionFunc != nil {
		return m.HandlePositionFunc(ctx, driver, stops, lat, lng)
	}
	return &ports.ZoneTransition{}, nil
}

// MockMessageQueue is a mock implementation of queue.MessageQueue
type MockMessageQueue struct {
	PublishFunc   func(subject string, data []byte) error
	SubscribeFunc func(subject string, handler func(data []byte) error) error
	CloseFunc     func() error

	Published []PublishedMessage
}

type PublishedMessage struct {
	Subject string
	Data    []byte
}

func (m *MockMessageQueue) Publish(subject string, data []byte) error {
	m.Published = append(m.Published, PublishedMessage{Subject: subject, Data: data})
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, data)
	}
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func(data []byte) error) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(subject, handler)
	}
	return nil
}

func (m *MockMessageQueue) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockCache is a mock implementation of ports.Cache
type MockCache struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", nil
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *MockCache) Ping() error { return nil }

func (m *MockCache) Close() error { return nil }
