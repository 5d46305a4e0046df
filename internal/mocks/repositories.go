package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
)

// MockTxManager runs the function directly; tests that need rollback
// behavior set FailWith.
type MockTxManager struct {
	WithinTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithinTxFunc != nil {
		return m.WithinTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// MockPassengerRepository is a mock implementation of PassengerRepository
type MockPassengerRepository struct {
	SaveFunc             func(ctx context.Context, p *domain.Passenger) error
	FindByIDFunc         func(ctx context.Context, id uint) (*domain.Passenger, error)
	FindByUIDFunc        func(ctx context.Context, uid string) (*domain.Passenger, error)
	FindByPhoneFunc      func(ctx context.Context, phone string) (*domain.Passenger, error)
	FindByNationalIDFunc func(ctx context.Context, nationalID string) (*domain.Passenger, error)
}

func (m *MockPassengerRepository) Save(ctx context.Context, p *domain.Passenger) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	return nil
}

func (m *MockPassengerRepository) FindByID(ctx context.Context, id uint) (*domain.Passenger, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPassengerRepository) FindByUID(ctx context.Context, uid string) (*domain.Passenger, error) {
	if m.FindByUIDFunc != nil {
		return m.FindByUIDFunc(ctx, uid)
	}
	return nil, nil
}

func (m *MockPassengerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Passenger, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, nil
}

func (m *MockPassengerRepository) FindByNationalID(ctx context.Context, nationalID string) (*domain.Passenger, error) {
	if m.FindByNationalIDFunc != nil {
		return m.FindByNationalIDFunc(ctx, nationalID)
	}
	return nil, nil
}

// MockDriverRepository is a mock implementation of DriverRepository
type MockDriverRepository struct {
	SaveFunc             func(ctx context.Context, d *domain.Driver) error
	FindByIDFunc         func(ctx context.Context, id uint) (*domain.Driver, error)
	FindByUIDFunc        func(ctx context.Context, uid string) (*domain.Driver, error)
	FindByPhoneFunc      func(ctx context.Context, phone string) (*domain.Driver, error)
	FindByNationalIDFunc func(ctx context.Context, nationalID string) (*domain.Driver, error)
	FindByDeviceIDFunc   func(ctx context.Context, deviceID uint) (*domain.Driver, error)
	UpdateInZoneFunc     func(ctx context.Context, id uint, inZone bool) error
	AssignRouteFunc      func(ctx context.Context, id uint, routeID uint) error
	AssignDeviceFunc     func(ctx context.Context, id uint, deviceID uint) error
}

func (m *MockDriverRepository) Save(ctx context.Context, d *domain.Driver) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, d)
	}
	return nil
}

func (m *MockDriverRepository) FindByID(ctx context.Context, id uint) (*domain.Driver, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDriverRepository) FindByUID(ctx context.Context, uid string) (*domain.Driver, error) {
	if m.FindByUIDFunc != nil {
		return m.FindByUIDFunc(ctx, uid)
	}
	return nil, nil
}

func (m *MockDriverRepository) FindByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, nil
}

func (m *MockDriverRepository) FindByNationalID(ctx context.Context, nationalID string) (*domain.Driver, error) {
	if m.FindByNationalIDFunc != nil {
		return m.FindByNationalIDFunc(ctx, nationalID)
	}
	return nil, nil
}

func (m *MockDriverRepository) FindByDeviceID(ctx context.Context, deviceID uint) (*domain.Driver, error) {
	if m.FindByDeviceIDFunc != nil {
		return m.FindByDeviceIDFunc(ctx, deviceID)
	}
	return nil, nil
}

func (m *MockDriverRepository) UpdateInZone(ctx context.Context, id uint, inZone bool) error {
	if m.UpdateInZoneFunc != nil {
		return m.UpdateInZoneFunc(ctx, id, inZone)
	}
	return nil
}

func (m *MockDriverRepository) AssignRoute(ctx context.Context, id uint, routeID uint) error {
	if m.AssignRouteFunc != nil {
		return m.AssignRouteFunc(ctx, id, routeID)
	}
	return nil
}

func (m *MockDriverRepository) AssignDevice(ctx context.Context, id uint, deviceID uint) error {
	if m.AssignDeviceFunc != nil {
		return m.AssignDeviceFunc(ctx, id, deviceID)
	}
	return nil
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	CreatePassengerWalletFunc    func(ctx context.Context, w *domain.PassengerWallet) error
	CreateDriverWalletFunc       func(ctx context.Context, w *domain.DriverWallet) error
	PassengerWalletFunc          func(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error)
	DriverWalletFunc             func(ctx context.Context, driverID uint) (*domain.DriverWallet, error)
	PassengerWalletForUpdateFunc func(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error)
	DriverWalletForUpdateFunc    func(ctx context.Context, driverID uint) (*domain.DriverWallet, error)
	UpdatePassengerBalanceFunc   func(ctx context.Context, walletID uint, balance decimal.Decimal) error
	UpdateDriverBalancesFunc     func(ctx context.Context, walletID uint, balance, pending decimal.Decimal) error
}

func (m *MockWalletRepository) CreatePassengerWallet(ctx context.Context, w *domain.PassengerWallet) error {
	if m.CreatePassengerWalletFunc != nil {
		return m.CreatePassengerWalletFunc(ctx, w)
	}
	return nil
}

func (m *MockWalletRepository) CreateDriverWallet(ctx context.Context, w *domain.DriverWallet) error {
	if m.CreateDriverWalletFunc != nil {
		return m.CreateDriverWalletFunc(ctx, w)
	}
	return nil
}

func (m *MockWalletRepository) PassengerWallet(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error) {
	if m.PassengerWalletFunc != nil {
		return m.PassengerWalletFunc(ctx, passengerID)
	}
	return nil, nil
}

func (m *MockWalletRepository) DriverWallet(ctx context.Context, driverID uint) (*domain.DriverWallet, error) {
	if m.DriverWalletFunc != nil {
		return m.DriverWalletFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockWalletRepository) PassengerWalletForUpdate(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error) {
	if m.PassengerWalletForUpdateFunc != nil {
		return m.PassengerWalletForUpdateFunc(ctx, passengerID)
	}
	return nil, nil
}

func (m *MockWalletRepository) DriverWalletForUpdate(ctx context.Context, driverID uint) (*domain.DriverWallet, error) {
	if m.DriverWalletForUpdateFunc != nil {
		return m.DriverWalletForUpdateFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockWalletRepository) UpdatePassengerBalance(ctx context.Context, walletID uint, balance decimal.Decimal) error {
	if m.UpdatePassengerBalanceFunc != nil {
		return m.UpdatePassengerBalanceFunc(ctx, walletID, balance)
	}
	return nil
}

func (m *MockWalletRepository) UpdateDriverBalances(ctx context.Context, walletID uint, balance, pending decimal.Decimal) error {
	if m.UpdateDriverBalancesFunc != nil {
		return m.UpdateDriverBalancesFunc(ctx, walletID, balance, pending)
	}
	return nil
}

// MockTripRepository is a mock implementation of TripRepository
type MockTripRepository struct {
	CreateFunc          func(ctx context.Context, t *domain.Trip) error
	FindByIDFunc        func(ctx context.Context, id uint) (*domain.Trip, error)
	FindByQRTokenFunc   func(ctx context.Context, token string) (*domain.Trip, error)
	ActiveByDriverFunc  func(ctx context.Context, driverID uint) (*domain.Trip, error)
	ActiveByVehicleFunc func(ctx context.Context, vehicleID uint) (*domain.Trip, error)
	MaxSequenceFunc     func(ctx context.Context, driverID uint, date time.Time) (int, error)
	SetEndedFunc        func(ctx context.Context, id uint, endTime time.Time, inZone bool) error
	UpdateQRTokenFunc   func(ctx context.Context, id uint, token string, generatedAt time.Time) error
}

func (m *MockTripRepository) Create(ctx context.Context, t *domain.Trip) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return nil
}

func (m *MockTripRepository) FindByID(ctx context.Context, id uint) (*domain.Trip, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTripRepository) FindByQRToken(ctx context.Context, token string) (*domain.Trip, error) {
	if m.FindByQRTokenFunc != nil {
		return m.FindByQRTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockTripRepository) ActiveByDriver(ctx context.Context, driverID uint) (*domain.Trip, error) {
	if m.ActiveByDriverFunc != nil {
		return m.ActiveByDriverFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockTripRepository) ActiveByVehicle(ctx context.Context, vehicleID uint) (*domain.Trip, error) {
	if m.ActiveByVehicleFunc != nil {
		return m.ActiveByVehicleFunc(ctx, vehicleID)
	}
	return nil, nil
}

func (m *MockTripRepository) MaxSequence(ctx context.Context, driverID uint, date time.Time) (int, error) {
	if m.MaxSequenceFunc != nil {
		return m.MaxSequenceFunc(ctx, driverID, date)
	}
	return 0, nil
}

func (m *MockTripRepository) SetEnded(ctx context.Context, id uint, endTime time.Time, inZone bool) error {
	if m.SetEndedFunc != nil {
		return m.SetEndedFunc(ctx, id, endTime, inZone)
	}
	return nil
}

func (m *MockTripRepository) UpdateQRToken(ctx context.Context, id uint, token string, generatedAt time.Time) error {
	if m.UpdateQRTokenFunc != nil {
		return m.UpdateQRTokenFunc(ctx, id, token, generatedAt)
	}
	return nil
}

// MockVehicleRepository is a mock implementation of VehicleRepository
type MockVehicleRepository struct {
	SaveFunc         func(ctx context.Context, v *domain.Vehicle) error
	FindByIDFunc     func(ctx context.Context, id uint) (*domain.Vehicle, error)
	FindByDriverFunc func(ctx context.Context, driverID uint) ([]domain.Vehicle, error)
}

func (m *MockVehicleRepository) Save(ctx context.Context, v *domain.Vehicle) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, v)
	}
	return nil
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id uint) (*domain.Vehicle, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockVehicleRepository) FindByDriver(ctx context.Context, driverID uint) ([]domain.Vehicle, error) {
	if m.FindByDriverFunc != nil {
		return m.FindByDriverFunc(ctx, driverID)
	}
	return []domain.Vehicle{}, nil
}

// MockRouteRepository is a mock implementation of RouteRepository
type MockRouteRepository struct {
	SaveFunc       func(ctx context.Context, r *domain.Route) error
	FindByIDFunc   func(ctx context.Context, id uint) (*domain.Route, error)
	ListByCityFunc func(ctx context.Context, cityID uint) ([]domain.Route, error)
	AddStopFunc    func(ctx context.Context, s *domain.Stop) error
}

func (m *MockRouteRepository) Save(ctx context.Context, r *domain.Route) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, r)
	}
	return nil
}

func (m *MockRouteRepository) FindByID(ctx context.Context, id uint) (*domain.Route, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRouteRepository) ListByCity(ctx context.Context, cityID uint) ([]domain.Route, error) {
	if m.ListByCityFunc != nil {
		return m.ListByCityFunc(ctx, cityID)
	}
	return []domain.Route{}, nil
}

func (m *MockRouteRepository) AddStop(ctx context.Context, s *domain.Stop) error {
	if m.AddStopFunc != nil {
		return m.AddStopFunc(ctx, s)
	}
	return nil
}

// MockGeoRepository is a mock implementation of GeoRepository
type MockGeoRepository struct {
	SaveGovernorateFunc  func(ctx context.Context, g *domain.Governorate) error
	ListGovernoratesFunc func(ctx context.Context) ([]domain.Governorate, error)
	SaveCityFunc         func(ctx context.Context, c *domain.City) error
	ListCitiesFunc       func(ctx context.Context, governorateID *uint) ([]domain.City, error)
}

func (m *MockGeoRepository) SaveGovernorate(ctx context.Context, g *domain.Governorate) error {
	if m.SaveGovernorateFunc != nil {
		return m.SaveGovernorateFunc(ctx, g)
	}
	return nil
}

func (m *MockGeoRepository) ListGovernorates(ctx context.Context) ([]domain.Governorate, error) {
	if m.ListGovernoratesFunc != nil {
		return m.ListGovernoratesFunc(ctx)
	}
	return []domain.Governorate{}, nil
}

func (m *MockGeoRepository) SaveCity(ctx context.Context, c *domain.City) error {
	if m.SaveCityFunc != nil {
		return m.SaveCityFunc(ctx, c)
	}
	return nil
}

func (m *MockGeoRepository) ListCities(ctx context.Context, governorateID *uint) ([]domain.City, error) {
	if m.ListCitiesFunc != nil {
		return m.ListCitiesFunc(ctx, governorateID)
	}
	return []domain.City{}, nil
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	SaveFunc        func(ctx context.Context, p *domain.Payment) error
	ByPassengerFunc func(ctx context.Context, passengerID uint) ([]domain.Payment, error)
	ByTripFunc      func(ctx context.Context, tripID uint) ([]domain.Payment, error)
	CountByTripFunc func(ctx context.Context, tripID uint) (int64, error)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	return nil
}

func (m *MockPaymentRepository) ByPassenger(ctx context.Context, passengerID uint) ([]domain.Payment, error) {
	if m.ByPassengerFunc != nil {
		return m.ByPassengerFunc(ctx, passengerID)
	}
	return []domain.Payment{}, nil
}

func (m *MockPaymentRepository) ByTrip(ctx context.Context, tripID uint) ([]domain.Payment, error) {
	if m.ByTripFunc != nil {
		return m.ByTripFunc(ctx, tripID)
	}
	return []domain.Payment{}, nil
}

func (m *MockPaymentRepository) CountByTrip(ctx context.Context, tripID uint) (int64, error) {
	if m.CountByTripFunc != nil {
		return m.CountByTripFunc(ctx, tripID)
	}
	return 0, nil
}

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	SaveFunc func(ctx context.Context, t *domain.Transfer) error
}

func (m *MockTransferRepository) Save(ctx context.Context, t *domain.Transfer) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return nil
}

// MockDeviceRepository is a mock implementation of DeviceRepository
type MockDeviceRepository struct {
	SaveFunc           func(ctx context.Context, d *domain.Device) error
	FindByIDFunc       func(ctx context.Context, id uint) (*domain.Device, error)
	SaveLocationFunc   func(ctx context.Context, l *domain.DeviceLocation) error
	LatestLocationFunc func(ctx context.Context, deviceID uint) (*domain.DeviceLocation, error)
}

func (m *MockDeviceRepository) Save(ctx context.Context, d *domain.Device) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, d)
	}
	return nil
}

func (m *MockDeviceRepository) FindByID(ctx context.Context, id uint) (*domain.Device, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDeviceRepository) SaveLocation(ctx context.Context, l *domain.DeviceLocation) error {
	if m.SaveLocationFunc != nil {
		return m.SaveLocationFunc(ctx, l)
	}
	return nil
}

func (m *MockDeviceRepository) LatestLocation(ctx context.Context, deviceID uint) (*domain.DeviceLocation, error) {
	if m.LatestLocationFunc != nil {
		return m.LatestLocationFunc(ctx, deviceID)
	}
	return nil, nil
}

type MockNFCCardRepository struct {
	SaveFunc      func(ctx context.Context, c *domain.NFCCard) error
	FindByUIDFunc func(ctx context.Context, uid string) (*domain.NFCCard, error)
}

func (m *MockNFCCardRepository) Save(ctx context.Context, c *domain.NFCCard) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, c)
	}
	return nil
}

func (m *MockNFCCardRepository) FindByUID(ctx context.Context, uid string) (*domain.NFCCard, error) {
	if m.FindByUIDFunc != nil {
		return m.FindByUIDFunc(ctx, uid)
	}
	return nil, nil
}
