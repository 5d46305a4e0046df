package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
)

// TxManager scopes a function to one storage transaction. Nested calls
// reuse the transaction already carried by the context, so services can
// compose (e.g. endTrip settles the wallet inside the trip transaction).
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type PassengerRepository interface {
	Save(ctx context.Context, p *domain.Passenger) error
	FindByID(ctx context.Context, id uint) (*domain.Passenger, error)
	FindByUID(ctx context.Context, uid string) (*domain.Passenger, error) // case-insensitive
	FindByPhone(ctx context.Context, phone string) (*domain.Passenger, error)
	FindByNationalID(ctx context.Context, nationalID string) (*domain.Passenger, error)
}

type DriverRepository interface {
	Save(ctx context.Context, d *domain.Driver) error
	FindByID(ctx context.Context, id uint) (*domain.Driver, error)
	FindByUID(ctx context.Context, uid string) (*domain.Driver, error) // case-insensitive
	FindByPhone(ctx context.Context, phone string) (*domain.Driver, error)
	FindByNationalID(ctx context.Context, nationalID string) (*domain.Driver, error)
	FindByDeviceID(ctx context.Context, deviceID uint) (*domain.Driver, error)
	UpdateInZone(ctx context.Context, id uint, inZone bool) error
	AssignRoute(ctx context.Context, id uint, routeID uint) error
	AssignDevice(ctx context.Context, id uint, deviceID uint) error
}

// WalletRepository persists both wallet kinds. The ForUpdate variants must
// be called inside a TxManager transaction; they lock the wallet row for
// the duration of the check-then-mutate sequence.
type WalletRepository interface {
	CreatePassengerWallet(ctx context.Context, w *domain.PassengerWallet) error
	CreateDriverWallet(ctx context.Context, w *domain.DriverWallet) error

	PassengerWallet(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error)
	DriverWallet(ctx context.Context, driverID uint) (*domain.DriverWallet, error)

	PassengerWalletForUpdate(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error)
	DriverWalletForUpdate(ctx context.Context, driverID uint) (*domain.DriverWallet, error)

	UpdatePassengerBalance(ctx context.Context, walletID uint, balance decimal.Decimal) error
	UpdateDriverBalances(ctx context.Context, walletID uint, balance, pending decimal.Decimal) error
}

type TripRepository interface {
	Create(ctx context.Context, t *domain.Trip) error
	FindByID(ctx context.Context, id uint) (*domain.Trip, error)
	FindByQRToken(ctx context.Context, token string) (*domain.Trip, error)

	// ActiveByDriver returns the latest active trip by start time, nil when none.
	ActiveByDriver(ctx context.Context, driverID uint) (*domain.Trip, error)
	ActiveByVehicle(ctx context.Context, vehicleID uint) (*domain.Trip, error)

	// MaxSequence returns the highest sequence number among the driver's
	// trips on the given date, 0 when there are none.
	MaxSequence(ctx context.Context, driverID uint, date time.Time) (int, error)

	SetEnded(ctx context.Context, id uint, endTime time.Time, inZone bool) error
	UpdateQRToken(ctx context.Context, id uint, token string, generatedAt time.Time) error
}

type VehicleRepository interface {
	Save(ctx context.Context, v *domain.Vehicle) error
	FindByID(ctx context.Context, id uint) (*domain.Vehicle, error)
	FindByDriver(ctx context.Context, driverID uint) ([]domain.Vehicle, error)
}

type RouteRepository interface {
	Save(ctx context.Context, r *domain.Route) error
	// FindByID loads the route with its stops ordered by id.
	FindByID(ctx context.Context, id uint) (*domain.Route, error)
	ListByCity(ctx context.Context, cityID uint) ([]domain.Route, error)
	AddStop(ctx context.Context, s *domain.Stop) error
}

type GeoRepository interface {
	SaveGovernorate(ctx context.Context, g *domain.Governorate) error
	ListGovernorates(ctx context.Context) ([]domain.Governorate, error)
	SaveCity(ctx context.Context, c *domain.City) error
	ListCities(ctx context.Context, governorateID *uint) ([]domain.City, error)
}

type PaymentRepository interface {
	Save(ctx context.Context, p *domain.Payment) error
	ByPassenger(ctx context.Context, passengerID uint) ([]domain.Payment, error) // latest first
	ByTrip(ctx context.Context, tripID uint) ([]domain.Payment, error)
	CountByTrip(ctx context.Context, tripID uint) (int64, error)
}

type TransferRepository interface {
	Save(ctx context.Context, t *domain.Transfer) error
}

type NFCCardRepository interface {
	Save(ctx context.Context, c *domain.NFCCard) error
	FindByUID(ctx context.Context, uid string) (*domain.NFCCard, error)
}

type DeviceRepository interface {
	Save(ctx context.Context, d *domain.Device) error
	FindByID(ctx context.Context, id uint) (*domain.Device, error)
	SaveLocation(ctx context.Context, l *domain.DeviceLocation) error
	LatestLocation(ctx context.Context, deviceID uint) (*domain.DeviceLocation, error)
}
