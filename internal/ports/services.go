package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
)

// Cache is a small key/value abstraction backed by Redis in production and
// an in-memory map in tests and degraded mode.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// WalletService is the ledger: every mutation runs under a transaction that
// locks the wallet rows involved.
type WalletService interface {
	PassengerWallet(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error)
	DriverWallet(ctx context.Context, driverID uint) (*domain.DriverWallet, error)

	// Debit decrements the spendable balance, failing with
	// INSUFFICIENT_FUNDS when the balance does not cover the amount.
	Debit(ctx context.Context, ref domain.ActorRef, amount decimal.Decimal) (decimal.Decimal, error)
	// Credit increments the spendable balance.
	Credit(ctx context.Context, ref domain.ActorRef, amount decimal.Decimal) error
	// CreditPending accumulates a fare into the driver's pending balance.
	CreditPending(ctx context.Context, driverID uint, amount decimal.Decimal) error
	// Settle moves the whole pending balance into the spendable balance.
	// Settling with nothing pending is a no-op, not an error.
	Settle(ctx context.Context, driverID uint) error
	// SetBalance overwrites the passenger balance (device top-up path).
	SetBalance(ctx context.Context, passengerID uint, balance decimal.Decimal) error

	Transfer(ctx context.Context, senderPhone, receiverPhone string, amount decimal.Decimal) (*domain.Transfer, error)
}

type TripService interface {
	Start(ctx context.Context, driverID, vehicleID, routeID uint) (*domain.Trip, error)
	End(ctx context.Context, driverID uint) (*domain.Trip, error)
	ActiveTrip(ctx context.Context, driverID uint) (*domain.Trip, error)
	ActiveTripByDevice(ctx context.Context, deviceID uint) (*domain.Trip, error)

	// CloseOnZoneEntry ends the latest active trip because the driver
	// entered the route zone. Returns nil trip when none was active; that
	// is not an error.
	CloseOnZoneEntry(ctx context.Context, driverID uint) (*domain.Trip, error)

	// RotateQRToken returns the trip's payment token, generating a fresh
	// one only when the current token is older than the freshness window.
	RotateQRToken(ctx context.Context, tripID uint) (string, error)
	// QRPayload describes the active trip for QR rendering by a client.
	QRPayload(ctx context.Context, tripID uint) (*QRPayload, error)
}

// QRPayload is what a client encodes into the QR image; rendering itself
// is out of scope.
type QRPayload struct {
	Token         string    `json:"token"`
	TripID        uint      `json:"trip_id"`
	FromStop      string    `json:"from"`
	ToStop        string    `json:"to"`
	StartTime     time.Time `json:"date_time"`
	VehicleNumber string    `json:"vehicle_number"`
}

// GeofenceService evaluates positions against the stop rectangles of the
// driver's assigned route and handles in_zone transitions.
type GeofenceService interface {
	InZone(stops []domain.Stop, lat, lng float64) bool
	HandlePosition(ctx context.Context, driver *domain.Driver, stops []domain.Stop, lat, lng float64) (*ZoneTransition, error)
}

type ZoneTransition struct {
	WasInZone    bool
	NowInZone    bool
	ClosedTripID *uint
}

// Entered reports a false->true transition.
func (t *ZoneTransition) Entered() bool {
	return t.NowInZone && !t.WasInZone
}

type ProcessFareInput struct {
	PassengerUID string
	TripID       uint
	Fare         decimal.Decimal
	Method       domain.PaymentMethod
}

type DeviceBalanceAction string

const (
	DeviceBalanceTopup   DeviceBalanceAction = "topup"
	DeviceBalancePayment DeviceBalanceAction = "payment"
)

type DeviceBalanceInput struct {
	PassengerUID string
	NewBalance   decimal.Decimal
	Action       DeviceBalanceAction
	DeviceID     uint
}

type DeviceBalanceResult struct {
	Status     string          `json:"status"`
	Fare       decimal.Decimal `json:"fare"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// TripPayments is a trip's fare history with its total count.
type TripPayments struct {
	TotalCount int64            `json:"total_count"`
	Payments   []domain.Payment `json:"payments"`
}

type PaymentService interface {
	ProcessFare(ctx context.Context, in ProcessFareInput) (*domain.Payment, error)
	ProcessFareByQRToken(ctx context.Context, token, passengerUID string, fare decimal.Decimal) (*domain.Payment, error)
	ProcessDeviceBalanceUpdate(ctx context.Context, in DeviceBalanceInput) (*DeviceBalanceResult, error)

	// DriverSpend debits a driver's spendable balance (driver-side purchase).
	DriverSpend(ctx context.Context, driverUID string, amount decimal.Decimal) (decimal.Decimal, error)

	PaymentsByPassenger(ctx context.Context, passengerUID string) ([]domain.Payment, error)
	PaymentsByTrip(ctx context.Context, tripID uint) (*TripPayments, error)
}

type RegisterPassengerInput struct {
	Name          string
	NationalID    string
	Phone         string
	Email         string
	Password      string
	GovernorateID *uint
	CityID        *uint
}

type RegisterDriverInput struct {
	Name          string
	NationalID    string
	Phone         string
	Email         string
	Password      string
	LicenseNumber string
	GovernorateID *uint
	CityID        *uint
}

type StopInput struct {
	Name   string
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// AccountService owns registration and fleet/geography administration.
// Registration creates the actor and its wallet in one transaction.
type AccountService interface {
	RegisterPassenger(ctx context.Context, in RegisterPassengerInput) (*domain.Passenger, error)
	RegisterDriver(ctx context.Context, in RegisterDriverInput) (*domain.Driver, error)

	PassengerByUID(ctx context.Context, uid string) (*domain.Passenger, error)
	DriverByID(ctx context.Context, id uint) (*domain.Driver, error)
	DriverByUID(ctx context.Context, uid string) (*domain.Driver, error)

	// ResolveByPhone returns a tagged result rather than probing tables
	// sequentially at call sites; nil means no actor owns the phone.
	ResolveByPhone(ctx context.Context, phone string) (*domain.ActorRef, error)

	CreateVehicle(ctx context.Context, driverID uint, number string) (*domain.Vehicle, error)
	CreateRoute(ctx context.Context, cityID uint, stops []StopInput) (*domain.Route, error)
	CreateGovernorate(ctx context.Context, name string) (*domain.Governorate, error)
	CreateCity(ctx context.Context, governorateID uint, name string) (*domain.City, error)
	CreateDevice(ctx context.Context, name string) (*domain.Device, error)
	AssignDevice(ctx context.Context, driverID, deviceID uint) error

	// RegisterCard binds a physical NFC card uid to a passenger account.
	RegisterCard(ctx context.Context, passengerUID, cardUID string) (*domain.NFCCard, error)

	Governorates(ctx context.Context) ([]domain.Governorate, error)
	// Cities lists all cities, or only a governorate's when the id is set.
	Cities(ctx context.Context, governorateID *uint) ([]domain.City, error)
	RoutesByCity(ctx context.Context, cityID uint) ([]domain.Route, error)
	VehiclesByDriver(ctx context.Context, driverID uint) ([]domain.Vehicle, error)
}

// TokenPair carries the issued bearer tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Login(ctx context.Context, kind domain.ActorKind, phone, password string) (*TokenPair, error)
	// Refresh rotates the refresh token: the old one is revoked and a new
	// pair issued.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Validate returns the actor reference carried by a valid access token.
	Validate(ctx context.Context, token string) (*domain.ActorRef, error)
}

type LocationResult struct {
	LocationID uint `json:"location_id"`
	InZone     bool `json:"in_zone"`
}

// LocationService ingests device position pings: persist the reading, run
// the geofence transition for the assigned driver, publish the live position.
type LocationService interface {
	RecordLocation(ctx context.Context, deviceID uint, lat, lng float64) (*LocationResult, error)
}
