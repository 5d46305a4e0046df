package account

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/pkg/randtoken"
)

const (
	passengerUIDLength = 10
	driverUIDLength    = 12
)

var (
	nationalIDPattern = regexp.MustCompile(`^\d{14}$`)
	phonePattern      = regexp.MustCompile(`^\d{11}$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Service manages passenger and driver accounts and the fleet/geography
// records trips depend on. Registration creates the account and its wallet
// atomically, so an account without a wallet cannot exist.
type Service struct {
	txm        ports.TxManager
	passengers ports.PassengerRepository
	drivers    ports.DriverRepository
	wallets    ports.WalletRepository
	vehicles   ports.VehicleRepository
	routes     ports.RouteRepository
	geo        ports.GeoRepository
	devices    ports.DeviceRepository
	cards      ports.NFCCardRepository
	log        *zap.Logger
}

func NewService(
	txm ports.TxManager,
	passengers ports.PassengerRepository,
	drivers ports.DriverRepository,
	wallets ports.WalletRepository,
	vehicles ports.VehicleRepository,
	routes ports.RouteRepository,
	geo ports.GeoRepository,
	devices ports.DeviceRepository,
	cards ports.NFCCardRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		txm:        txm,
		passengers: passengers,
		drivers:    drivers,
		wallets:    wallets,
		vehicles:   vehicles,
		routes:     routes,
		geo:        geo,
		devices:    devices,
		cards:      cards,
		log:        log,
	}
}

func (s *Service) RegisterPassenger(ctx context.Context, in ports.RegisterPassengerInput) (*domain.Passenger, error) {
	if err := s.validateIdentity(ctx, in.NationalID, in.Phone, in.Email); err != nil {
		return nil, err
	}

	hashed, err := hashIfNeeded(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	p := &domain.Passenger{
		UID:           randtoken.New(passengerUIDLength),
		Name:          strings.TrimSpace(in.Name),
		NationalID:    in.NationalID,
		Phone:         in.Phone,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Password:      hashed,
		GovernorateID: in.GovernorateID,
		CityID:        in.CityID,
		IsActive:      true,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.passengers.Save(ctx, p); err != nil {
			return err
		}
		return s.wallets.CreatePassengerWallet(ctx, &domain.PassengerWallet{PassengerID: p.ID})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("passenger registered", zap.Uint("passenger_id", p.ID), zap.String("uid", p.UID))
	return p, nil
}

func (s *Service) RegisterDriver(ctx context.Context, in ports.RegisterDriverInput) (*domain.Driver, error) {
	if err := s.validateIdentity(ctx, in.NationalID, in.Phone, in.Email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.LicenseNumber) == "" {
		return nil, domain.E(domain.CodeValidation, "license number is required")
	}

	hashed, err := hashIfNeeded(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	d := &domain.Driver{
		UID:           randtoken.New(driverUIDLength),
		Name:          strings.TrimSpace(in.Name),
		NationalID:    in.NationalID,
		Phone:         in.Phone,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Password:      hashed,
		LicenseNumber: strings.TrimSpace(in.LicenseNumber),
		GovernorateID: in.GovernorateID,
		CityID:        in.CityID,
		IsActive:      true,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.drivers.Save(ctx, d); err != nil {
			return err
		}
		return s.wallets.CreateDriverWallet(ctx, &domain.DriverWallet{DriverID: d.ID})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("driver registered", zap.Uint("driver_id", d.ID), zap.String("uid", d.UID))
	return d, nil
}

// validateIdentity enforces the identity document formats and checks phone
// and national id uniqueness across both account kinds, so a passenger and
// a driver can never share a phone number or national id.
func (s *Service) validateIdentity(ctx context.Context, nationalID, phone, email string) error {
	if !nationalIDPattern.MatchString(nationalID) {
		return domain.E(domain.CodeValidation, "national id must be exactly 14 digits")
	}
	if !phonePattern.MatchString(phone) {
		return domain.E(domain.CodeValidation, "phone must be exactly 11 digits")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return domain.E(domain.CodeValidation, "invalid email address")
	}

	if p, err := s.passengers.FindByPhone(ctx, phone); err != nil {
		return err
	} else if p != nil {
		return domain.E(domain.CodeValidation, "phone already registered")
	}
	if d, err := s.drivers.FindByPhone(ctx, phone); err != nil {
		return err
	} else if d != nil {
		return domain.E(domain.CodeValidation, "phone already registered")
	}

	if p, err := s.passengers.FindByNationalID(ctx, nationalID); err != nil {
		return err
	} else if p != nil {
		return domain.E(domain.CodeValidation, "national id already registered")
	}
	if d, err := s.drivers.FindByNationalID(ctx, nationalID); err != nil {
		return err
	} else if d != nil {
		return domain.E(domain.CodeValidation, "national id already registered")
	}
	return nil
}

func (s *Service) PassengerByUID(ctx context.Context, uid string) (*domain.Passenger, error) {
	p, err := s.passengers.FindByUID(ctx, strings.TrimSpace(uid))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.E(domain.CodeNotFound, "passenger not found")
	}
	return p, nil
}

func (s *Service) DriverByID(ctx context.Context, id uint) (*domain.Driver, error) {
	d, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.E(domain.CodeNotFound, "driver not found")
	}
	return d, nil
}

func (s *Service) DriverByUID(ctx context.Context, uid string) (*domain.Driver, error) {
	d, err := s.drivers.FindByUID(ctx, strings.TrimSpace(uid))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.E(domain.CodeNotFound, "driver not found")
	}
	return d, nil
}

// ResolveByPhone looks a phone number up across both account kinds;
// passengers take precedence when (contrary to the uniqueness rule above)
// both kinds hold the number.
func (s *Service) ResolveByPhone(ctx context.Context, phone string) (*domain.ActorRef, error) {
	if p, err := s.passengers.FindByPhone(ctx, phone); err != nil {
		return nil, err
	} else if p != nil {
		ref := p.Ref()
		return &ref, nil
	}
	if d, err := s.drivers.FindByPhone(ctx, phone); err != nil {
		return nil, err
	} else if d != nil {
		ref := d.Ref()
		return &ref, nil
	}
	return nil, nil
}

func (s *Service) CreateVehicle(ctx context.Context, driverID uint, number string) (*domain.Vehicle, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.E(domain.CodeValidation, "vehicle number is required")
	}
	d, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.E(domain.CodeNotFound, "driver not found")
	}

	v := &domain.Vehicle{Number: number, DriverID: driverID}
	if err := s.vehicles.Save(ctx, v); err != nil {
		return nil, err
	}
	s.log.Info("vehicle created", zap.Uint("vehicle_id", v.ID), zap.String("number", v.Number))
	return v, nil
}

func (s *Service) CreateRoute(ctx context.Context, cityID uint, stops []ports.StopInput) (*domain.Route, error) {
	if len(stops) < 2 {
		return nil, domain.E(domain.CodeValidation, "a route needs at least two stops")
	}
	for _, st := range stops {
		if strings.TrimSpace(st.Name) == "" {
			return nil, domain.E(domain.CodeValidation, "stop name is required")
		}
		if st.MinLat > st.MaxLat || st.MinLng > st.MaxLng {
			return nil, domain.Errf(domain.CodeValidation, "stop %q has an inverted bounding box", st.Name)
		}
	}

	r := &domain.Route{CityID: cityID}
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.routes.Save(ctx, r); err != nil {
			return err
		}
		for _, st := range stops {
			stop := &domain.Stop{
				RouteID: r.ID,
				Name:    strings.TrimSpace(st.Name),
				MinLat:  st.MinLat,
				MinLng:  st.MinLng,
				MaxLat:  st.MaxLat,
				MaxLng:  st.MaxLng,
			}
			if err := s.routes.AddStop(ctx, stop); err != nil {
				return err
			}
			r.Stops = append(r.Stops, *stop)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("route created", zap.Uint("route_id", r.ID), zap.Int("stops", len(r.Stops)))
	return r, nil
}

func (s *Service) CreateGovernorate(ctx context.Context, name string) (*domain.Governorate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.E(domain.CodeValidation, "governorate name is required")
	}
	g := &domain.Governorate{Name: name}
	if err := s.geo.SaveGovernorate(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) CreateCity(ctx context.Context, governorateID uint, name string) (*domain.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.E(domain.CodeValidation, "city name is required")
	}
	c := &domain.City{GovernorateID: &governorateID, Name: name}
	if err := s.geo.SaveCity(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) CreateDevice(ctx context.Context, name string) (*domain.Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.E(domain.CodeValidation, "device name is required")
	}
	d := &domain.Device{Name: name, CreatedAt: time.Now()}
	if err := s.devices.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// AssignDevice binds an NFC validator to a driver; a device serves one
// driver at a time.
func (s *Service) AssignDevice(ctx context.Context, driverID, deviceID uint) error {
	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return err
	}
	if driver == nil {
		return domain.E(domain.CodeNotFound, "driver not found")
	}

	device, err := s.devices.FindByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if device == nil {
		return domain.E(domain.CodeNotFound, "device not found")
	}

	holder, err := s.drivers.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return err
	}
	if holder != nil && holder.ID != driverID {
		return domain.E(domain.CodeConflict, "device already assigned to another driver")
	}

	if err := s.drivers.AssignDevice(ctx, driverID, deviceID); err != nil {
		return err
	}
	s.log.Info("device assigned", zap.Uint("driver_id", driverID), zap.Uint("device_id", deviceID))
	return nil
}

// RegisterCard binds a physical NFC card uid to a passenger; a card serves
// one passenger at a time.
func (s *Service) RegisterCard(ctx context.Context, passengerUID, cardUID string) (*domain.NFCCard, error) {
	cardUID = strings.TrimSpace(cardUID)
	if cardUID == "" {
		return nil, domain.E(domain.CodeValidation, "card uid is required")
	}

	p, err := s.PassengerByUID(ctx, passengerUID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cards.FindByUID(ctx, cardUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.E(domain.CodeConflict, "card already registered")
	}

	card := &domain.NFCCard{UID: cardUID, PassengerID: p.ID}
	if err := s.cards.Save(ctx, card); err != nil {
		return nil, err
	}
	s.log.Info("nfc card registered", zap.Uint("passenger_id", p.ID), zap.String("card_uid", cardUID))
	return card, nil
}

func (s *Service) Governorates(ctx context.Context) ([]domain.Governorate, error) {
	return s.geo.ListGovernorates(ctx)
}

func (s *Service) Cities(ctx context.Context, governorateID *uint) ([]domain.City, error) {
	return s.geo.ListCities(ctx, governorateID)
}

func (s *Service) RoutesByCity(ctx context.Context, cityID uint) ([]domain.Route, error) {
	if cityID == 0 {
		return nil, domain.E(domain.CodeValidation, "city id is required")
	}
	return s.routes.ListByCity(ctx, cityID)
}

func (s *Service) VehiclesByDriver(ctx context.Context, driverID uint) ([]domain.Vehicle, error) {
	return s.vehicles.FindByDriver(ctx, driverID)
}

// hashIfNeeded leaves already-hashed inputs alone so accounts imported from
// an existing system keep their hashes.
func hashIfNeeded(password string) (string, error) {
	if password == "" {
		return "", domain.E(domain.CodeValidation, "password is required")
	}
	if strings.HasPrefix(password, "$2a$") || strings.HasPrefix(password, "$2b$") {
		return password, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
