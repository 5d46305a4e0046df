package account

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/mocks"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type fixture struct {
	passengers *mocks.MockPassengerRepository
	drivers    *mocks.MockDriverRepository
	wallets    *mocks.MockWalletRepository
	vehicles   *mocks.MockVehicleRepository
	routes     *mocks.MockRouteRepository
	geo        *mocks.MockGeoRepository
	devices    *mocks.MockDeviceRepository
	cards      *mocks.MockNFCCardRepository
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		passengers: &mocks.MockPassengerRepository{},
		drivers:    &mocks.MockDriverRepository{},
		wallets:    &mocks.MockWalletRepository{},
		vehicles:   &mocks.MockVehicleRepository{},
		routes:     &mocks.MockRouteRepository{},
		geo:        &mocks.MockGeoRepository{},
		devices:    &mocks.MockDeviceRepository{},
		cards:      &mocks.MockNFCCardRepository{},
	}
	f.svc = NewService(&mocks.MockTxManager{}, f.passengers, f.drivers, f.wallets, f.vehicles, f.routes, f.geo, f.devices, f.cards, zap.NewNop())
	return f
}

func validPassengerInput() ports.RegisterPassengerInput {
	return ports.RegisterPassengerInput{
		Name:       "Ahmed Hassan",
		NationalID: "29801011234567",
		Phone:      "01012345678",
		Email:      "ahmed@example.com",
		Password:   "s3cret-pass",
	}
}

func TestRegisterPassenger(t *testing.T) {
	f := newFixture()
	f.passengers.SaveFunc = func(ctx context.Context, p *domain.Passenger) error {
		p.ID = 7
		return nil
	}
	var wallet *domain.PassengerWallet
	f.wallets.CreatePassengerWalletFunc = func(ctx context.Context, w *domain.PassengerWallet) error {
		wallet = w
		return nil
	}

	p, err := f.svc.RegisterPassenger(context.Background(), validPassengerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.UID) != passengerUIDLength {
		t.Errorf("expected a %d character uid, got %q", passengerUIDLength, p.UID)
	}
	if wallet == nil || wallet.PassengerID != 7 {
		t.Errorf("expected a wallet for passenger 7, got %+v", wallet)
	}
	if p.Password == "s3cret-pass" {
		t.Error("password must be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(p.Password), []byte("s3cret-pass")) != nil {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestRegisterPassengerIdentityFormats(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name   string
		mutate func(*ports.RegisterPassengerInput)
	}{
		{"short national id", func(in *ports.RegisterPassengerInput) { in.NationalID = "123" }},
		{"non-numeric national id", func(in *ports.RegisterPassengerInput) { in.NationalID = "2980101123456a" }},
		{"short phone", func(in *ports.RegisterPassengerInput) { in.Phone = "0101234" }},
		{"non-numeric phone", func(in *ports.RegisterPassengerInput) { in.Phone = "0101234567x" }},
		{"bad email", func(in *ports.RegisterPassengerInput) { in.Email = "not-an-email" }},
		{"empty password", func(in *ports.RegisterPassengerInput) { in.Password = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validPassengerInput()
			tc.mutate(&in)
			if _, err := f.svc.RegisterPassenger(context.Background(), in); !domain.IsCode(err, domain.CodeValidation) {
				t.Errorf("expected VALIDATION, got %v", err)
			}
		})
	}
}

func TestRegisterPassengerPhoneHeldByDriver(t *testing.T) {
	f := newFixture()
	f.drivers.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.Driver, error) {
		return &domain.Driver{ID: 3, Phone: phone}, nil
	}

	_, err := f.svc.RegisterPassenger(context.Background(), validPassengerInput())
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("phone uniqueness must hold across account kinds, got %v", err)
	}
}

func TestRegisterPassengerNationalIDHeldByDriver(t *testing.T) {
	f := newFixture()
	f.drivers.FindByNationalIDFunc = func(ctx context.Context, nationalID string) (*domain.Driver, error) {
		return &domain.Driver{ID: 3, NationalID: nationalID}, nil
	}

	_, err := f.svc.RegisterPassenger(context.Background(), validPassengerInput())
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("national id uniqueness must hold across account kinds, got %v", err)
	}
}

func TestRegisterPassengerKeepsImportedHash(t *testing.T) {
	f := newFixture()
	imported := "$2a$10$abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopq"
	in := validPassengerInput()
	in.Password = imported

	p, err := f.svc.RegisterPassenger(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Password != imported {
		t.Error("an already-hashed password must be stored unchanged")
	}
}

func TestRegisterDriver(t *testing.T) {
	f := newFixture()
	f.drivers.SaveFunc = func(ctx context.Context, d *domain.Driver) error {
		d.ID = 3
		return nil
	}
	var wallet *domain.DriverWallet
	f.wallets.CreateDriverWalletFunc = func(ctx context.Context, w *domain.DriverWallet) error {
		wallet = w
		return nil
	}

	d, err := f.svc.RegisterDriver(context.Background(), ports.RegisterDriverInput{
		Name:          "Mohamed Ali",
		NationalID:    "29801011234567",
		Phone:         "01098765432",
		Password:      "driver-pass",
		LicenseNumber: "DL-556677",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.UID) != driverUIDLength {
		t.Errorf("expected a %d character uid, got %q", driverUIDLength, d.UID)
	}
	if wallet == nil || wallet.DriverID != 3 {
		t.Errorf("expected a wallet for driver 3, got %+v", wallet)
	}
	if !d.IsActive {
		t.Error("a new driver must be active")
	}
}

func TestRegisterDriverRequiresLicense(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RegisterDriver(context.Background(), ports.RegisterDriverInput{
		Name:       "Mohamed Ali",
		NationalID: "29801011234567",
		Phone:      "01098765432",
		Password:   "driver-pass",
	})
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestRegisterRollsBackWhenWalletFails(t *testing.T) {
	f := newFixture()
	f.wallets.CreatePassengerWalletFunc = func(ctx context.Context, w *domain.PassengerWallet) error {
		return domain.E(domain.CodeStorage, "wallet insert failed")
	}

	_, err := f.svc.RegisterPassenger(context.Background(), validPassengerInput())
	if err == nil {
		t.Fatal("a wallet failure must fail the registration")
	}
}

func TestCreateVehicleUnknownDriver(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateVehicle(context.Background(), 3, "ABC-123")
	if !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateRoute(t *testing.T) {
	f := newFixture()
	f.routes.SaveFunc = func(ctx context.Context, r *domain.Route) error {
		r.ID = 8
		return nil
	}
	var stops []*domain.Stop
	f.routes.AddStopFunc = func(ctx context.Context, s *domain.Stop) error {
		stops = append(stops, s)
		return nil
	}

	r, err := f.svc.CreateRoute(context.Background(), 1, []ports.StopInput{
		{Name: "Ramses", MinLat: 30.00, MinLng: 31.00, MaxLat: 30.10, MaxLng: 31.10},
		{Name: "Giza", MinLat: 29.80, MinLng: 31.00, MaxLat: 29.90, MaxLng: 31.10},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stops) != 2 {
		t.Fatalf("expected 2 stops persisted, got %d", len(stops))
	}
	for _, s := range stops {
		if s.RouteID != 8 {
			t.Errorf("stop %q not linked to route 8: %+v", s.Name, s)
		}
	}
	if r.DisplayName() != "Ramses - Giza" {
		t.Errorf("unexpected display name %q", r.DisplayName())
	}
}

func TestCreateRouteValidation(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.CreateRoute(context.Background(), 1, []ports.StopInput{
		{Name: "only one", MinLat: 1, MinLng: 1, MaxLat: 2, MaxLng: 2},
	}); !domain.IsCode(err, domain.CodeValidation) {
		t.Errorf("single stop: expected VALIDATION, got %v", err)
	}

	if _, err := f.svc.CreateRoute(context.Background(), 1, []ports.StopInput{
		{Name: "a", MinLat: 1, MinLng: 1, MaxLat: 2, MaxLng: 2},
		{Name: "inverted", MinLat: 5, MinLng: 1, MaxLat: 2, MaxLng: 2},
	}); !domain.IsCode(err, domain.CodeValidation) {
		t.Errorf("inverted bbox: expected VALIDATION, got %v", err)
	}
}

func TestAssignDevice(t *testing.T) {
	f := newFixture()
	f.drivers.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Driver, error) {
		return &domain.Driver{ID: id}, nil
	}
	f.devices.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Device, error) {
		return &domain.Device{ID: id}, nil
	}
	var assignedDriver, assignedDevice uint
	f.drivers.AssignDeviceFunc = func(ctx context.Context, id uint, deviceID uint) error {
		assignedDriver, assignedDevice = id, deviceID
		return nil
	}

	if err := f.svc.AssignDevice(context.Background(), 3, 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assignedDriver != 3 || assignedDevice != 9 {
		t.Errorf("unexpected assignment: driver %d device %d", assignedDriver, assignedDevice)
	}
}

func TestAssignDeviceHeldByAnotherDriver(t *testing.T) {
	f := newFixture()
	f.drivers.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Driver, error) {
		return &domain.Driver{ID: id}, nil
	}
	f.devices.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Device, error) {
		return &domain.Device{ID: id}, nil
	}
	f.drivers.FindByDeviceIDFunc = func(ctx context.Context, deviceID uint) (*domain.Driver, error) {
		return &domain.Driver{ID: 99}, nil
	}

	err := f.svc.AssignDevice(context.Background(), 3, 9)
	if !domain.IsCode(err, domain.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestResolveByPhone(t *testing.T) {
	f := newFixture()
	f.drivers.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.Driver, error) {
		if phone == "01098765432" {
			return &domain.Driver{ID: 3, Phone: phone}, nil
		}
		return nil, nil
	}

	ref, err := f.svc.ResolveByPhone(context.Background(), "01098765432")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref == nil || ref.Kind != domain.ActorKindDriver || ref.ID != 3 {
		t.Errorf("expected driver 3, got %+v", ref)
	}

	ref, err = f.svc.ResolveByPhone(context.Background(), "01000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != nil {
		t.Errorf("expected nil for an unknown phone, got %+v", ref)
	}
}

func TestRegisterCard(t *testing.T) {
	f := newFixture()
	f.passengers.FindByUIDFunc = func(ctx context.Context, uid string) (*domain.Passenger, error) {
		if uid == "PASS-UID-01" {
			return &domain.Passenger{ID: 7, UID: uid}, nil
		}
		return nil, nil
	}
	var saved *domain.NFCCard
	f.cards.SaveFunc = func(ctx context.Context, c *domain.NFCCard) error {
		c.ID = 1
		saved = c
		return nil
	}

	card, err := f.svc.RegisterCard(context.Background(), "PASS-UID-01", "CARD-AA-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.PassengerID != 7 || card.UID != "CARD-AA-11" {
		t.Errorf("unexpected card: %+v", card)
	}
	if saved == nil {
		t.Error("card was not persisted")
	}
}

func TestRegisterCardAlreadyBound(t *testing.T) {
	f := newFixture()
	f.passengers.FindByUIDFunc = func(ctx context.Context, uid string) (*domain.Passenger, error) {
		return &domain.Passenger{ID: 7, UID: uid}, nil
	}
	f.cards.FindByUIDFunc = func(ctx context.Context, uid string) (*domain.NFCCard, error) {
		return &domain.NFCCard{ID: 1, UID: uid, PassengerID: 99}, nil
	}

	_, err := f.svc.RegisterCard(context.Background(), "PASS-UID-01", "CARD-AA-11")
	if !domain.IsCode(err, domain.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRoutesByCityRequiresCity(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RoutesByCity(context.Background(), 0)
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestCitiesPassesGovernorateFilter(t *testing.T) {
	f := newFixture()
	var gotFilter *uint
	f.geo.ListCitiesFunc = func(ctx context.Context, governorateID *uint) ([]domain.City, error) {
		gotFilter = governorateID
		return []domain.City{{ID: 4, Name: "Giza"}}, nil
	}

	id := uint(2)
	cities, err := f.svc.Cities(context.Background(), &id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter == nil || *gotFilter != 2 {
		t.Errorf("expected governorate filter 2, got %v", gotFilter)
	}
	if len(cities) != 1 || cities[0].Name != "Giza" {
		t.Errorf("unexpected cities: %v", cities)
	}
}

func TestVehiclesByDriver(t *testing.T) {
	f := newFixture()
	f.vehicles.FindByDriverFunc = func(ctx context.Context, driverID uint) ([]domain.Vehicle, error) {
		if driverID != 3 {
			return nil, nil
		}
		return []domain.Vehicle{{ID: 5, Number: "ABC-123", DriverID: 3}}, nil
	}

	vehicles, err := f.svc.VehiclesByDriver(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 1 || vehicles[0].Number != "ABC-123" {
		t.Errorf("unexpected vehicles: %v", vehicles)
	}
}
