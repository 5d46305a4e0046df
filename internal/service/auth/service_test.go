package auth

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/mocks"
)

const testSecret = "test-secret-please-rotate"

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

func memoryCache() *mocks.MockCache {
	store := map[string]string{}
	return &mocks.MockCache{
		GetFunc: func(ctx context.Context, key string) (string, error) {
			return store[key], nil
		},
		SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
			store[key] = value.(string)
			return nil
		},
	}
}

func newTestService(t *testing.T, password string) *Service {
	t.Helper()
	passengers := &mocks.MockPassengerRepository{
		FindByPhoneFunc: func(ctx context.Context, phone string) (*domain.Passenger, error) {
			if phone == "01012345678" {
				return &domain.Passenger{ID: 7, Phone: phone, Password: hash(t, password), IsActive: true}, nil
			}
			return nil, nil
		},
	}
	drivers := &mocks.MockDriverRepository{
		FindByPhoneFunc: func(ctx context.Context, phone string) (*domain.Driver, error) {
			if phone == "01098765432" {
				return &domain.Driver{ID: 3, Phone: phone, Password: hash(t, password), IsActive: true}, nil
			}
			return nil, nil
		},
	}
	return NewService(passengers, drivers, memoryCache(), testSecret, 15*time.Minute, 7*24*time.Hour, zap.NewNop())
}

func TestLoginAndValidate(t *testing.T) {
	svc := newTestService(t, "passenger-pass")

	pair, err := svc.Login(context.Background(), domain.ActorKindPassenger, "01012345678", "passenger-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens issued")
	}

	ref, err := svc.Validate(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != domain.ActorKindPassenger || ref.ID != 7 {
		t.Errorf("expected passenger 7, got %+v", ref)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, "passenger-pass")

	_, err := svc.Login(context.Background(), domain.ActorKindPassenger, "01012345678", "wrong")
	if !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestLoginUnknownPhone(t *testing.T) {
	svc := newTestService(t, "passenger-pass")

	_, err := svc.Login(context.Background(), domain.ActorKindPassenger, "01000000000", "passenger-pass")
	if !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestLoginKindIsScoped(t *testing.T) {
	svc := newTestService(t, "driver-pass")

	// The phone belongs to a driver; a passenger login must not find it.
	_, err := svc.Login(context.Background(), domain.ActorKindPassenger, "01098765432", "driver-pass")
	if !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	pair, err := svc.Login(context.Background(), domain.ActorKindDriver, "01098765432", "driver-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref, err := svc.Validate(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != domain.ActorKindDriver || ref.ID != 3 {
		t.Errorf("expected driver 3, got %+v", ref)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	passengers := &mocks.MockPassengerRepository{
		FindByPhoneFunc: func(ctx context.Context, phone string) (*domain.Passenger, error) {
			return &domain.Passenger{ID: 7, Phone: phone, Password: hash(t, "pass"), IsActive: false}, nil
		},
	}
	svc := NewService(passengers, &mocks.MockDriverRepository{}, memoryCache(), testSecret, time.Minute, time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), domain.ActorKindPassenger, "01012345678", "pass")
	if !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN for an inactive account, got %v", err)
	}
}

func TestValidateRejectsRefreshToken(t *testing.T) {
	svc := newTestService(t, "passenger-pass")

	pair, err := svc.Login(context.Background(), domain.ActorKindPassenger, "01012345678", "passenger-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Validate(context.Background(), pair.RefreshToken); !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("a refresh token must not validate as an access token, got %v", err)
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t, "passenger-pass")
	other := NewService(&mocks.MockPassengerRepository{}, &mocks.MockDriverRepository{}, nil, "another-secret", time.Minute, time.Hour, zap.NewNop())

	token, err := other.sign(domain.ActorRef{Kind: domain.ActorKindPassenger, ID: 7}, "access", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Validate(context.Background(), token); !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN for a foreign signature, got %v", err)
	}
}

func TestRefreshRotates(t *testing.T) {
	svc := newTestService(t, "passenger-pass")

	pair, err := svc.Login(context.Background(), domain.ActorKindPassenger, "01012345678", "passenger-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.AccessToken == "" || next.RefreshToken == "" {
		t.Fatal("expected a fresh pair")
	}

	// The consumed refresh token is single-use.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN on reuse, got %v", err)
	}

	// The new pair keeps working.
	if _, err := svc.Validate(context.Background(), next.AccessToken); err != nil {
		t.Fatalf("rotated access token must validate: %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestService(t, "passenger-pass")

	pair, err := svc.Login(context.Background(), domain.ActorKindPassenger, "01012345678", "passenger-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("an access token must not refresh, got %v", err)
	}
}
