package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/pkg/config"
)

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		code   domain.Code
		status int
	}{
		{domain.CodeNotFound, fiber.StatusNotFound},
		{domain.CodeValidation, fiber.StatusBadRequest},
		{domain.CodeInsufficientFunds, fiber.StatusBadRequest},
		{domain.CodeConflict, fiber.StatusConflict},
		{domain.CodeForbidden, fiber.StatusForbidden},
		{domain.CodeExpired, fiber.StatusGone},
		{domain.CodeStorage, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
			app.Get("/", func(c *fiber.Ctx) error {
				return domain.E(tc.code, "boom")
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Errorf("code %s: expected status %d, got %d", tc.code, tc.status, resp.StatusCode)
			}
		})
	}
}

type stubAuthService struct {
	ref *domain.ActorRef
	err error
}

func (s *stubAuthService) Login(ctx context.Context, kind domain.ActorKind, phone, password string) (*ports.TokenPair, error) {
	return nil, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return nil, nil
}

func (s *stubAuthService) Validate(ctx context.Context, token string) (*domain.ActorRef, error) {
	return s.ref, s.err
}

func TestAuthRequired(t *testing.T) {
	svc := &stubAuthService{ref: &domain.ActorRef{Kind: domain.ActorKindDriver, ID: 3}}
	app := fiber.New()
	app.Get("/", AuthRequired(svc), func(c *fiber.Ctx) error {
		if ActorID(c) != 3 {
			t.Errorf("expected actor id 3, got %d", ActorID(c))
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/", AuthRequired(&stubAuthService{}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	svc := &stubAuthService{err: domain.E(domain.CodeForbidden, "invalid token")}
	app := fiber.New()
	app.Get("/", AuthRequired(svc), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestDriverOnly(t *testing.T) {
	cases := []struct {
		kind   domain.ActorKind
		status int
	}{
		{domain.ActorKindDriver, fiber.StatusOK},
		{domain.ActorKindPassenger, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			svc := &stubAuthService{ref: &domain.ActorRef{Kind: tc.kind, ID: 1}}
			app := fiber.New()
			app.Get("/", AuthRequired(svc), DriverOnly(), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer token")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Errorf("kind %s: expected %d, got %d", tc.kind, tc.status, resp.StatusCode)
			}
		})
	}
}

func TestPassengerOnly(t *testing.T) {
	cases := []struct {
		kind   domain.ActorKind
		status int
	}{
		{domain.ActorKindPassenger, fiber.StatusOK},
		{domain.ActorKindDriver, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			svc := &stubAuthService{ref: &domain.ActorRef{Kind: tc.kind, ID: 1}}
			app := fiber.New()
			app.Get("/", AuthRequired(svc), PassengerOnly(), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer token")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Errorf("kind %s: expected %d, got %d", tc.kind, tc.status, resp.StatusCode)
			}
		})
	}
}

func TestCircuitBreakerOpensAtConfiguredThreshold(t *testing.T) {
	cfg := config.CircuitBreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
	}
	app := fiber.New()
	app.Use(CircuitBreaker(cfg, zap.NewNop()))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.ErrInternalServerError
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusInternalServerError {
			t.Fatalf("request %d: expected 500 while closed, got %d", i, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503 once the breaker opened, got %d", resp.StatusCode)
	}
}
