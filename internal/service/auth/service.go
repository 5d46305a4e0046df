package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

// Claims carries the account reference inside signed tokens. Kind
// distinguishes passenger tokens from driver tokens so a passenger token
// can never reach driver-only endpoints.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
	Type string `json:"type"` // "access" or "refresh"
}

type Service struct {
	passengers      ports.PassengerRepository
	drivers         ports.DriverRepository
	cache           ports.Cache
	secret          []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
	log             *zap.Logger
}

func NewService(
	passengers ports.PassengerRepository,
	drivers ports.DriverRepository,
	cache ports.Cache,
	secret string,
	accessDuration, refreshDuration time.Duration,
	log *zap.Logger,
) *Service {
	return &Service{
		passengers:      passengers,
		drivers:         drivers,
		cache:           cache,
		secret:          []byte(secret),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		log:             log,
	}
}

// Login authenticates by phone number within one account kind. The error is
// the same whether the account is missing or the password wrong.
func (s *Service) Login(ctx context.Context, kind domain.ActorKind, phone, password string) (*ports.TokenPair, error) {
	ref, hashed, err := s.lookup(ctx, kind, phone)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) != nil {
		return nil, domain.E(domain.CodeForbidden, "invalid credentials")
	}

	pair, err := s.issue(ref)
	if err != nil {
		return nil, err
	}

	s.log.Info("login",
		zap.String("kind", string(ref.Kind)),
		zap.Uint("actor_id", ref.ID),
	)
	return pair, nil
}

func (s *Service) lookup(ctx context.Context, kind domain.ActorKind, phone string) (domain.ActorRef, string, error) {
	switch kind {
	case domain.ActorKindPassenger:
		p, err := s.passengers.FindByPhone(ctx, phone)
		if err != nil {
			return domain.ActorRef{}, "", err
		}
		if p == nil || !p.IsActive {
			return domain.ActorRef{}, "", domain.E(domain.CodeForbidden, "invalid credentials")
		}
		return p.Ref(), p.Password, nil
	case domain.ActorKindDriver:
		d, err := s.drivers.FindByPhone(ctx, phone)
		if err != nil {
			return domain.ActorRef{}, "", err
		}
		if d == nil || !d.IsActive {
			return domain.ActorRef{}, "", domain.E(domain.CodeForbidden, "invalid credentials")
		}
		return d.Ref(), d.Password, nil
	default:
		return domain.ActorRef{}, "", domain.Errf(domain.CodeValidation, "unknown account kind %q", kind)
	}
}

// Refresh exchanges a valid, unrevoked refresh token for a new pair and
// revokes the old one so each refresh token is single-use.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != "refresh" {
		return nil, domain.E(domain.CodeForbidden, "not a refresh token")
	}
	if s.isRevoked(ctx, claims.ID) {
		return nil, domain.E(domain.CodeForbidden, "token revoked")
	}

	ref, err := refFromClaims(claims)
	if err != nil {
		return nil, err
	}

	if err := s.revoke(ctx, claims.ID); err != nil {
		s.log.Warn("failed to revoke refresh token", zap.Error(err))
	}
	return s.issue(ref)
}

// Validate checks an access token and returns the account it belongs to.
func (s *Service) Validate(ctx context.Context, token string) (*domain.ActorRef, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != "access" {
		return nil, domain.E(domain.CodeForbidden, "not an access token")
	}
	if s.isRevoked(ctx, claims.ID) {
		return nil, domain.E(domain.CodeForbidden, "token revoked")
	}

	ref, err := refFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (s *Service) issue(ref domain.ActorRef) (*ports.TokenPair, error) {
	access, err := s.sign(ref, "access", s.accessDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(ref, "refresh", s.refreshDuration)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(ref domain.ActorRef, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(ref.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Kind: string(ref.Kind),
		Type: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, domain.E(domain.CodeForbidden, "invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.E(domain.CodeForbidden, "invalid token claims")
	}
	return claims, nil
}

func refFromClaims(claims *Claims) (domain.ActorRef, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return domain.ActorRef{}, domain.E(domain.CodeForbidden, "invalid token subject")
	}
	kind := domain.ActorKind(claims.Kind)
	if kind != domain.ActorKindPassenger && kind != domain.ActorKindDriver {
		return domain.ActorRef{}, domain.E(domain.CodeForbidden, "invalid token kind")
	}
	return domain.ActorRef{Kind: kind, ID: uint(id)}, nil
}

func (s *Service) revoke(ctx context.Context, tokenID string) error {
	if s.cache == nil {
		return nil
	}
	ttl := s.refreshDuration
	if s.accessDuration > ttl {
		ttl = s.accessDuration
	}
	return s.cache.Set(ctx, "revoked_token:"+tokenID, "revoked", ttl)
}

func (s *Service) isRevoked(ctx context.Context, tokenID string) bool {
	if s.cache == nil {
		return false
	}
	val, err := s.cache.Get(ctx, "revoked_token:"+tokenID)
	if err != nil {
		return false
	}
	return val == "revoked"
}
