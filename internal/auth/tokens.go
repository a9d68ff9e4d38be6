package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/squiirlabs/marketplace/internal/domain"
)

type TokenPurpose string

const (
	PurposeAccess TokenPurpose = "access"
	PurposeVerify TokenPurpose = "verify"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongPurpose = errors.New("token issued for a different purpose")
)

type Claims struct {
	jwt.RegisteredClaims
	UserID  string       `json:"user_id"`
	Name    string       `json:"name,omitempty"`
	Email   string       `json:"email,omitempty"`
	Purpose TokenPurpose `json:"purpose"`
}

// TokenService signs and verifies HS256 bearer tokens. Access tokens carry
// the authenticated identity; verification tokens are short-lived and only
// good for the email verification endpoint.
type TokenService struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	verifyTTL time.Duration
}

func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: time.Hour,
		verifyTTL: time.Hour,
	}
}

func (s *TokenService) IssueAccess(user domain.User) (string, error) {
	return s.sign(&Claims{
		RegisteredClaims: s.registered(user.ID, s.accessTTL),
		UserID:           user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Purpose:          PurposeAccess,
	})
}

func (s *TokenService) IssueVerification(userID string) (string, error) {
	return s.sign(&Claims{
		RegisteredClaims: s.registered(userID, s.verifyTTL),
		UserID:           userID,
		Purpose:          PurposeVerify,
	})
}

func (s *TokenService) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a token, requiring the given purpose.
func (s *TokenService) Verify(tokenString string, purpose TokenPurpose) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}
