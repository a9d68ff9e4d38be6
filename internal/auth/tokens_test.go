package auth

import (
	"testing"

	"github.com/squiirlabs/marketplace/internal/domain"
)

func TestTokenService_Verify(t *testing.T) {
	svc := NewTokenService("test-secret", "marketplace")
	user := domain.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}

	t.Run("round trips access token claims", func(t *testing.T) {
		token, err := svc.IssueAccess(user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		claims, err := svc.Verify(token, PurposeAccess)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.UserID != "user-1" {
			t.Errorf("expected user-1, got %s", claims.UserID)
		}
		if claims.Email != "ada@example.com" {
			t.Errorf("expected ada@example.com, got %s", claims.Email)
		}
	})

	t.Run("rejects verification token on access endpoints", func(t *testing.T) {
		token, err := svc.IssueVerification("user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := svc.Verify(token, PurposeAccess); err != ErrWrongPurpose {
			t.Errorf("expected ErrWrongPurpose, got %v", err)
		}
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewTokenService("another-secret", "marketplace")
		token, err := other.IssueAccess(user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := svc.Verify(token, PurposeAccess); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := svc.Verify("not-a-token", PurposeAccess); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
