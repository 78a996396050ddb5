package service

import (
	"testing"
	"time"
)

func newTestTokenService(secret string) *TokenService {
	return NewTokenService(secret, time.Hour, 24*time.Hour)
}

func TestIssuePairAndParse_Success(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("super-secret")

	pair, err := s.IssuePair("user-123")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", pair)
	}

	userID, err := s.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccess error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", userID, "user-123")
	}
}

func TestParseAccess_Expired(t *testing.T) {
	t.Parallel()

	s := NewTokenService("secret", -1*time.Second, time.Hour)

	pair, err := s.IssuePair("u1")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	if _, err := s.ParseAccess(pair.AccessToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseAccess_WrongSecret(t *testing.T) {
	t.Parallel()

	pair, err := newTestTokenService("right-secret").IssuePair("u2")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	if _, err := newTestTokenService("wrong-secret").ParseAccess(pair.AccessToken); err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestParseAccess_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := newTestTokenService("k").ParseAccess("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}

func TestParseAccess_RejectsRefreshToken(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("k")
	pair, err := s.IssuePair("u3")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	if _, err := s.ParseAccess(pair.RefreshToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for refresh token, got %v", err)
	}
}

func TestRefresh_Success(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("k")
	pair, err := s.IssuePair("u4")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	access, err := s.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	userID, err := s.ParseAccess(access)
	if err != nil {
		t.Fatalf("ParseAccess error: %v", err)
	}
	if userID != "u4" {
		t.Fatalf("userID mismatch: got %q want %q", userID, "u4")
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("k")
	pair, err := s.IssuePair("u5")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	if _, err := s.Refresh(pair.AccessToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken when refreshing with access token, got %v", err)
	}
}
