package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/pixkeep/pixkeep/internal/common"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("u-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	userID, err := GetUserIDFromToken(token, secret)
	if err != nil {
		t.Fatalf("GetUserIDFromToken error: %v", err)
	}
	if userID != "u-1" {
		t.Fatalf("expected u-1, got %q", userID)
	}
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("u-1", []byte("right"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(token, []byte("wrong"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("u-1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(token, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	_, err := GetUserIDFromToken("not-a-token", []byte("s"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
