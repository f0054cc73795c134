package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/server/identity"
)

// ResolveIdentifier maps a login identifier to the canonical email handed
// to the credential verifier. An identifier containing "@" is already an
// email and passes through unchanged; anything else is treated as a
// username and resolved through the email-only projection, so the lookup
// exposes nothing but the email field to unauthenticated callers.
func (s *AccountService) ResolveIdentifier(ctx context.Context, identifier string) (string, error) {
	if strings.Contains(identifier, "@") {
		return identifier, nil
	}

	username := strings.ToLower(strings.TrimSpace(identifier))
	email, err := s.repos.Users(s.db).GetEmailByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrIdentifierNotFound
		}
		return "", fmt.Errorf("identifier lookup error: %v", err)
	}

	return email, nil
}

// Login resolves the identifier and verifies the password, returning a
// fresh session on success.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*identity.Session, error) {
	email, err := s.ResolveIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	session, err := s.verifier.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "login", "account_id", session.AccountID)
	return session, nil
}
