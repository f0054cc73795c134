package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/server/identity"
)

func TestResolveIdentifier(t *testing.T) {
	ctx := context.Background()

	t.Run("email passes through unchanged", func(t *testing.T) {
		svc, usersRepo, _ := newAccountFixture(t)

		email, err := svc.ResolveIdentifier(ctx, "Alice@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice@Example.com", email)
		assert.Empty(t, usersRepo.updatedUsernames)
	})

	t.Run("username resolves case-insensitively", func(t *testing.T) {
		svc, usersRepo, _ := newAccountFixture(t)
		usersRepo.emailByUsername["alice"] = "alice@example.com"

		for _, id := range []string{"alice", "Alice", "  ALICE  "} {
			email, err := svc.ResolveIdentifier(ctx, id)
			require.NoError(t, err, "identifier %q", id)
			assert.Equal(t, "alice@example.com", email)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		svc, _, _ := newAccountFixture(t)

		_, err := svc.ResolveIdentifier(ctx, "nobody")
		assert.ErrorIs(t, err, common.ErrIdentifierNotFound)
	})

	t.Run("lookup failure is not identifier-not-found", func(t *testing.T) {
		svc, usersRepo, _ := newAccountFixture(t)
		usersRepo.getEmailErr = errors.New("db down")

		_, err := svc.ResolveIdentifier(ctx, "alice")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrIdentifierNotFound)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves username then signs in", func(t *testing.T) {
		svc, usersRepo, verifier := newAccountFixture(t)
		usersRepo.emailByUsername["bob"] = "bob@example.com"
		verifier.sessionsByEmail["bob@example.com"] = &identity.Session{
			Token: "tok", AccountID: "user-7",
		}

		session, err := svc.Login(ctx, "Bob", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "user-7", session.AccountID)
		assert.Equal(t, "tok", session.Token)
	})

	t.Run("wrong password for known email", func(t *testing.T) {
		svc, _, verifier := newAccountFixture(t)
		verifier.signInErr = common.ErrUnauthorized

		_, err := svc.Login(ctx, "bob@example.com", "wrong")
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("unknown username never reaches the verifier", func(t *testing.T) {
		svc, _, verifier := newAccountFixture(t)
		verifier.signInErr = errors.New("should not be called")

		_, err := svc.Login(ctx, "ghost", "secret1")
		assert.ErrorIs(t, err, common.ErrIdentifierNotFound)
	})
}
