package session

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront-go/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/tokenstore"
)

type stubLoginAPI struct {
	token string
	err   error
	calls atomic.Int64
}

func (s *stubLoginAPI) Login(_ context.Context, _, _ string) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func newTestProvider(t *testing.T, api *stubLoginAPI) (*Provider, tokenstore.Store) {
	t.Helper()
	store := tokenstore.NewMemory()
	p, err := NewProvider(context.Background(), ProviderParams{
		SessionKey: "sess-1",
		Tokens:     store,
		TokenTTL:   time.Hour,
		API:        api,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return p, store
}

func signedTestToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestNewProviderMintsAndPersistsGuestToken(t *testing.T) {
	t.Parallel()

	p, store := newTestProvider(t, &stubLoginAPI{})

	assert.Equal(t, enums.IdentityGuest, p.CurrentIdentity())
	assert.Empty(t, p.BearerToken())
	require.NotEmpty(t, p.CartToken())

	persisted, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, p.CartToken(), persisted)
}

func TestNewProviderReusesPersistedGuestToken(t *testing.T) {
	t.Parallel()

	store := tokenstore.NewMemory()
	require.NoError(t, store.Put(context.Background(), "sess-1", "existing-token", time.Hour))

	p, err := NewProvider(context.Background(), ProviderParams{
		SessionKey: "sess-1",
		Tokens:     store,
		TokenTTL:   time.Hour,
		API:        &stubLoginAPI{},
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-token", p.CartToken())
}

func TestLoginSwitchesIdentityAndFiresMergeHookOnce(t *testing.T) {
	t.Parallel()

	api := &stubLoginAPI{token: signedTestToken(t)}
	p, store := newTestProvider(t, api)

	var hookCalls atomic.Int64
	p.SetMergeHook(func(context.Context) error {
		hookCalls.Add(1)
		return nil
	})

	err := p.Login(context.Background(), Credentials{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, enums.IdentityAuthenticated, p.CurrentIdentity())
	assert.Equal(t, api.token, p.BearerToken())
	assert.Equal(t, "user-42", p.Subject())
	assert.Equal(t, int64(1), hookCalls.Load())

	// Guest token is gone, in memory and in the store.
	assert.Empty(t, p.CartToken())
	_, err = store.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestLoginFailureLeavesGuestIdentityIntact(t *testing.T) {
	t.Parallel()

	api := &stubLoginAPI{err: pkgerrors.New(pkgerrors.CodeInvalidCredentials, "wrong password")}
	p, _ := newTestProvider(t, api)
	guestToken := p.CartToken()

	var hookCalls atomic.Int64
	p.SetMergeHook(func(context.Context) error {
		hookCalls.Add(1)
		return nil
	})

	err := p.Login(context.Background(), Credentials{Email: "a@b.com", Password: "bad"})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidCredentials))

	assert.Equal(t, enums.IdentityGuest, p.CurrentIdentity())
	assert.Equal(t, guestToken, p.CartToken())
	assert.Equal(t, int64(0), hookCalls.Load())
}

func TestLoginRejectsEmptyCredentialsWithoutNetwork(t *testing.T) {
	t.Parallel()

	api := &stubLoginAPI{token: "tok"}
	p, _ := newTestProvider(t, api)

	err := p.Login(context.Background(), Credentials{Email: "  ", Password: ""})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidCredentials))
	assert.Equal(t, int64(0), api.calls.Load())
}

func TestLoginWithOpaqueTokenKeepsEmptyClaims(t *testing.T) {
	t.Parallel()

	api := &stubLoginAPI{token: "not-a-jwt"}
	p, _ := newTestProvider(t, api)

	require.NoError(t, p.Login(context.Background(), Credentials{Email: "a@b.com", Password: "pw"}))
	assert.Equal(t, enums.IdentityAuthenticated, p.CurrentIdentity())
	assert.Empty(t, p.Subject())
}

func TestLogoutMintsFreshGuestToken(t *testing.T) {
	t.Parallel()

	api := &stubLoginAPI{token: signedTestToken(t)}
	p, store := newTestProvider(t, api)
	original := p.CartToken()

	require.NoError(t, p.Login(context.Background(), Credentials{Email: "a@b.com", Password: "pw"}))
	require.NoError(t, p.Logout(context.Background()))

	assert.Equal(t, enums.IdentityGuest, p.CurrentIdentity())
	assert.Empty(t, p.BearerToken())
	assert.Empty(t, p.Subject())
	require.NotEmpty(t, p.CartToken())
	assert.NotEqual(t, original, p.CartToken())

	persisted, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, p.CartToken(), persisted)
}
