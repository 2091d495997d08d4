package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oakmart/storefront-go/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/tokenstore"
)

type loginAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Credentials is a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Provider resolves the current identity class and owns the tokens the
// transport layer attaches: an opaque guest cart token before login, a
// bearer token after. On login success it fires the cart merge hook
// exactly once before the cart is next read.
type Provider struct {
	mu         sync.Mutex
	identity   enums.Identity
	bearer     string
	subject    string
	expiresAt  time.Time
	guestToken string

	sessionKey string
	tokens     tokenstore.Store
	tokenTTL   time.Duration
	api        loginAPI
	logger     *logger.Logger
	mergeHook  func(ctx context.Context) error
}

// ProviderParams groups dependencies for the session provider.
type ProviderParams struct {
	SessionKey string
	Tokens     tokenstore.Store
	TokenTTL   time.Duration
	API        loginAPI
	Logger     *logger.Logger
}

// NewProvider builds a session provider. An existing guest cart token for
// the session key is reused; otherwise a fresh one is minted and persisted
// so the anonymous cart survives across page loads.
func NewProvider(ctx context.Context, params ProviderParams) (*Provider, error) {
	if strings.TrimSpace(params.SessionKey) == "" {
		return nil, fmt.Errorf("session key required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token store required")
	}
	if params.API == nil {
		return nil, fmt.Errorf("login api required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("session logger required")
	}

	p := &Provider{
		identity:   enums.IdentityGuest,
		sessionKey: params.SessionKey,
		tokens:     params.Tokens,
		tokenTTL:   params.TokenTTL,
		api:        params.API,
		logger:     params.Logger,
	}

	token, err := params.Tokens.Get(ctx, params.SessionKey)
	switch {
	case err == nil:
		p.guestToken = token
	case errors.Is(err, tokenstore.ErrNotFound):
		if err := p.mintGuestToken(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("load guest token: %w", err)
	}

	return p, nil
}

// SetMergeHook registers the callback fired once after each successful
// login, before the cart is next read. Typically the cart store's
// MergeOnLogin.
func (p *Provider) SetMergeHook(hook func(ctx context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mergeHook = hook
}

// CurrentIdentity reports guest or authenticated. No side effects.
func (p *Provider) CurrentIdentity() enums.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity
}

// BearerToken implements api.CredentialSource.
func (p *Provider) BearerToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bearer
}

// CartToken implements api.CredentialSource.
func (p *Provider) CartToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.guestToken
}

// Subject returns the user id claim decoded from the bearer token, empty
// for guests.
func (p *Provider) Subject() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subject
}

// ExpiresAt returns the bearer token expiry claim, zero for guests and
// for opaque tokens.
func (p *Provider) ExpiresAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expiresAt
}

// Login authenticates and, on success, switches the identity to
// authenticated and fires the merge hook exactly once. The guest cart
// token is dropped afterward: the backend has merged that cart away.
// Cart state is untouched on failure.
func (p *Provider) Login(ctx context.Context, creds Credentials) error {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidCredentials, "email and password are required")
	}

	token, err := p.api.Login(ctx, email, creds.Password)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.bearer = token
	p.identity = enums.IdentityAuthenticated
	p.subject, p.expiresAt = decodeClaims(token)
	hook := p.mergeHook
	p.mu.Unlock()

	ctx = p.logger.WithIdentity(ctx, enums.IdentityAuthenticated.String())
	p.logger.Info(ctx, "login succeeded")

	if err := p.tokens.Delete(ctx, p.sessionKey); err != nil {
		p.logger.Warn(ctx, "failed to drop merged guest token")
	}
	p.mu.Lock()
	p.guestToken = ""
	p.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Logout reverts to a fresh guest identity with a newly minted cart token.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.bearer = ""
	p.subject = ""
	p.expiresAt = time.Time{}
	p.identity = enums.IdentityGuest
	p.mu.Unlock()

	return p.mintGuestToken(ctx)
}

func (p *Provider) mintGuestToken(ctx context.Context) error {
	token := uuid.NewString()
	if err := p.tokens.Put(ctx, p.sessionKey, token, p.tokenTTL); err != nil {
		return fmt.Errorf("persist guest token: %w", err)
	}
	p.mu.Lock()
	p.guestToken = token
	p.mu.Unlock()
	return nil
}

// decodeClaims reads subject and expiry from the bearer token without
// verifying the signature; the backend is the verifier, this is for
// observability only. Opaque non-JWT tokens simply yield empty claims.
func decodeClaims(token string) (string, time.Time) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", time.Time{}
	}
	subject, _ := parsed.Claims.GetSubject()
	var expiresAt time.Time
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return subject, expiresAt
}
