package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/recallmail/recall/internal/domain"
	"github.com/recallmail/recall/internal/oauth"
	"github.com/recallmail/recall/internal/oauthstate"
	"github.com/recallmail/recall/internal/platform/config"
)

const testSigningSecret = "handler-test-signing-secret-0123456789"

type mockUserRepo struct {
	upsertFn func(ctx context.Context, email, name string) (*domain.User, error)
	getFn    func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) Upsert(ctx context.Context, email, name string) (*domain.User, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, email, name)
	}
	return &domain.User{ID: uuid.New(), Email: email, Name: name}, nil
}

type mockConnectionRepo struct {
	upsertFn func(ctx context.Context, userID uuid.UUID, source domain.SourceType, accessToken, refreshToken, scope string, tokenExpiry time.Time) (*domain.Connection, error)
	listFn   func(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error)
	deleteFn func(ctx context.Context, userID uuid.UUID, source domain.SourceType) error
}

func (m *mockConnectionRepo) Get(context.Context, uuid.UUID, domain.SourceType) (*domain.Connection, error) {
	return nil, domain.ErrConnectionNotFound
}

func (m *mockConnectionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockConnectionRepo) Upsert(ctx context.Context, userID uuid.UUID, source domain.SourceType, accessToken, refreshToken, scope string, tokenExpiry time.Time) (*domain.Connection, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, source, accessToken, refreshToken, scope, tokenExpiry)
	}
	return &domain.Connection{UserID: userID, Source: source, Scope: scope, TokenExpiry: tokenExpiry}, nil
}

func (m *mockConnectionRepo) UpdateTokens(context.Context, uuid.UUID, domain.SourceType, string, string, time.Time) error {
	return nil
}

func (m *mockConnectionRepo) Delete(ctx context.Context, userID uuid.UUID, source domain.SourceType) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, source)
	}
	return nil
}

type mockOAuthClient struct {
	authURLFn  func(source domain.SourceType, state string) (string, error)
	exchangeFn func(ctx context.Context, source domain.SourceType, code string) (*oauth.ExchangeResult, error)
}

func (m *mockOAuthClient) AuthCodeURL(source domain.SourceType, state string) (string, error) {
	if m.authURLFn != nil {
		return m.authURLFn(source, state)
	}
	return "https://provider.example/authorize?state=" + state, nil
}

func (m *mockOAuthClient) Exchange(ctx context.Context, source domain.SourceType, code string) (*oauth.ExchangeResult, error) {
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, source, code)
	}
	return &oauth.ExchangeResult{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		Scope:        "read",
		Expiry:       time.Now().Add(time.Hour),
	}, nil
}

type mockLimiter struct {
	allowed bool
	err     error
}

func (m *mockLimiter) Allow(context.Context, uuid.UUID) (bool, error) {
	return m.allowed, m.err
}

type testServerOpts struct {
	users       domain.UserRepository
	connections domain.ConnectionRepository
	oauthClient oauth.Client
	limiter     connectLimiter
	clock       clockwork.Clock
}

func newTestServer(t *testing.T, opts testServerOpts) *Server {
	t.Helper()

	if opts.users == nil {
		opts.users = &mockUserRepo{}
	}
	if opts.connections == nil {
		opts.connections = &mockConnectionRepo{}
	}
	if opts.oauthClient == nil {
		opts.oauthClient = &mockOAuthClient{}
	}
	if opts.limiter == nil {
		opts.limiter = &mockLimiter{allowed: true}
	}
	if opts.clock == nil {
		opts.clock = clockwork.NewFakeClock()
	}

	codec, err := oauthstate.NewCodec(testSigningSecret, opts.clock)
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:        "development",
		Port:          "8080",
		SessionSecret: "handler-test-session-secret-0123456789ab",
		SessionMaxAge: time.Hour,

		// Large enough that connect handler tests never trip the
		// in-memory IP limiter.
		ConnectRateCapacity: 1000,
	}

	return NewServer(cfg, Deps{
		Users:       opts.users,
		Connections: opts.connections,
		States:      codec,
		OAuthClient: opts.oauthClient,
		Limiter:     opts.limiter,
	})
}

// authenticatedRequest builds a request carrying a valid session cookie
// for the given user.
func authenticatedRequest(t *testing.T, srv *Server, method, target string) *http.Request {
	t.Helper()
	return authenticatedRequestAs(t, srv, method, target, uuid.New())
}

func authenticatedRequestAs(t *testing.T, srv *Server, method, target string, userID uuid.UUID) *http.Request {
	t.Helper()

	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	session, err := srv.sessionStore.Get(seed, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyUserID] = userID.String()
	require.NoError(t, session.Save(seed, rec))

	req := httptest.NewRequest(method, target, nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}
