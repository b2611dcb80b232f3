package auth

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/andrzej-wegierski/identiverse-backend/internal/config"
	"github.com/andrzej-wegierski/identiverse-backend/internal/email"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
	"github.com/andrzej-wegierski/identiverse-backend/internal/throttle"
	"github.com/andrzej-wegierski/identiverse-backend/internal/token"
)

const testPassword = "Sup3r-secret-pw!"

type capturedEmail struct {
	To      string
	Subject string
	Body    string
}

// mockSender records outbound emails and can be told to fail.
type mockSender struct {
	mu       sync.Mutex
	sent     []capturedEmail
	failWith error
}

func (m *mockSender) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, capturedEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mockSender) lastSent(t *testing.T) capturedEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

func (m *mockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	service *Service
	store   *identity.MockStore
	sender  *mockSender
	issuer  *token.Issuer
	config  *config.AuthConfig
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWT: config.JWTConfig{
			SigningKey: "a-unit-test-signing-key-of-decent-length",
			Issuer:     "identiverse",
			Audience:   "identiverse-frontend",
			Expiry:     time.Hour,
		},
		Links: config.LinksConfig{
			BaseURL:           "http://localhost:5173",
			ConfirmEmailPath:  "/confirm-email",
			ResetPasswordPath: "/reset-password",
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	cfg := newTestConfig()
	log := zaptest.NewLogger(t)

	hasher := password.NewHasher(cfg.Password)
	store := identity.NewMockStore(hasher)

	issuer, err := token.NewIssuer(&cfg.JWT, log)
	require.NoError(t, err)

	sender := &mockSender{}
	svc := NewService(ServiceParams{
		Config:        cfg,
		Logger:        log,
		Store:         store,
		Hasher:        hasher,
		Issuer:        issuer,
		LoginThrottle: throttle.NewLoginThrottle(cfg.LoginThrottle),
		EmailThrottle: throttle.NewEmailThrottle(cfg.EmailThrottle),
		Sender:        sender,
		Links:         email.NewLinks(&cfg.Links),
	})

	return &testEnv{service: svc, store: store, sender: sender, issuer: issuer, config: cfg}
}

// registerUser registers an account and optionally confirms its email
// directly on the store.
func (e *testEnv) registerUser(t *testing.T, username, emailAddr string, confirmed bool) *AuthResponse {
	resp, err := e.service.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    emailAddr,
		Password: testPassword,
	})
	require.NoError(t, err)
	if confirmed {
		require.NoError(t, e.store.MarkConfirmed(resp.User.ID))
	}
	return resp
}

// providerTokenFromEmail pulls the encoded token query parameter out of the
// link embedded in an email body.
func providerTokenFromEmail(t *testing.T, body string) string {
	idx := strings.Index(body, "http")
	require.GreaterOrEqual(t, idx, 0, "email body carries no link: %q", body)

	link, err := url.Parse(body[idx:])
	require.NoError(t, err)

	encoded := link.Query().Get("token")
	require.NotEmpty(t, encoded)
	return encoded
}
