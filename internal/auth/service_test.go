package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/modawear/modawear-backend/pkg/auth"
	"github.com/modawear/modawear-backend/pkg/auth/session"
	"github.com/modawear/modawear-backend/pkg/config"
	"github.com/modawear/modawear-backend/pkg/db/models"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
	"github.com/modawear/modawear-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "unit-test-secret",
	Issuer:            "modawear-test",
	ExpirationMinutes: 15,
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubUserStore struct {
	byID       map[uuid.UUID]*models.User
	byUsername map[string]*models.User
	createErr  error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		byID:       map[uuid.UUID]*models.User{},
		byUsername: map[string]*models.User{},
	}
}

func (s *stubUserStore) seed(t *testing.T, username, email, password string, isAdmin bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hashing seed password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}
	s.byID[user.ID] = user
	s.byUsername[user.Username] = user
	return user
}

func (s *stubUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	s.byID[user.ID] = user
	s.byUsername[user.Username] = user
	return user, nil
}

func (s *stubUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := s.byUsername[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubSessionManager struct {
	tokens    map[string]string
	rotateErr error
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{tokens: map[string]string{}}
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.tokens[newID] = token
	return newID, token, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	delete(s.tokens, accessID)
	return nil
}

func newTestService(t *testing.T, users *stubUserStore, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(users, sessions, testJWTConfig, testPasswordConfig)
	if err != nil {
		t.Fatalf("constructing service: %v", err)
	}
	return svc
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	t.Parallel()

	users := newStubUserStore()
	sessions := newStubSessionManager()
	svc := newTestService(t, users, sessions)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username:        "ayla",
		Email:           "  Ayla@Example.COM ",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
	if resp.User.Email != "ayla@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parsing minted token: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Fatalf("token user %s does not match response user %s", claims.UserID, resp.User.ID)
	}
	if _, ok := sessions.tokens[claims.ID]; !ok {
		t.Fatal("expected a refresh session keyed by the token jti")
	}
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUserStore(), newStubSessionManager())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:        "ayla",
		Email:           "ayla@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "wrong-horse",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsShortUsername(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUserStore(), newStubSessionManager())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:        "ab",
		Email:           "ab@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	t.Parallel()

	users := newStubUserStore()
	seeded := users.seed(t, "marco", "marco@example.com", "open-sesame-1", true)
	svc := newTestService(t, users, newStubSessionManager())

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "marco", Password: "open-sesame-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != seeded.ID {
		t.Fatalf("expected user %s, got %s", seeded.ID, resp.User.ID)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parsing minted token: %v", err)
	}
	if !claims.IsAdmin {
		t.Fatal("expected admin claim to carry through")
	}
}

func TestLoginHidesWhichCredentialFailed(t *testing.T) {
	t.Parallel()

	users := newStubUserStore()
	users.seed(t, "marco", "marco@example.com", "open-sesame-1", false)
	svc := newTestService(t, users, newStubSessionManager())

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{name: "unknown user", req: LoginRequest{Username: "nobody", Password: "open-sesame-1"}},
		{name: "wrong password", req: LoginRequest{Username: "marco", Password: "guess"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.req)
			if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if got := pkgerrors.As(err).Message(); got != invalidCredentialsMessage {
				t.Fatalf("expected generic message, got %q", got)
			}
		})
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	users := newStubUserStore()
	users.seed(t, "marco", "marco@example.com", "open-sesame-1", false)
	sessions := newStubSessionManager()
	svc := newTestService(t, users, sessions)

	first, err := svc.Login(context.Background(), LoginRequest{Username: "marco", Password: "open-sesame-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// The old pair is single use.
	_, err = svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized on replayed refresh, got %v", err)
	}
}

func TestRefreshRejectsDeletedAccount(t *testing.T) {
	t.Parallel()

	users := newStubUserStore()
	seeded := users.seed(t, "marco", "marco@example.com", "open-sesame-1", false)
	sessions := newStubSessionManager()
	svc := newTestService(t, users, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "marco", Password: "open-sesame-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	delete(users.byID, seeded.ID)

	_, err = svc.Refresh(context.Background(), resp.AccessToken, resp.RefreshToken)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	users := newStubUserStore()
	users.seed(t, "marco", "marco@example.com", "open-sesame-1", false)
	sessions := newStubSessionManager()
	svc := newTestService(t, users, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "marco", Password: "open-sesame-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), resp.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.tokens) != 0 {
		t.Fatalf("expected all sessions revoked, %d remain", len(sessions.tokens))
	}

	_, err = svc.Refresh(context.Background(), resp.AccessToken, resp.RefreshToken)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUserStore(), newStubSessionManager())

	_, err := svc.Refresh(context.Background(), "not-a-jwt", "whatever")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if errors.Is(err, session.ErrInvalidRefreshToken) {
		t.Fatal("parse failures should not be surfaced as refresh token errors")
	}
}
