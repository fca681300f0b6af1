package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type mockKeyer struct{}

func (mockKeyer) AccessSessionKey(accessID string) string {
	return "mw:session:access:" + accessID
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: mockKeyer{}, ttl: time.Hour}
}

func TestGenerateAndHasSession(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)
	accessID := NewAccessID()

	token, err := mgr.Generate(context.Background(), accessID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}

	ok, err := mgr.HasSession(context.Background(), accessID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist")
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)
	accessID := NewAccessID()

	token, err := mgr.Generate(context.Background(), accessID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newAccessID, newToken, err := mgr.Rotate(context.Background(), accessID, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newAccessID == accessID || newToken == token {
		t.Fatal("expected rotated identifiers")
	}

	ok, err := mgr.HasSession(context.Background(), accessID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected old session to be revoked")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)
	accessID := NewAccessID()

	if _, err := mgr.Generate(context.Background(), accessID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := mgr.Rotate(context.Background(), accessID, "bogus"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)
	accessID := NewAccessID()

	if _, err := mgr.Generate(context.Background(), accessID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mgr.Revoke(context.Background(), accessID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := mgr.HasSession(context.Background(), accessID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone")
	}
}
