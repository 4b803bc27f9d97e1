package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionStore(client, ttl, nil), mr
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()

	session := NewSession("abc-123")
	session.Stage = StageConfirmVehicle
	session.Name = "John Smith"
	session.Vehicle = "PB12AB1234"

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load(ctx, "abc-123")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Stage != StageConfirmVehicle || loaded.Name != "John Smith" || loaded.Vehicle != "PB12AB1234" {
		t.Fatalf("unexpected session: %+v", loaded)
	}
}

func TestRedisSessionStoreUnknownSession(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	_, err := store.Load(context.Background(), "never-started")
	if !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession, got %v", err)
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, NewSession("short-lived")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "short-lived")
	if !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected expired session to be unknown, got %v", err)
	}
}

func TestRedisSessionStoreDelete(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, NewSession("gone")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "gone"); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected deleted session to be unknown, got %v", err)
	}
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := NewSession("mem-1")
	session.Stage = StageMainMenu
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the original must not leak into the stored copy.
	session.Stage = StageGetDate

	loaded, err := store.Load(ctx, "mem-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Stage != StageMainMenu {
		t.Fatalf("stored session mutated, stage = %s", loaded.Stage)
	}

	if err := store.Delete(ctx, "mem-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "mem-1"); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession after delete, got %v", err)
	}
}
