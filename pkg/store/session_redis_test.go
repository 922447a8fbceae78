package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisSessions(t *testing.T, ttl time.Duration) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisSessionStore(mr.Addr(), "", ttl), mr
}

func TestRedisSessionRoundtrip(t *testing.T) {
	sessions, _ := newTestRedisSessions(t, time.Hour)

	token, err := sessions.NewSession("u-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	userID, ok, err := sessions.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !ok || userID != "u-1" {
		t.Fatalf("got %q ok=%v, want u-1", userID, ok)
	}
}

func TestRedisSessionUnknownToken(t *testing.T) {
	sessions, _ := newTestRedisSessions(t, time.Hour)

	if _, ok, err := sessions.GetUserIDByToken("no-such-token"); err != nil || ok {
		t.Fatalf("unknown token: ok=%v err=%v", ok, err)
	}
}

func TestRedisSessionDeleteRevokes(t *testing.T) {
	sessions, _ := newTestRedisSessions(t, time.Hour)

	token, err := sessions.NewSession("u-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := sessions.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := sessions.GetUserIDByToken(token); ok {
		t.Fatal("deleted session should not resolve")
	}
}

func TestRedisSessionExpires(t *testing.T) {
	sessions, mr := newTestRedisSessions(t, time.Minute)

	token, err := sessions.NewSession("u-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := sessions.GetUserIDByToken(token); ok {
		t.Fatal("expired session should not resolve")
	}
}
