package server

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/1karan0/chatAdmin/internal/app"
	"github.com/1karan0/chatAdmin/internal/ingest"
	"github.com/1karan0/chatAdmin/pkg/domain"
	"github.com/1karan0/chatAdmin/pkg/store"
)

const testInternalSecret = "internal-secret"

type stubBackend struct {
	answer string
}

func (s *stubBackend) Ask(_ context.Context, _, _ string) (string, error) {
	return s.answer, nil
}

func (s *stubBackend) CreateTenant(_ context.Context, _, _, _ string) error { return nil }
func (s *stubBackend) DeleteTenant(_ context.Context, _ string) error       { return nil }

type stubQueue struct{}

func (s *stubQueue) Enqueue(_ context.Context, itemID string) (ingest.Job, error) {
	return ingest.Job{ID: "job", ItemID: itemID, Status: ingest.StatusQueued}, nil
}

type stubObjects struct{}

func (s *stubObjects) Put(_ context.Context, _ string, _ io.Reader, _ int64, _ string) error {
	return nil
}

func (s *stubObjects) Get(_ context.Context, _ string) (io.ReadCloser, int64, error) {
	return nil, 0, io.EOF
}

func (s *stubObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key, nil
}

func (s *stubObjects) Delete(_ context.Context, _ string) error { return nil }

type testEnv struct {
	store    *store.MemoryStore
	app      *app.App
	sessions store.SessionStore
	server   *Server
	http     *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	appCore := app.New(st, &stubObjects{}, &stubQueue{}, &stubBackend{answer: "pong"}, nil)
	sessions := store.NewJWTSessionStore("test-jwt-secret", time.Hour)
	srv := New(Config{
		App:            appCore,
		Sessions:       sessions,
		InternalSecret: testInternalSecret,
		ChatBackendURL: "https://backend.example.com",
	})
	httpSrv := httptest.NewServer(srv.Router())
	t.Cleanup(httpSrv.Close)
	return &testEnv{store: st, app: appCore, sessions: sessions, server: srv, http: httpSrv}
}

// seedDeployedBot stores a provisioned owner with one deployed bot.
func (e *testEnv) seedDeployedBot(t *testing.T) (domain.User, domain.Bot) {
	t.Helper()
	user, err := e.app.EnsureUser(context.Background(), "owner@example.com", "Owner", "", "")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	bot, err := e.app.CreateBot(user.ID, app.BotInput{Name: "Support Bot"})
	if err != nil {
		t.Fatalf("create bot: %v", err)
	}
	deployed, err := e.app.DeployBot(context.Background(), user.ID, bot.ID)
	if err != nil {
		t.Fatalf("deploy bot: %v", err)
	}
	return user, deployed
}

func (e *testEnv) sessionFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.sessions.NewSession(userID)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return token
}
