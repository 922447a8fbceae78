package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/1karan0/chatAdmin/pkg/domain"
	"github.com/1karan0/chatAdmin/pkg/store"
)

type recordingBackend struct {
	err      error
	tenantID string
	title    string
	content  string
}

func (r *recordingBackend) IngestKnowledge(_ context.Context, tenantID, title, content, _ string) error {
	if r.err != nil {
		return r.err
	}
	r.tenantID = tenantID
	r.title = title
	r.content = content
	return nil
}

type mapObjects struct {
	data map[string][]byte
}

func (m *mapObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *mapObjects) Get(_ context.Context, key string) (io.ReadCloser, int64, error) {
	b, ok := m.data[key]
	if !ok {
		return nil, 0, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), int64(len(b)), nil
}

func (m *mapObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return key, nil
}

func (m *mapObjects) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func seedWorkerFixture(t *testing.T, st *store.MemoryStore, item domain.KnowledgeItem) domain.KnowledgeItem {
	t.Helper()
	user := domain.User{
		ID:           "u-1",
		Email:        "u@example.com",
		TenantID:     "tenant-1",
		TenantStatus: domain.TenantProvisioned,
	}
	if err := st.SaveUser(user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	bot := domain.Bot{ID: "b-1", OwnerID: user.ID, Name: "Bot", Status: domain.BotDeployed}
	if err := st.SaveBot(bot); err != nil {
		t.Fatalf("save bot: %v", err)
	}
	item.BotID = bot.ID
	item.Status = domain.KnowledgePending
	if err := st.SaveKnowledgeItem(item); err != nil {
		t.Fatalf("save item: %v", err)
	}
	return item
}

func TestWorkerIngestsTextItem(t *testing.T) {
	st := store.NewMemoryStore()
	backend := &recordingBackend{}
	item := seedWorkerFixture(t, st, domain.KnowledgeItem{
		ID:      "k-1",
		Title:   "FAQ",
		Type:    domain.KnowledgeText,
		Content: "We ship worldwide.",
	})
	w := NewWorker(st, &mapObjects{data: map[string][]byte{}}, backend, nil)

	if err := w.Handle(context.Background(), Job{ID: "j-1", ItemID: item.ID}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if backend.tenantID != "tenant-1" || backend.content != "We ship worldwide." {
		t.Fatalf("backend call: tenant=%q content=%q", backend.tenantID, backend.content)
	}
	stored, _, _ := st.GetKnowledgeItem(item.ID)
	if stored.Status != domain.KnowledgeReady {
		t.Fatalf("item status: got %q", stored.Status)
	}
}

func TestWorkerIngestsStoredFile(t *testing.T) {
	st := store.NewMemoryStore()
	backend := &recordingBackend{}
	objects := &mapObjects{data: map[string][]byte{
		"knowledge/b-1/k-2": []byte("plain file contents"),
	}}
	item := seedWorkerFixture(t, st, domain.KnowledgeItem{
		ID:         "k-2",
		Title:      "notes.txt",
		Type:       domain.KnowledgeFile,
		StorageKey: "knowledge/b-1/k-2",
		MimeType:   "text/plain",
	})
	w := NewWorker(st, objects, backend, nil)

	if err := w.Handle(context.Background(), Job{ID: "j-1", ItemID: item.ID}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if backend.content != "plain file contents" {
		t.Fatalf("content: got %q", backend.content)
	}
}

func TestWorkerRecordsBackendFailure(t *testing.T) {
	st := store.NewMemoryStore()
	backend := &recordingBackend{err: errors.New("index unavailable")}
	item := seedWorkerFixture(t, st, domain.KnowledgeItem{
		ID:      "k-3",
		Type:    domain.KnowledgeText,
		Content: "facts",
	})
	w := NewWorker(st, &mapObjects{data: map[string][]byte{}}, backend, nil)

	if err := w.Handle(context.Background(), Job{ID: "j-1", ItemID: item.ID}); err == nil {
		t.Fatalf("expected error so the queue retries")
	}
	stored, _, _ := st.GetKnowledgeItem(item.ID)
	if stored.Status != domain.KnowledgeFailed {
		t.Fatalf("item status: got %q", stored.Status)
	}
	if stored.ErrorMessage == "" {
		t.Fatalf("error message should be recorded")
	}
}

func TestWorkerSkipsVanishedItem(t *testing.T) {
	st := store.NewMemoryStore()
	w := NewWorker(st, &mapObjects{data: map[string][]byte{}}, &recordingBackend{}, nil)
	if err := w.Handle(context.Background(), Job{ID: "j-1", ItemID: "gone"}); err != nil {
		t.Fatalf("vanished item should ack cleanly, got %v", err)
	}
}
