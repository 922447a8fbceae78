package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/1karan0/chatAdmin/pkg/domain"
	"github.com/1karan0/chatAdmin/pkg/storage"
	"github.com/1karan0/chatAdmin/pkg/store"
)

// BackendIngester pushes extracted text into a tenant's knowledge index.
type BackendIngester interface {
	IngestKnowledge(ctx context.Context, tenantID, title, content, sourceType string) error
}

// Worker turns queued knowledge items into indexed backend documents.
// It loads the item, extracts text according to its type, forwards the
// text to the answering backend and records the final item status.
type Worker struct {
	store   store.Store
	objects storage.ObjectStore
	backend BackendIngester
	logger  *slog.Logger
}

func NewWorker(st store.Store, objects storage.ObjectStore, backend BackendIngester, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: st, objects: objects, backend: backend, logger: logger}
}

// Handle processes one job. Errors are returned to the queue for retry;
// once the queue gives up the item is marked failed by the final attempt.
func (w *Worker) Handle(ctx context.Context, job Job) error {
	item, ok, err := w.store.GetKnowledgeItem(job.ItemID)
	if err != nil {
		return fmt.Errorf("load knowledge item: %w", err)
	}
	if !ok {
		// Item was deleted while queued; nothing to do.
		w.logger.Warn("knowledge item vanished before ingestion", "item_id", job.ItemID)
		return nil
	}
	tenantID, err := w.tenantFor(item.BotID)
	if err != nil {
		w.recordFailure(item.ID, err)
		return err
	}
	content, err := w.extract(ctx, item)
	if err != nil {
		w.recordFailure(item.ID, err)
		return err
	}
	if err := w.backend.IngestKnowledge(ctx, tenantID, item.Title, content, string(item.Type)); err != nil {
		w.recordFailure(item.ID, err)
		return fmt.Errorf("backend ingest: %w", err)
	}
	if err := w.store.SetKnowledgeStatus(item.ID, domain.KnowledgeReady, ""); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	w.logger.Info("knowledge item ingested", "item_id", item.ID, "bot_id", item.BotID, "type", item.Type)
	return nil
}

func (w *Worker) tenantFor(botID string) (string, error) {
	bot, ok, err := w.store.GetBot(botID)
	if err != nil {
		return "", fmt.Errorf("load bot: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("bot %s not found", botID)
	}
	owner, ok, err := w.store.GetUserByID(bot.OwnerID)
	if err != nil {
		return "", fmt.Errorf("load owner: %w", err)
	}
	if !ok || owner.TenantID == "" {
		return "", fmt.Errorf("owner of bot %s has no tenant", botID)
	}
	return owner.TenantID, nil
}

func (w *Worker) extract(ctx context.Context, item domain.KnowledgeItem) (string, error) {
	switch item.Type {
	case domain.KnowledgeText:
		content := strings.TrimSpace(item.Content)
		if content == "" {
			return "", fmt.Errorf("text item %s has no content", item.ID)
		}
		return clampRunes(content), nil
	case domain.KnowledgeURL:
		if item.SourceURL == "" {
			return "", fmt.Errorf("url item %s has no source url", item.ID)
		}
		return ExtractURL(ctx, item.SourceURL)
	case domain.KnowledgeFile:
		return w.extractFile(ctx, item)
	default:
		return "", fmt.Errorf("unknown knowledge type %q", item.Type)
	}
}

func (w *Worker) extractFile(ctx context.Context, item domain.KnowledgeItem) (string, error) {
	if item.StorageKey == "" {
		return "", fmt.Errorf("file item %s has no stored object", item.ID)
	}
	r, _, err := w.objects.Get(ctx, item.StorageKey)
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read object: %w", err)
	}
	if isPDF(item, data) {
		return ExtractPDF(bytes.NewReader(data), int64(len(data)))
	}
	return ExtractPlain(data)
}

func isPDF(item domain.KnowledgeItem, data []byte) bool {
	if strings.Contains(item.MimeType, "pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func (w *Worker) recordFailure(itemID string, cause error) {
	if err := w.store.SetKnowledgeStatus(itemID, domain.KnowledgeFailed, cause.Error()); err != nil {
		w.logger.Error("failed to record knowledge error", "item_id", itemID, "error", err)
	}
}
