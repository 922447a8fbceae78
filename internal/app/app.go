package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/1karan0/chatAdmin/internal/ingest"
	"github.com/1karan0/chatAdmin/internal/util"
	"github.com/1karan0/chatAdmin/pkg/domain"
	"github.com/1karan0/chatAdmin/pkg/storage"
	"github.com/1karan0/chatAdmin/pkg/store"
)

// Backend is the slice of the chat-answering service the application uses.
type Backend interface {
	Ask(ctx context.Context, question, tenantID string) (string, error)
	CreateTenant(ctx context.Context, tenantID, tenantName, username string) error
	DeleteTenant(ctx context.Context, tenantID string) error
}

// IngestQueue accepts knowledge items for asynchronous processing.
type IngestQueue interface {
	Enqueue(ctx context.Context, itemID string) (ingest.Job, error)
}

// App implements the dashboard's business operations over the store, the
// object store, the ingestion queue and the external answering backend.
type App struct {
	store   store.Store
	objects storage.ObjectStore
	queue   IngestQueue
	backend Backend
	logger  *slog.Logger
}

func New(st store.Store, objects storage.ObjectStore, queue IngestQueue, backend Backend, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{store: st, objects: objects, queue: queue, backend: backend, logger: logger}
}

// EnsureUser records a signed-in account and provisions its backend tenant.
// Provisioning is a recorded step: the user row is saved first with a
// pending tenant, then the backend call's outcome is written back, so a
// backend outage leaves a visibly failed tenant instead of a silent gap.
func (a *App) EnsureUser(ctx context.Context, email, name, image, workspace string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.User{}, fmt.Errorf("%w: email required", ErrValidation)
	}
	if user, ok, err := a.store.GetUserByEmail(email); err != nil {
		return domain.User{}, err
	} else if ok {
		if user.TenantStatus == domain.TenantProvisioned {
			return user, nil
		}
		return a.provisionTenant(ctx, user)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Image:        image,
		Workspace:    strings.TrimSpace(workspace),
		TenantID:     uuid.NewString(),
		TenantStatus: domain.TenantPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, err
	}
	return a.provisionTenant(ctx, user)
}

// RetryTenantProvisioning re-runs the backend tenant call for a user whose
// first provisioning attempt failed.
func (a *App) RetryTenantProvisioning(ctx context.Context, userID string) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	if user.TenantStatus == domain.TenantProvisioned {
		return user, nil
	}
	return a.provisionTenant(ctx, user)
}

func (a *App) provisionTenant(ctx context.Context, user domain.User) (domain.User, error) {
	tenantName := user.Workspace
	if tenantName == "" {
		tenantName = user.Name
	}
	if tenantName == "" {
		tenantName = user.Email
	}
	if err := a.backend.CreateTenant(ctx, user.TenantID, tenantName, user.Email); err != nil {
		a.logger.Error("tenant provisioning failed",
			"user_id", user.ID, "tenant_id", user.TenantID, "error", err)
		_ = a.store.SetTenantStatus(user.ID, domain.TenantFailed)
		user.TenantStatus = domain.TenantFailed
		return user, nil
	}
	if err := a.store.SetTenantStatus(user.ID, domain.TenantProvisioned); err != nil {
		return domain.User{}, err
	}
	user.TenantStatus = domain.TenantProvisioned
	a.logger.Info("tenant provisioned", "user_id", user.ID, "tenant_id", user.TenantID)
	return user, nil
}

// GetUser loads one user.
func (a *App) GetUser(userID string) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// BotInput carries the mutable bot fields accepted from the dashboard.
type BotInput struct {
	Name   string            `json:"name"`
	Config *domain.BotConfig `json:"config,omitempty"`
	Theme  *domain.Theme     `json:"theme,omitempty"`
}

// CreateBot registers a new draft bot with its theme row.
func (a *App) CreateBot(ownerID string, in BotInput) (domain.Bot, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Bot{}, fmt.Errorf("%w: bot name required", ErrValidation)
	}
	now := time.Now().UTC()
	bot := domain.Bot{
		ID:        util.NewID(),
		OwnerID:   ownerID,
		Name:      name,
		Status:    domain.BotDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Config != nil {
		bot.Config = *in.Config
	}
	if err := a.store.SaveBot(bot); err != nil {
		return domain.Bot{}, err
	}
	theme := domain.Theme{BotID: bot.ID}
	if in.Theme != nil {
		theme = *in.Theme
		theme.BotID = bot.ID
	}
	if err := a.store.SaveTheme(theme); err != nil {
		return domain.Bot{}, err
	}
	a.logger.Info("bot created", "bot_id", bot.ID, "owner_id", ownerID)
	return bot, nil
}

// ListBots returns the owner's bots.
func (a *App) ListBots(ownerID string) ([]domain.Bot, error) {
	return a.store.ListBotsByOwner(ownerID)
}

// GetOwnedBot loads a bot and enforces ownership.
func (a *App) GetOwnedBot(ownerID, botID string) (domain.Bot, error) {
	bot, ok, err := a.store.GetBot(botID)
	if err != nil {
		return domain.Bot{}, err
	}
	if !ok {
		return domain.Bot{}, ErrBotNotFound
	}
	if bot.OwnerID != ownerID {
		return domain.Bot{}, ErrForbidden
	}
	return bot, nil
}

// UpdateBot applies name, config and theme changes to an owned bot.
func (a *App) UpdateBot(ownerID, botID string, in BotInput) (domain.Bot, error) {
	bot, err := a.GetOwnedBot(ownerID, botID)
	if err != nil {
		return domain.Bot{}, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		bot.Name = name
	}
	if in.Config != nil {
		bot.Config = *in.Config
	}
	bot.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveBot(bot); err != nil {
		return domain.Bot{}, err
	}
	if in.Theme != nil {
		theme := *in.Theme
		theme.BotID = bot.ID
		if err := a.store.SaveTheme(theme); err != nil {
			return domain.Bot{}, err
		}
	}
	return bot, nil
}

// GetTheme returns a bot's theme row, zero-valued when none was saved.
func (a *App) GetTheme(botID string) (domain.Theme, error) {
	theme, ok, err := a.store.GetTheme(botID)
	if err != nil {
		return domain.Theme{}, err
	}
	if !ok {
		return domain.Theme{BotID: botID}, nil
	}
	return theme, nil
}

// DeployBot marks a bot live. Deployment requires the owner's tenant to be
// provisioned, since the embed surfaces relay questions to that tenant.
func (a *App) DeployBot(ctx context.Context, ownerID, botID string) (domain.Bot, error) {
	bot, err := a.GetOwnedBot(ownerID, botID)
	if err != nil {
		return domain.Bot{}, err
	}
	owner, err := a.GetUser(ownerID)
	if err != nil {
		return domain.Bot{}, err
	}
	if owner.TenantStatus != domain.TenantProvisioned {
		return domain.Bot{}, ErrTenantNotReady
	}
	if err := a.store.SetBotStatus(bot.ID, domain.BotDeployed, ""); err != nil {
		return domain.Bot{}, err
	}
	bot.Status = domain.BotDeployed
	bot.ErrorMessage = ""
	a.logger.Info("bot deployed", "bot_id", bot.ID, "owner_id", ownerID)
	return bot, nil
}

// DeleteBot removes a bot with its theme, knowledge rows and stored files.
// The backend tenant is left alone when the owner still has other bots;
// otherwise its removal is attempted best-effort.
func (a *App) DeleteBot(ctx context.Context, ownerID, botID string) error {
	bot, err := a.GetOwnedBot(ownerID, botID)
	if err != nil {
		return err
	}
	items, err := a.store.ListKnowledgeByBot(bot.ID)
	if err != nil {
		return err
	}
	if err := a.store.DeleteBot(bot.ID); err != nil {
		return err
	}
	for _, item := range items {
		if item.StorageKey == "" {
			continue
		}
		if err := a.objects.Delete(ctx, item.StorageKey); err != nil {
			a.logger.Warn("orphaned knowledge object", "key", item.StorageKey, "error", err)
		}
	}
	remaining, err := a.store.ListBotsByOwner(ownerID)
	if err == nil && len(remaining) == 0 {
		if owner, uerr := a.GetUser(ownerID); uerr == nil && owner.TenantID != "" {
			if derr := a.backend.DeleteTenant(ctx, owner.TenantID); derr != nil {
				a.logger.Warn("backend tenant removal failed",
					"tenant_id", owner.TenantID, "error", derr)
			}
		}
	}
	a.logger.Info("bot deleted", "bot_id", bot.ID, "owner_id", ownerID)
	return nil
}

// KnowledgeInput describes one knowledge source to attach to a bot.
// Exactly one of Content, SourceURL or File applies, matching Type.
type KnowledgeInput struct {
	Title     string
	Type      domain.KnowledgeType
	Content   string
	SourceURL string
	File      io.Reader
	FileName  string
	FileSize  int64
	MimeType  string
}

// AddKnowledge stores a knowledge item and queues it for ingestion.
// File payloads are uploaded to object storage first so the queued job
// holds only a reference.
func (a *App) AddKnowledge(ctx context.Context, ownerID, botID string, in KnowledgeInput) (domain.KnowledgeItem, error) {
	bot, err := a.GetOwnedBot(ownerID, botID)
	if err != nil {
		return domain.KnowledgeItem{}, err
	}
	now := time.Now().UTC()
	item := domain.KnowledgeItem{
		ID:        util.NewID(),
		BotID:     bot.ID,
		Title:     strings.TrimSpace(in.Title),
		Type:      in.Type,
		Status:    domain.KnowledgePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch in.Type {
	case domain.KnowledgeText:
		if strings.TrimSpace(in.Content) == "" {
			return domain.KnowledgeItem{}, fmt.Errorf("%w: text content required", ErrInvalidKnowledge)
		}
		item.Content = in.Content
		if item.Title == "" {
			item.Title = "Text snippet"
		}
	case domain.KnowledgeURL:
		parsed, err := url.Parse(strings.TrimSpace(in.SourceURL))
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return domain.KnowledgeItem{}, fmt.Errorf("%w: source url must be http(s)", ErrInvalidKnowledge)
		}
		item.SourceURL = parsed.String()
		if item.Title == "" {
			item.Title = parsed.Host
		}
	case domain.KnowledgeFile:
		if in.File == nil {
			return domain.KnowledgeItem{}, fmt.Errorf("%w: file payload required", ErrInvalidKnowledge)
		}
		key := fmt.Sprintf("knowledge/%s/%s", bot.ID, item.ID)
		if err := a.objects.Put(ctx, key, in.File, in.FileSize, in.MimeType); err != nil {
			return domain.KnowledgeItem{}, fmt.Errorf("store file: %w", err)
		}
		item.StorageKey = key
		item.FileSize = in.FileSize
		item.MimeType = in.MimeType
		if item.Title == "" {
			item.Title = in.FileName
		}
		if item.Title == "" {
			item.Title = "Uploaded file"
		}
	default:
		return domain.KnowledgeItem{}, fmt.Errorf("%w: unknown type %q", ErrInvalidKnowledge, in.Type)
	}
	if err := a.store.SaveKnowledgeItem(item); err != nil {
		return domain.KnowledgeItem{}, err
	}
	if _, err := a.queue.Enqueue(ctx, item.ID); err != nil {
		_ = a.store.SetKnowledgeStatus(item.ID, domain.KnowledgeFailed, "enqueue failed")
		return domain.KnowledgeItem{}, fmt.Errorf("enqueue ingestion: %w", err)
	}
	a.logger.Info("knowledge queued", "item_id", item.ID, "bot_id", bot.ID, "type", item.Type)
	return item, nil
}

// ListKnowledge returns a bot's knowledge items for its owner.
func (a *App) ListKnowledge(ownerID, botID string) ([]domain.KnowledgeItem, error) {
	if _, err := a.GetOwnedBot(ownerID, botID); err != nil {
		return nil, err
	}
	return a.store.ListKnowledgeByBot(botID)
}

// KnowledgeDownloadURL returns a short-lived presigned link to a file item's
// stored object. Only file-type items have one.
func (a *App) KnowledgeDownloadURL(ctx context.Context, ownerID, botID, itemID string) (string, error) {
	if _, err := a.GetOwnedBot(ownerID, botID); err != nil {
		return "", err
	}
	item, ok, err := a.store.GetKnowledgeItem(itemID)
	if err != nil {
		return "", err
	}
	if !ok || item.BotID != botID {
		return "", ErrKnowledgeNotFound
	}
	if item.Type != domain.KnowledgeFile || item.StorageKey == "" {
		return "", fmt.Errorf("%w: item has no stored file", ErrInvalidKnowledge)
	}
	return a.objects.PresignGet(ctx, item.StorageKey, 15*time.Minute)
}

// EmbedSnapshot is everything the public embed surfaces need for one bot.
type EmbedSnapshot struct {
	Bot      domain.Bot
	Theme    domain.Theme
	TenantID string
}

// Embed resolves a deployed bot for the public endpoints. Missing and
// non-deployed bots are indistinguishable to callers on purpose.
func (a *App) Embed(botID string) (EmbedSnapshot, error) {
	bot, ok, err := a.store.GetBot(botID)
	if err != nil {
		return EmbedSnapshot{}, err
	}
	if !ok {
		return EmbedSnapshot{}, ErrBotNotFound
	}
	if bot.Status != domain.BotDeployed {
		return EmbedSnapshot{}, ErrBotNotDeployed
	}
	owner, ok, err := a.store.GetUserByID(bot.OwnerID)
	if err != nil {
		return EmbedSnapshot{}, err
	}
	if !ok || owner.TenantID == "" {
		return EmbedSnapshot{}, ErrBotNotDeployed
	}
	theme, err := a.GetTheme(bot.ID)
	if err != nil {
		return EmbedSnapshot{}, err
	}
	return EmbedSnapshot{Bot: bot, Theme: theme, TenantID: owner.TenantID}, nil
}

// Ask relays a dashboard test question for an owned bot.
func (a *App) Ask(ctx context.Context, ownerID, botID, question string) (domain.Answer, error) {
	if _, err := a.GetOwnedBot(ownerID, botID); err != nil {
		return domain.Answer{}, err
	}
	owner, err := a.GetUser(ownerID)
	if err != nil {
		return domain.Answer{}, err
	}
	if owner.TenantStatus != domain.TenantProvisioned {
		return domain.Answer{}, ErrTenantNotReady
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: question required", ErrValidation)
	}
	answer, err := a.backend.Ask(ctx, question, owner.TenantID)
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.Answer{Question: question, Answer: answer, CreatedAt: time.Now().UTC()}, nil
}
