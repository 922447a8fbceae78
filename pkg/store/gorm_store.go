package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/1karan0/chatAdmin/pkg/domain"
)

const migrateLockID int64 = 48215531

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so concurrent replicas do not race on schema changes.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &BotModel{}, &ThemeModel{}, &KnowledgeModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", migrateLockID).Error; err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		return fn(tx)
	})
}

// users

func (g *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return g.db.Save(&model).Error
}

func (g *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	err := g.db.Where("email = ?", email).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (g *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	err := g.db.Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (g *GormStore) SetTenantStatus(userID string, status domain.TenantStatus) error {
	return g.db.Model(&UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"tenant_status": string(status),
			"updated_at":    time.Now().UTC(),
		}).Error
}

// bots

func (g *GormStore) SaveBot(b domain.Bot) error {
	model, err := botToModel(b)
	if err != nil {
		return err
	}
	return g.db.Save(&model).Error
}

func (g *GormStore) GetBot(id string) (domain.Bot, bool, error) {
	var model BotModel
	err := g.db.Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Bot{}, false, nil
	}
	if err != nil {
		return domain.Bot{}, false, err
	}
	return botFromModel(model), true, nil
}

func (g *GormStore) ListBotsByOwner(ownerID string) ([]domain.Bot, error) {
	var models []BotModel
	if err := g.db.Where("owner_id = ?", ownerID).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	bots := make([]domain.Bot, 0, len(models))
	for _, model := range models {
		bots = append(bots, botFromModel(model))
	}
	return bots, nil
}

func (g *GormStore) SetBotStatus(id string, status domain.BotStatus, errMsg string) error {
	return g.db.Model(&BotModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        string(status),
			"error_message": errMsg,
			"updated_at":    time.Now().UTC(),
		}).Error
}

// DeleteBot removes the bot with its theme and knowledge rows.
func (g *GormStore) DeleteBot(id string) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bot_id = ?", id).Delete(&KnowledgeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bot_id = ?", id).Delete(&ThemeModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&BotModel{}).Error
	})
}

// themes

func (g *GormStore) SaveTheme(t domain.Theme) error {
	model := themeToModel(t)
	return g.db.Save(&model).Error
}

func (g *GormStore) GetTheme(botID string) (domain.Theme, bool, error) {
	var model ThemeModel
	err := g.db.Where("bot_id = ?", botID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Theme{}, false, nil
	}
	if err != nil {
		return domain.Theme{}, false, err
	}
	return themeFromModel(model), true, nil
}

// knowledge

func (g *GormStore) SaveKnowledgeItem(item domain.KnowledgeItem) error {
	model, err := knowledgeToModel(item)
	if err != nil {
		return err
	}
	return g.db.Save(&model).Error
}

func (g *GormStore) GetKnowledgeItem(id string) (domain.KnowledgeItem, bool, error) {
	var model KnowledgeModel
	err := g.db.Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.KnowledgeItem{}, false, nil
	}
	if err != nil {
		return domain.KnowledgeItem{}, false, err
	}
	return knowledgeFromModel(model), true, nil
}

func (g *GormStore) ListKnowledgeByBot(botID string) ([]domain.KnowledgeItem, error) {
	var models []KnowledgeModel
	if err := g.db.Where("bot_id = ?", botID).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.KnowledgeItem, 0, len(models))
	for _, model := range models {
		items = append(items, knowledgeFromModel(model))
	}
	return items, nil
}

func (g *GormStore) SetKnowledgeStatus(id string, status domain.KnowledgeStatus, errMsg string) error {
	return g.db.Model(&KnowledgeModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        string(status),
			"error_message": errMsg,
			"updated_at":    time.Now().UTC(),
		}).Error
}

// model conversions

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Image:        u.Image,
		Workspace:    u.Workspace,
		TenantID:     u.TenantID,
		TenantStatus: string(u.TenantStatus),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		Image:        m.Image,
		Workspace:    m.Workspace,
		TenantID:     m.TenantID,
		TenantStatus: domain.TenantStatus(m.TenantStatus),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func botToModel(b domain.Bot) (BotModel, error) {
	raw, err := json.Marshal(b.Config)
	if err != nil {
		return BotModel{}, fmt.Errorf("encode bot config: %w", err)
	}
	return BotModel{
		ID:           b.ID,
		OwnerID:      b.OwnerID,
		Name:         b.Name,
		Status:       string(b.Status),
		Config:       datatypes.JSON(raw),
		ErrorMessage: b.ErrorMessage,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}, nil
}

func botFromModel(m BotModel) domain.Bot {
	return domain.Bot{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Name:         m.Name,
		Status:       domain.BotStatus(m.Status),
		Config:       domain.ParseConfig(m.Config),
		ErrorMessage: m.ErrorMessage,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func themeToModel(t domain.Theme) ThemeModel {
	return ThemeModel{
		BotID:           t.BotID,
		PrimaryColor:    t.PrimaryColor,
		SecondaryColor:  t.SecondaryColor,
		BackgroundColor: t.BackgroundColor,
		UserTextColor:   t.UserTextColor,
		BotTextColor:    t.BotTextColor,
		FontFamily:      t.FontFamily,
		FontSize:        t.FontSize,
		ChatWidth:       t.ChatWidth,
		ChatHeight:      t.ChatHeight,
		BorderRadius:    t.BorderRadius,
		Position:        string(t.Position),
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
}

func themeFromModel(m ThemeModel) domain.Theme {
	return domain.Theme{
		BotID:           m.BotID,
		PrimaryColor:    m.PrimaryColor,
		SecondaryColor:  m.SecondaryColor,
		BackgroundColor: m.BackgroundColor,
		UserTextColor:   m.UserTextColor,
		BotTextColor:    m.BotTextColor,
		FontFamily:      m.FontFamily,
		FontSize:        m.FontSize,
		ChatWidth:       m.ChatWidth,
		ChatHeight:      m.ChatHeight,
		BorderRadius:    m.BorderRadius,
		Position:        domain.ChatPosition(m.Position),
	}
}

func knowledgeToModel(item domain.KnowledgeItem) (KnowledgeModel, error) {
	var meta datatypes.JSON
	if len(item.Metadata) > 0 {
		raw, err := json.Marshal(item.Metadata)
		if err != nil {
			return KnowledgeModel{}, fmt.Errorf("encode knowledge metadata: %w", err)
		}
		meta = datatypes.JSON(raw)
	}
	return KnowledgeModel{
		ID:           item.ID,
		BotID:        item.BotID,
		Title:        item.Title,
		Content:      item.Content,
		Type:         string(item.Type),
		SourceURL:    item.SourceURL,
		StorageKey:   item.StorageKey,
		FileSize:     item.FileSize,
		MimeType:     item.MimeType,
		Metadata:     meta,
		Status:       string(item.Status),
		ErrorMessage: item.ErrorMessage,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}, nil
}

func knowledgeFromModel(m KnowledgeModel) domain.KnowledgeItem {
	var meta map[string]string
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return domain.KnowledgeItem{
		ID:           m.ID,
		BotID:        m.BotID,
		Title:        m.Title,
		Content:      m.Content,
		Type:         domain.KnowledgeType(m.Type),
		SourceURL:    m.SourceURL,
		StorageKey:   m.StorageKey,
		FileSize:     m.FileSize,
		MimeType:     m.MimeType,
		Metadata:     meta,
		Status:       domain.KnowledgeStatus(m.Status),
		ErrorMessage: m.ErrorMessage,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
