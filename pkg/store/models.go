package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	Image        string
	Workspace    string
	TenantID     string    `gorm:"uniqueIndex;not null"`
	TenantStatus string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type BotModel struct {
	ID           string         `gorm:"primaryKey"`
	OwnerID      string         `gorm:"not null;index"`
	Name         string         `gorm:"not null"`
	Status       string         `gorm:"not null"`
	Config       datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type ThemeModel struct {
	BotID           string `gorm:"primaryKey"`
	PrimaryColor    string
	SecondaryColor  string
	BackgroundColor string
	UserTextColor   string
	BotTextColor    string
	FontFamily      string
	FontSize        string
	ChatWidth       string
	ChatHeight      string
	BorderRadius    string
	Position        string
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time
}

type KnowledgeModel struct {
	ID           string `gorm:"primaryKey"`
	BotID        string `gorm:"not null;index"`
	Title        string `gorm:"not null"`
	Content      string `gorm:"type:text"`
	Type         string `gorm:"not null"`
	SourceURL    string
	StorageKey   string
	FileSize     int64
	MimeType     string
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	Status       string         `gorm:"not null"`
	ErrorMessage string
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null"`
}
