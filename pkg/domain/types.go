package domain

import "time"

type BotStatus string

const (
	BotDraft    BotStatus = "draft"
	BotDeployed BotStatus = "deployed"
	BotError    BotStatus = "error"
)

type TenantStatus string

const (
	TenantPending     TenantStatus = "pending"
	TenantProvisioned TenantStatus = "provisioned"
	TenantFailed      TenantStatus = "failed"
)

type KnowledgeType string

const (
	KnowledgeText KnowledgeType = "text"
	KnowledgeURL  KnowledgeType = "url"
	KnowledgeFile KnowledgeType = "file"
)

type KnowledgeStatus string

const (
	KnowledgePending KnowledgeStatus = "pending"
	KnowledgeReady   KnowledgeStatus = "ready"
	KnowledgeFailed  KnowledgeStatus = "error"
)

type ChatPosition string

const (
	PositionBottomRight ChatPosition = "bottom-right"
	PositionBottomLeft  ChatPosition = "bottom-left"
)

// User mirrors an account created by the external OAuth layer. TenantID
// correlates the user with its namespace in the chat-answering backend;
// TenantStatus records whether provisioning there actually succeeded.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Image        string       `json:"image,omitempty"`
	Workspace    string       `json:"workspace,omitempty"`
	TenantID     string       `json:"tenantId"`
	TenantStatus TenantStatus `json:"tenantStatus"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// BotConfig is the behavioral configuration blob attached to a bot.
type BotConfig struct {
	WelcomeMessage  string `json:"welcomeMessage,omitempty"`
	FallbackMessage string `json:"fallbackMessage,omitempty"`
	Personality     string `json:"personality,omitempty"`
	Template        string `json:"template,omitempty"`
	Language        string `json:"language,omitempty"`
}

type Bot struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	Status       BotStatus `json:"status"`
	Config       BotConfig `json:"config"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Theme holds presentation fields only. Every field is optional; empty
// values fall back to the literal defaults in internal/embed.
type Theme struct {
	BotID           string       `json:"botId"`
	PrimaryColor    string       `json:"primaryColor,omitempty"`
	SecondaryColor  string       `json:"secondaryColor,omitempty"`
	BackgroundColor string       `json:"backgroundColor,omitempty"`
	UserTextColor   string       `json:"userTextColor,omitempty"`
	BotTextColor    string       `json:"botTextColor,omitempty"`
	FontFamily      string       `json:"fontFamily,omitempty"`
	FontSize        string       `json:"fontSize,omitempty"`
	ChatWidth       string       `json:"chatWidth,omitempty"`
	ChatHeight      string       `json:"chatHeight,omitempty"`
	BorderRadius    string       `json:"borderRadius,omitempty"`
	Position        ChatPosition `json:"position,omitempty"`
}

type KnowledgeItem struct {
	ID           string            `json:"id"`
	BotID        string            `json:"botId"`
	Title        string            `json:"title"`
	Content      string            `json:"content,omitempty"`
	Type         KnowledgeType     `json:"type"`
	SourceURL    string            `json:"sourceUrl,omitempty"`
	StorageKey   string            `json:"-"`
	FileSize     int64             `json:"fileSize,omitempty"`
	MimeType     string            `json:"mimeType,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Status       KnowledgeStatus   `json:"status"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Answer is the external backend's reply to a relayed question.
type Answer struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}
