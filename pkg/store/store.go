package store

import "github.com/1karan0/chatAdmin/pkg/domain"

// Store defines persistence operations for users, bots, themes and
// knowledge items. Bots exclusively own their theme and knowledge rows;
// DeleteBot cascades to both.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	SetTenantStatus(userID string, status domain.TenantStatus) error

	// bots
	SaveBot(domain.Bot) error
	GetBot(id string) (domain.Bot, bool, error)
	ListBotsByOwner(ownerID string) ([]domain.Bot, error)
	SetBotStatus(id string, status domain.BotStatus, errMsg string) error
	DeleteBot(id string) error

	// themes
	SaveTheme(domain.Theme) error
	GetTheme(botID string) (domain.Theme, bool, error)

	// knowledge
	SaveKnowledgeItem(domain.KnowledgeItem) error
	GetKnowledgeItem(id string) (domain.KnowledgeItem, bool, error)
	ListKnowledgeByBot(botID string) ([]domain.KnowledgeItem, error)
	SetKnowledgeStatus(id string, status domain.KnowledgeStatus, errMsg string) error
}

// SessionStore persists dashboard session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
