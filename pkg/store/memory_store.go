package store

import (
	"sync"
	"time"

	"github.com/1karan0/chatAdmin/pkg/domain"
)

// MemoryStore keeps all records in-process. Used by tests and local runs
// without Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]domain.User // key: user ID
	email     map[string]string      // email -> user ID
	bots      map[string]domain.Bot
	botOrder  []string
	themes    map[string]domain.Theme         // key: bot ID
	knowledge map[string]domain.KnowledgeItem // key: item ID
	byBot     map[string][]string             // bot ID -> item IDs in insert order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		email:     make(map[string]string),
		bots:      make(map[string]domain.Bot),
		themes:    make(map[string]domain.Theme),
		knowledge: make(map[string]domain.KnowledgeItem),
		byBot:     make(map[string][]string),
	}
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) SetTenantStatus(userID string, status domain.TenantStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	u.TenantStatus = status
	u.UpdatedAt = time.Now().UTC()
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) SaveBot(b domain.Bot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bots[b.ID]; !exists {
		m.botOrder = append(m.botOrder, b.ID)
	}
	m.bots[b.ID] = b
	return nil
}

func (m *MemoryStore) GetBot(id string) (domain.Bot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bots[id]
	return b, ok, nil
}

func (m *MemoryStore) ListBotsByOwner(ownerID string) ([]domain.Bot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Bot, 0, len(m.botOrder))
	for _, id := range m.botOrder {
		if b, ok := m.bots[id]; ok && b.OwnerID == ownerID {
			res = append(res, b)
		}
	}
	return res, nil
}

func (m *MemoryStore) SetBotStatus(id string, status domain.BotStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bots[id]
	if !ok {
		return nil
	}
	b.Status = status
	b.ErrorMessage = errMsg
	b.UpdatedAt = time.Now().UTC()
	m.bots[id] = b
	return nil
}

// DeleteBot removes the bot and cascades to its theme and knowledge items.
func (m *MemoryStore) DeleteBot(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bots, id)
	delete(m.themes, id)
	for _, itemID := range m.byBot[id] {
		delete(m.knowledge, itemID)
	}
	delete(m.byBot, id)
	filtered := m.botOrder[:0]
	for _, item := range m.botOrder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.botOrder = filtered
	return nil
}

func (m *MemoryStore) SaveTheme(t domain.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[t.BotID] = t
	return nil
}

func (m *MemoryStore) GetTheme(botID string) (domain.Theme, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[botID]
	return t, ok, nil
}

func (m *MemoryStore) SaveKnowledgeItem(item domain.KnowledgeItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.knowledge[item.ID]; !exists {
		m.byBot[item.BotID] = append(m.byBot[item.BotID], item.ID)
	}
	m.knowledge[item.ID] = item
	return nil
}

func (m *MemoryStore) GetKnowledgeItem(id string) (domain.KnowledgeItem, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.knowledge[id]
	return item, ok, nil
}

func (m *MemoryStore) ListKnowledgeByBot(botID string) ([]domain.KnowledgeItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byBot[botID]
	res := make([]domain.KnowledgeItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := m.knowledge[id]; ok {
			res = append(res, item)
		}
	}
	return res, nil
}

func (m *MemoryStore) SetKnowledgeStatus(id string, status domain.KnowledgeStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.knowledge[id]
	if !ok {
		return nil
	}
	item.Status = status
	item.ErrorMessage = errMsg
	item.UpdatedAt = time.Now().UTC()
	m.knowledge[id] = item
	return nil
}
