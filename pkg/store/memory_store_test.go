package store

import (
	"testing"

	"github.com/1karan0/chatAdmin/pkg/domain"
)

func TestMemoryStoreUserLookup(t *testing.T) {
	m := NewMemoryStore()
	user := domain.User{ID: "u-1", Email: "u@example.com", TenantID: "t-1", TenantStatus: domain.TenantPending}
	if err := m.SaveUser(user); err != nil {
		t.Fatalf("save user: %v", err)
	}

	byEmail, ok, err := m.GetUserByEmail("u@example.com")
	if err != nil || !ok {
		t.Fatalf("get by email: ok=%v err=%v", ok, err)
	}
	if byEmail.ID != "u-1" {
		t.Fatalf("got user %q", byEmail.ID)
	}

	if err := m.SetTenantStatus("u-1", domain.TenantProvisioned); err != nil {
		t.Fatalf("set tenant status: %v", err)
	}
	byID, _, _ := m.GetUserByID("u-1")
	if byID.TenantStatus != domain.TenantProvisioned {
		t.Fatalf("tenant status: got %q", byID.TenantStatus)
	}
}

func TestMemoryStoreListBotsIsOwnerScoped(t *testing.T) {
	m := NewMemoryStore()
	_ = m.SaveBot(domain.Bot{ID: "b-1", OwnerID: "u-1", Name: "A"})
	_ = m.SaveBot(domain.Bot{ID: "b-2", OwnerID: "u-2", Name: "B"})
	_ = m.SaveBot(domain.Bot{ID: "b-3", OwnerID: "u-1", Name: "C"})

	bots, err := m.ListBotsByOwner("u-1")
	if err != nil {
		t.Fatalf("list bots: %v", err)
	}
	if len(bots) != 2 {
		t.Fatalf("expected 2 bots, got %d", len(bots))
	}
	for _, b := range bots {
		if b.OwnerID != "u-1" {
			t.Fatalf("foreign bot leaked: %+v", b)
		}
	}
}

func TestMemoryStoreDeleteBotCascades(t *testing.T) {
	m := NewMemoryStore()
	_ = m.SaveBot(domain.Bot{ID: "b-1", OwnerID: "u-1", Name: "A"})
	_ = m.SaveTheme(domain.Theme{BotID: "b-1", PrimaryColor: "#fff"})
	_ = m.SaveKnowledgeItem(domain.KnowledgeItem{ID: "k-1", BotID: "b-1", Type: domain.KnowledgeText})
	_ = m.SaveKnowledgeItem(domain.KnowledgeItem{ID: "k-2", BotID: "b-1", Type: domain.KnowledgeText})

	if err := m.DeleteBot("b-1"); err != nil {
		t.Fatalf("delete bot: %v", err)
	}
	if _, ok, _ := m.GetBot("b-1"); ok {
		t.Fatalf("bot survived delete")
	}
	if _, ok, _ := m.GetTheme("b-1"); ok {
		t.Fatalf("theme survived delete")
	}
	items, _ := m.ListKnowledgeByBot("b-1")
	if len(items) != 0 {
		t.Fatalf("knowledge survived delete: %v", items)
	}
}

func TestMemoryStoreKnowledgeStatus(t *testing.T) {
	m := NewMemoryStore()
	_ = m.SaveKnowledgeItem(domain.KnowledgeItem{ID: "k-1", BotID: "b-1", Status: domain.KnowledgePending})

	if err := m.SetKnowledgeStatus("k-1", domain.KnowledgeFailed, "fetch failed"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	item, ok, _ := m.GetKnowledgeItem("k-1")
	if !ok || item.Status != domain.KnowledgeFailed || item.ErrorMessage != "fetch failed" {
		t.Fatalf("unexpected item: %+v", item)
	}
}
