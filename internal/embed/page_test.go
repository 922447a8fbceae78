package embed

import (
	"strings"
	"testing"

	"github.com/1karan0/chatAdmin/pkg/domain"
)

func TestRenderPageEscapesBotName(t *testing.T) {
	bot := domain.Bot{
		ID:   "b-1",
		Name: `<script>alert("pwn")</script>`,
	}
	page, err := RenderPage(bot, domain.Theme{}, "tenant-1", "https://backend.example.com")
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if strings.Contains(page, `<script>alert("pwn")</script>`) {
		t.Fatalf("bot name was interpolated without escaping")
	}
	if !strings.Contains(page, "&lt;script&gt;") {
		t.Fatalf("expected escaped bot name in page")
	}
}

func TestRenderPageSeedsWelcomeAndTenant(t *testing.T) {
	bot := domain.Bot{
		ID:     "b-1",
		Name:   "Support Bot",
		Config: domain.BotConfig{WelcomeMessage: "Hello from config"},
	}
	page, err := RenderPage(bot, domain.Theme{}, "tenant-1", "https://backend.example.com/")
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !strings.Contains(page, "Hello from config") {
		t.Fatalf("configured welcome message missing")
	}
	if !strings.Contains(page, `"tenant-1"`) {
		t.Fatalf("tenant id should appear as a quoted script literal")
	}
	if !strings.Contains(page, "https://backend.example.com/chat/ask") {
		t.Fatalf("ask url should target the configured backend origin")
	}
	if !strings.Contains(page, `<div class="avatar">S</div>`) {
		t.Fatalf("avatar initial missing")
	}
}

func TestRenderPageDefaultWelcome(t *testing.T) {
	page, err := RenderPage(domain.Bot{ID: "b-1", Name: "Bot"}, domain.Theme{}, "t", "http://b")
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !strings.Contains(page, DefaultWelcomeMessage) {
		t.Fatalf("default welcome message missing")
	}
}

func TestRenderPageKeepsColorMixValues(t *testing.T) {
	page, err := RenderPage(domain.Bot{ID: "b-1", Name: "Bot"},
		domain.Theme{PrimaryColor: "#ff0000"}, "t", "http://b")
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if strings.Contains(page, "ZgotmplZ") {
		t.Fatalf("a theme value was rejected by the template engine")
	}
	if !strings.Contains(page, "color-mix(in srgb, #ff0000 80%, #000)") {
		t.Fatalf("derived gradient stop missing from stylesheet")
	}
}
