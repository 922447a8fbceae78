package embed

import (
	"strings"
	"testing"

	"github.com/1karan0/chatAdmin/pkg/domain"
)

func TestResolveThemeDefaults(t *testing.T) {
	resolved := ResolveTheme(domain.Theme{})
	if resolved.Primary != DefaultPrimaryColor {
		t.Fatalf("primary: got %q, want %q", resolved.Primary, DefaultPrimaryColor)
	}
	if resolved.GradientEnd != DefaultGradientEnd {
		t.Fatalf("gradient end: got %q, want stock %q", resolved.GradientEnd, DefaultGradientEnd)
	}
	if resolved.Width != DefaultChatWidth || resolved.Height != DefaultChatHeight {
		t.Fatalf("size defaults: got %q x %q", resolved.Width, resolved.Height)
	}
	if resolved.FontFamily != DefaultFontFamily {
		t.Fatalf("font family default: got %q", resolved.FontFamily)
	}
	if resolved.Position != domain.PositionBottomRight {
		t.Fatalf("position default: got %q", resolved.Position)
	}
}

func TestResolveThemeCustomPrimaryDerivesGradient(t *testing.T) {
	resolved := ResolveTheme(domain.Theme{PrimaryColor: "#ff0000"})
	if resolved.Primary != "#ff0000" {
		t.Fatalf("primary: got %q", resolved.Primary)
	}
	if !strings.Contains(resolved.GradientEnd, "color-mix") || !strings.Contains(resolved.GradientEnd, "80%") {
		t.Fatalf("gradient end should be an 80%% mix of the primary, got %q", resolved.GradientEnd)
	}
	if !strings.Contains(resolved.BubbleEnd, "90%") {
		t.Fatalf("bubble end should be a 90%% mix of the primary, got %q", resolved.BubbleEnd)
	}
}

func TestResolveThemeRejectsHostileValues(t *testing.T) {
	resolved := ResolveTheme(domain.Theme{
		PrimaryColor: "red; } body { display: none",
		FontSize:     "14px; background: url(//evil)",
		FontFamily:   "serif; } </style><script>",
		ChatWidth:    "expression(alert(1))",
	})
	if resolved.Primary != DefaultPrimaryColor {
		t.Fatalf("hostile primary should fall back, got %q", resolved.Primary)
	}
	if resolved.FontSize != DefaultFontSize {
		t.Fatalf("hostile font size should fall back, got %q", resolved.FontSize)
	}
	if resolved.FontFamily != DefaultFontFamily {
		t.Fatalf("hostile font family should fall back, got %q", resolved.FontFamily)
	}
	if resolved.Width != DefaultChatWidth {
		t.Fatalf("hostile width should fall back, got %q", resolved.Width)
	}
}

func TestResolveThemeAcceptsValidValues(t *testing.T) {
	resolved := ResolveTheme(domain.Theme{
		PrimaryColor: "#abc",
		FontSize:     "1.2rem",
		ChatWidth:    "100%",
		BorderRadius: "0px",
		Position:     domain.PositionBottomLeft,
	})
	if resolved.Primary != "#abc" || resolved.FontSize != "1.2rem" || resolved.Width != "100%" {
		t.Fatalf("valid values should pass through: %+v", resolved)
	}
	if resolved.Position != domain.PositionBottomLeft {
		t.Fatalf("position: got %q", resolved.Position)
	}
}
