package embed

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/1karan0/chatAdmin/pkg/domain"
)

// Literal visual defaults applied when a theme field is absent or unusable.
const (
	DefaultPrimaryColor  = "#667eea"
	DefaultGradientEnd   = "#764ba2"
	DefaultBubbleColor   = "#ffffff"
	DefaultInputWell     = "#f1f3f5"
	DefaultSurfaceColor  = "#ffffff"
	DefaultCanvasColor   = "#f8f9fa"
	DefaultUserTextColor = "#ffffff"
	DefaultBotTextColor  = "#1a1a1a"
	DefaultFontFamily    = `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif`
	DefaultFontSize      = "14px"
	DefaultChatWidth     = "380px"
	DefaultChatHeight    = "600px"
	DefaultBorderRadius  = "16px"
)

var (
	hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	cssSizeRe  = regexp.MustCompile(`^\d+(?:\.\d+)?(?:px|em|rem|vh|vw|%)$`)
	// Reject anything that could break out of a CSS declaration.
	fontFamilyBadRe = regexp.MustCompile(`[;{}<>&\\/]`)
)

// ResolvedTheme is the fully-defaulted, validated set of presentation values
// the renderers interpolate. Every field is guaranteed non-empty and safe to
// place in a CSS declaration, so templates can treat them as trusted CSS.
type ResolvedTheme struct {
	Primary     string
	GradientEnd string // header/launcher gradient stop (80% mix)
	BubbleEnd   string // user bubble gradient stop (90% mix)
	Bubble      string
	InputWell   string
	Surface     string
	Canvas      string
	UserText    string
	BotText     string
	FontFamily  string
	FontSize    string
	Width       string
	Height      string
	Radius      string
	Position    domain.ChatPosition
}

// ResolveTheme applies defaults and validation over raw theme fields.
// A field with an unexpected value is treated as absent, never an error.
func ResolveTheme(t domain.Theme) ResolvedTheme {
	primary := color(t.PrimaryColor, "")
	resolved := ResolvedTheme{
		Primary:     primary,
		GradientEnd: gradientEnd(primary, 80),
		BubbleEnd:   gradientEnd(primary, 90),
		Bubble:      color(t.SecondaryColor, DefaultBubbleColor),
		InputWell:   color(t.SecondaryColor, DefaultInputWell),
		Surface:     color(t.BackgroundColor, DefaultSurfaceColor),
		Canvas:      color(t.BackgroundColor, DefaultCanvasColor),
		UserText:    color(t.UserTextColor, DefaultUserTextColor),
		BotText:     color(t.BotTextColor, DefaultBotTextColor),
		FontFamily:  fontFamily(t.FontFamily),
		FontSize:    size(t.FontSize, DefaultFontSize),
		Width:       size(t.ChatWidth, DefaultChatWidth),
		Height:      size(t.ChatHeight, DefaultChatHeight),
		Radius:      size(t.BorderRadius, DefaultBorderRadius),
		Position:    domain.PositionBottomRight,
	}
	if resolved.Primary == "" {
		resolved.Primary = DefaultPrimaryColor
	}
	if t.Position == domain.PositionBottomLeft {
		resolved.Position = domain.PositionBottomLeft
	}
	return resolved
}

// gradientEnd darkens a custom primary via CSS color-mix; without a custom
// primary the stock violet gradient end is used.
func gradientEnd(primary string, keepPct int) string {
	if primary == "" {
		return DefaultGradientEnd
	}
	return fmt.Sprintf("color-mix(in srgb, %s %d%%, #000)", primary, keepPct)
}

func color(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if hexColorRe.MatchString(raw) {
		return raw
	}
	return fallback
}

func size(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if cssSizeRe.MatchString(raw) {
		return raw
	}
	return fallback
}

func fontFamily(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || fontFamilyBadRe.MatchString(raw) {
		return DefaultFontFamily
	}
	return raw
}
