package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/1karan0/chatAdmin/internal/app"
	"github.com/1karan0/chatAdmin/internal/embed"
	"github.com/1karan0/chatAdmin/internal/util"
)

// embedNotFoundBody is the exact body both embed endpoints return for
// unknown and non-deployed bots, so the two cases cannot be told apart.
const embedNotFoundBody = "Bot not found or not deployed"

// /embed/{botId} serves the iframe page, /embed/{botId}/widget.js the
// injectable script. Both are public and cacheable.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/embed/")
	parts := strings.SplitN(path, "/", 2)
	botID := parts[0]
	if botID == "" {
		embedNotFound(w)
		return
	}
	wantWidget := false
	if len(parts) == 2 {
		if parts[1] != "widget.js" {
			embedNotFound(w)
			return
		}
		wantWidget = true
	}

	snap, err := s.app.Embed(botID)
	if err != nil {
		if errors.Is(err, app.ErrBotNotFound) || errors.Is(err, app.ErrBotNotDeployed) {
			embedNotFound(w)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var body, contentType string
	if wantWidget {
		body, err = embed.RenderWidget(snap.Bot, snap.Theme, snap.TenantID, s.backendOrigin)
		contentType = "application/javascript; charset=utf-8"
	} else {
		body, err = embed.RenderPage(snap.Bot, snap.Theme, snap.TenantID, s.backendOrigin)
		contentType = "text/html; charset=utf-8"
	}
	if err != nil {
		logger := util.LoggerFromContext(r.Context())
		logger.Error("embed render failed", "bot_id", botID, "widget", wantWidget, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", s.widgetMaxAge))
	_, _ = w.Write([]byte(body))
}

func embedNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(embedNotFoundBody))
}
