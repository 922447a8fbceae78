package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/1karan0/chatAdmin/internal/app"
	"github.com/1karan0/chatAdmin/internal/chatclient"
	"github.com/1karan0/chatAdmin/internal/util"
	"github.com/1karan0/chatAdmin/pkg/domain"
)

type callbackRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Workspace string `json:"workspace"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// handleAuthCallback records a signed-in account, provisions its tenant and
// mints a dashboard session. Only the OAuth front layer may call it.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req callbackRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.app.EnsureUser(r.Context(), req.Email, req.Name, req.Image, req.Workspace)
	if err != nil {
		writeAppError(w, err)
		return
	}
	token, err := s.sessions.NewSession(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	logger := util.LoggerFromContext(r.Context())
	logger.Info("security_event",
		"event", "session_issued",
		"user_id", user.ID,
		"tenant_status", user.TenantStatus)
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if token, ok := bearerToken(r); ok {
		_ = s.sessions.DeleteSession(token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleRetryTenant re-attempts backend tenant provisioning for accounts
// whose first attempt failed.
func (s *Server) handleRetryTenant(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	updated, err := s.app.RetryTenantProvisioning(r.Context(), user.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleBots(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		bots, err := s.app.ListBots(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": bots,
			"count": len(bots),
		})
	case http.MethodPost:
		var in app.BotInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		bot, err := s.app.CreateBot(user.ID, in)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, bot)
	default:
		methodNotAllowed(w)
	}
}

// /api/bots/{id} plus the deploy, chat and knowledge subresources.
func (s *Server) handleBotByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bots/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		notFound(w, "not found")
		return
	}
	if len(parts) == 2 {
		switch {
		case parts[1] == "deploy":
			s.handleDeploy(w, r, user, id)
		case parts[1] == "chat":
			s.handleChat(w, r, user, id)
		case parts[1] == "knowledge":
			s.handleKnowledge(w, r, user, id)
		case strings.HasPrefix(parts[1], "knowledge/"):
			s.handleKnowledgeItem(w, r, user, id, strings.TrimPrefix(parts[1], "knowledge/"))
		default:
			notFound(w, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		bot, err := s.app.GetOwnedBot(user.ID, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		theme, err := s.app.GetTheme(bot.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"bot":   bot,
			"theme": theme,
		})
	case http.MethodPut:
		var in app.BotInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		bot, err := s.app.UpdateBot(user.ID, id, in)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bot)
	case http.MethodDelete:
		if err := s.app.DeleteBot(r.Context(), user.ID, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	bot, err := s.app.DeployBot(r.Context(), user.ID, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bot)
}

type chatRequest struct {
	Question string `json:"question"`
}

// handleChat relays a dashboard test question to the answering backend.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	answer, err := s.app.Ask(r.Context(), user.ID, id, req.Question)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

type knowledgeRequest struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.app.ListKnowledge(user.ID, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": items,
			"count": len(items),
		})
	case http.MethodPost:
		s.handleAddKnowledge(w, r, user, id)
	default:
		methodNotAllowed(w)
	}
}

// handleAddKnowledge accepts either a JSON body (text and url sources) or a
// multipart form with a file field.
func (s *Server) handleAddKnowledge(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if s.maxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form data")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file is required (field: file)")
			return
		}
		defer file.Close()
		item, err := s.app.AddKnowledge(r.Context(), user.ID, id, app.KnowledgeInput{
			Title:    r.FormValue("title"),
			Type:     domain.KnowledgeFile,
			File:     file,
			FileName: header.Filename,
			FileSize: header.Size,
			MimeType: header.Header.Get("Content-Type"),
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
		return
	}

	var req knowledgeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in := app.KnowledgeInput{
		Title:     req.Title,
		Content:   req.Content,
		SourceURL: req.URL,
	}
	switch strings.ToLower(strings.TrimSpace(req.Type)) {
	case string(domain.KnowledgeText):
		in.Type = domain.KnowledgeText
	case string(domain.KnowledgeURL):
		in.Type = domain.KnowledgeURL
	default:
		writeError(w, http.StatusBadRequest, "type must be text or url")
		return
	}
	item, err := s.app.AddKnowledge(r.Context(), user.ID, id, in)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleKnowledgeItem serves /api/bots/{id}/knowledge/{itemId}/download with a
// presigned object-store link for file items.
func (s *Server) handleKnowledgeItem(w http.ResponseWriter, r *http.Request, user domain.User, botID, rest string) {
	itemID, action, _ := strings.Cut(rest, "/")
	if itemID == "" || action != "download" {
		notFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	url, err := s.app.KnowledgeDownloadURL(r.Context(), user.ID, botID, itemID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// writeAppError maps application errors onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	var apiErr *chatclient.APIError
	switch {
	case errors.Is(err, app.ErrBotNotFound):
		writeError(w, http.StatusNotFound, "bot not found")
	case errors.Is(err, app.ErrBotNotDeployed):
		writeError(w, http.StatusNotFound, "bot not deployed")
	case errors.Is(err, app.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrTenantNotReady):
		writeError(w, http.StatusConflict, "tenant not provisioned")
	case errors.Is(err, app.ErrKnowledgeNotFound):
		writeError(w, http.StatusNotFound, "knowledge item not found")
	case errors.Is(err, app.ErrInvalidKnowledge), errors.Is(err, app.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, apiErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
