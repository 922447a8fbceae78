package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the external chat-answering backend over HTTP. The backend
// owns tenants, knowledge indexing and question answering; this service only
// mirrors metadata locally.
type Client struct {
	baseURL        string
	internalSecret string
	httpClient     *http.Client
}

// APIError represents a backend error response. The backend reports errors
// through a "detail" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a backend client. internalSecret is attached to
// tenant and knowledge calls as x-internal-secret.
func NewClient(baseURL, internalSecret string) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		internalSecret: internalSecret,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
}

// BaseURL returns the configured backend origin. It is baked into generated
// widget scripts so the browser talks to the same backend the server does.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type askRequest struct {
	Question string `json:"question"`
	TenantID string `json:"tenant_id"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Detail string `json:"detail"`
}

// Ask relays a single question for a tenant and returns the answer text.
func (c *Client) Ask(ctx context.Context, question, tenantID string) (string, error) {
	var resp askResponse
	if err := c.post(ctx, "/chat/ask", askRequest{Question: question, TenantID: tenantID}, &resp, false); err != nil {
		return "", err
	}
	if resp.Answer == "" && resp.Detail != "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: resp.Detail}
	}
	return resp.Answer, nil
}

type tenantRequest struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	Username   string `json:"username"`
}

// CreateTenant provisions a tenant namespace in the backend.
func (c *Client) CreateTenant(ctx context.Context, tenantID, tenantName, username string) error {
	return c.post(ctx, "/auth/tenants", tenantRequest{
		TenantID:   tenantID,
		TenantName: tenantName,
		Username:   username,
	}, nil, true)
}

// DeleteTenant removes a tenant namespace in the backend.
func (c *Client) DeleteTenant(ctx context.Context, tenantID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/auth/tenants/"+url.PathEscape(tenantID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-internal-secret", c.internalSecret)
	return c.do(req, nil)
}

type ingestRequest struct {
	TenantID   string `json:"tenant_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
}

// IngestKnowledge pushes one knowledge document into the tenant's index.
func (c *Client) IngestKnowledge(ctx context.Context, tenantID, title, content, sourceType string) error {
	return c.post(ctx, "/knowledge/ingest", ingestRequest{
		TenantID:   tenantID,
		Title:      title,
		Content:    content,
		SourceType: sourceType,
	}, nil, true)
}

func (c *Client) post(ctx context.Context, path string, payload, out any, internal bool) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if internal {
		req.Header.Set("x-internal-secret", c.internalSecret)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Detail
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
