package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAskReturnsAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/ask" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["tenant_id"] != "tenant-1" || req["question"] != "hi" {
			t.Errorf("unexpected payload: %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "hello"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	answer, err := c.Ask(context.Background(), "hi", "tenant-1")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer != "hello" {
		t.Fatalf("answer: got %q", answer)
	}
}

func TestAskSurfacesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "index not ready"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	_, err := c.Ask(context.Background(), "hi", "tenant-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable || apiErr.Message != "index not ready" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestTenantCallsCarryInternalSecret(t *testing.T) {
	var sawCreate, sawDelete bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-internal-secret") != "secret" {
			t.Errorf("missing internal secret on %s %s", r.Method, r.URL.Path)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/tenants":
			sawCreate = true
		case r.Method == http.MethodDelete && r.URL.Path == "/auth/tenants/tenant-1":
			sawDelete = true
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	if err := c.CreateTenant(context.Background(), "tenant-1", "Acme", "a@acme.test"); err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if err := c.DeleteTenant(context.Background(), "tenant-1"); err != nil {
		t.Fatalf("delete tenant: %v", err)
	}
	if !sawCreate || !sawDelete {
		t.Fatalf("expected both tenant calls, got create=%v delete=%v", sawCreate, sawDelete)
	}
}

func TestAskEmptyAnswerWithDetailIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "no documents"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	_, err := c.Ask(context.Background(), "hi", "tenant-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "no documents" {
		t.Fatalf("expected detail error, got %v", err)
	}
}
