package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aicookbook/recipechat/internal/service/kitchen"
)

func TestRouterMountsBasePath(t *testing.T) {
	r := NewRouter(kitchen.NewService(nil, nil), []string{"http://localhost:5173"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/recipeChat/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected CORS header %q", got)
	}
}

func TestRouterNotFoundUsesDetail(t *testing.T) {
	r := NewRouter(kitchen.NewService(nil, nil), nil, nil)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/personas", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "{\"detail\":\"Not Found\"}\n" {
		t.Fatalf("unexpected body %q", body)
	}
}
