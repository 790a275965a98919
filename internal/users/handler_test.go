package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMeRouter(svc *Service, identity map[string]any) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		for k, v := range identity {
			c.Set(k, v)
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestMeRejectsGuests(t *testing.T) {
	router := newMeRouter(NewService(NewMemoryRepo()), map[string]any{
		"userId":  "guest:g1",
		"isGuest": true,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestMeFallsBackToClaims(t *testing.T) {
	router := newMeRouter(NewService(NewMemoryRepo()), map[string]any{
		"userId":    "google:1",
		"isGuest":   false,
		"userEmail": "jane@example.com",
		"userName":  "Jane Doe",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["id"] != "google:1" || payload["email"] != "jane@example.com" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestMeReturnsPersistedUser(t *testing.T) {
	repo := NewMemoryRepo()
	if err := repo.Upsert(context.Background(), User{ID: "google:1", Email: "stored@example.com", FullName: "Jane Doe"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	router := newMeRouter(NewService(repo), map[string]any{
		"userId":  "google:1",
		"isGuest": false,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["email"] != "stored@example.com" {
		t.Fatalf("email = %v, want stored row value", payload["email"])
	}
}
