package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/domaintest"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/database/dbtest"
)

type mockProducer struct {
	healthy bool
}

func (m *mockProducer) IsHealthy() bool {
	return m.healthy
}

func healthy(ctx context.Context) error { return nil }

func failing(ctx context.Context) error { return errors.New("down") }

func serveHealth(t *testing.T, handler *HealthHandler) (int, HealthResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return w.Code, response
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	handler := NewHealthHandler(zerolog.Nop(),
		Component{Name: "database", Check: healthy},
		Component{Name: "telegram", Check: healthy},
	)

	code, response := serveHealth(t, handler)

	if code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, code)
	}
	if response.Status != HealthStatusHealthy {
		t.Errorf("Expected status %s, got %s", HealthStatusHealthy, response.Status)
	}
	if len(response.Components) != 2 {
		t.Errorf("Expected 2 components, got %d", len(response.Components))
	}
}

func TestHealthHandler_Degraded(t *testing.T) {
	handler := NewHealthHandler(zerolog.Nop(),
		Component{Name: "database", Check: healthy},
		Component{Name: "telegram", Check: failing},
	)

	code, response := serveHealth(t, handler)

	if code != http.StatusOK {
		t.Errorf("Expected status %d for degraded state, got %d", http.StatusOK, code)
	}
	if response.Status != HealthStatusDegraded {
		t.Errorf("Expected status %s, got %s", HealthStatusDegraded, response.Status)
	}
	if response.Components[1].Healthy || response.Components[1].Message != "down" {
		t.Errorf("Expected unhealthy telegram with message, got %+v", response.Components[1])
	}
}

func TestHealthHandler_AllUnhealthy(t *testing.T) {
	handler := NewHealthHandler(zerolog.Nop(),
		Component{Name: "database", Check: failing},
		Component{Name: "telegram", Check: failing},
	)

	code, response := serveHealth(t, handler)

	if code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, code)
	}
	if response.Status != HealthStatusUnhealthy {
		t.Errorf("Expected status %s, got %s", HealthStatusUnhealthy, response.Status)
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	handler := NewHealthHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
	if w.Header().Get("Allow") != http.MethodGet {
		t.Errorf("Expected Allow header GET, got %s", w.Header().Get("Allow"))
	}
}

func TestChecks(t *testing.T) {
	ctx := context.Background()

	if err := DatabaseCheck(dbtest.New(t))(ctx); err != nil {
		t.Errorf("Expected database check to pass, got %v", err)
	}

	client := &domaintest.TelegramClient{}
	if err := TelegramCheck(client)(ctx); err == nil {
		t.Error("Expected telegram check to fail while disconnected")
	}
	client.Connected = true
	if err := TelegramCheck(client)(ctx); err != nil {
		t.Errorf("Expected telegram check to pass, got %v", err)
	}

	snapshot := &domaintest.Snapshot{}
	if err := FolderSnapshotCheck(snapshot)(ctx); err == nil {
		t.Error("Expected snapshot check to fail while empty")
	}
	snapshot.Replace([]domain.Folder{{ID: 1, Name: "Music"}})
	if err := FolderSnapshotCheck(snapshot)(ctx); err != nil {
		t.Errorf("Expected snapshot check to pass, got %v", err)
	}

	if err := ProducerCheck(&mockProducer{healthy: false})(ctx); err == nil {
		t.Error("Expected producer check to fail")
	}
	if err := ProducerCheck(&mockProducer{healthy: true})(ctx); err != nil {
		t.Errorf("Expected producer check to pass, got %v", err)
	}
	if err := ProducerCheck(struct{}{})(ctx); err != nil {
		t.Errorf("Expected producer without state to pass, got %v", err)
	}
}
