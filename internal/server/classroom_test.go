package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/catalog"
	"classroom-tracker/internal/config"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{TeacherPassword: "secret"}
	srv := NewClassroomServer(cfg, nil, nil, nil, catalog.Default(), zerolog.Nop())
	return srv.Routes()
}

func TestVerifyTeacher(t *testing.T) {
	handler := newTestServer(t)

	cases := []struct {
		name    string
		body    string
		status  int
		success bool
	}{
		{name: "correct password", body: `{"password":"secret"}`, status: http.StatusOK, success: true},
		{name: "wrong password", body: `{"password":"nope"}`, status: http.StatusOK, success: false},
		{name: "empty password", body: `{"password":""}`, status: http.StatusOK, success: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/verify-teacher", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var resp struct {
				Success bool `json:"success"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Success != tc.success {
				t.Errorf("success = %v, want %v", resp.Success, tc.success)
			}
		})
	}
}

func TestVerifyTeacher_MalformedBody(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/verify-teacher", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBadgeCatalog(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/badge-catalog", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode catalog: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected a non-empty badge catalog")
	}

	seen := map[string]bool{}
	for _, e := range entries {
		if seen[e.ID] {
			t.Errorf("duplicate catalog entry %q", e.ID)
		}
		seen[e.ID] = true
		if e.Scope != "player" && e.Scope != "franchise" {
			t.Errorf("badge %q has unknown scope %q", e.ID, e.Scope)
		}
	}
	if !seen[string(catalog.BadgeFirstBlood)] {
		t.Error("catalog is missing the first scoring badge")
	}
	if !seen[string(catalog.BadgeTeamSpirit)] {
		t.Error("catalog is missing franchise badges")
	}
}

func TestRoutes_MethodMismatch(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/verify-teacher", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
