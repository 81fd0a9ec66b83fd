package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rogerio-castellano/eshop/internal/auth"
	handler "github.com/rogerio-castellano/eshop/internal/http/handlers"
)

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     int
	}{
		{"Valid credentials", "admin", adminPassword, http.StatusOK},
		{"Wrong password", "admin", "wrong", http.StatusUnauthorized},
		{"Unknown user", "guest", adminPassword, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(handler.CredentialsRequest{Username: tt.username, Password: tt.password})
			req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want != http.StatusOK {
				return
			}
			var resp handler.LoginResult
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected a token")
			}
		})
	}
}

func TestLoginHandler_InvalidInput(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d", w.Code)
	}
}

func TestWriteRoutesRequireAdminRole(t *testing.T) {
	viewer, err := auth.NewIssuer("test-secret", time.Minute).GenerateToken("viewer", "viewer")
	if err != nil {
		t.Fatalf("error generating token: %v", err)
	}

	t.Cleanup(clearAllProducts)
	before, _ := productRepo.GetAll(t.Context())

	body, _ := json.Marshal(handler.ProductRequest{Name: "Mouse", Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+viewer)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 Forbidden, got %d", w.Code)
	}
	if after, _ := productRepo.GetAll(t.Context()); len(after) != len(before) {
		t.Errorf("expected %d products, got %d", len(before), len(after))
	}
}

func TestSwaggerDocs(t *testing.T) {
	w := getPage(r, "/swagger/doc.json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("expected a JSON document: %v", err)
	}
	if doc["swagger"] != "2.0" {
		t.Errorf("expected a swagger 2.0 document, got %v", doc["swagger"])
	}
}
