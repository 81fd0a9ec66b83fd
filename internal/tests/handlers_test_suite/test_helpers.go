package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/rogerio-castellano/eshop/internal/auth"
	handler "github.com/rogerio-castellano/eshop/internal/http/handlers"
	"github.com/rogerio-castellano/eshop/internal/http/router"
	"github.com/rogerio-castellano/eshop/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

const adminPassword = "secret"

var (
	token       string
	productRepo *repo.InMemoryProductRepository
	r           http.Handler
)

func init() {
	var err error
	r, err = newTestRouter(adminPassword)
	if err != nil {
		panic(fmt.Sprintf("error building router: %v", err))
	}

	token, err = generateToken(r, "admin", adminPassword)
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

func newTestRouter(password string) (http.Handler, error) {
	productRepo = repo.NewInMemoryProductRepository()

	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	issuer := auth.NewIssuer("test-secret", time.Minute)
	srv, err := handler.NewServer(productRepo, issuer, auth.Credentials{Username: "admin", PasswordHash: hash}, nil)
	if err != nil {
		return nil, err
	}
	return router.NewRouter(router.Options{Server: srv, Issuer: issuer}), nil
}

func clearAllProducts() {
	productRepo.Clear()
}

func generateToken(r http.Handler, username, password string) (string, error) {
	payload := handler.CredentialsRequest{Username: username, Password: password}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", w.Code)
	}
	var resp handler.LoginResult
	err := json.NewDecoder(w.Body).Decode(&resp)
	if err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(p)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeProduct(w *httptest.ResponseRecorder) (handler.ProductResponse, error) {
	var resp handler.ProductResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	return resp, err
}

func submitForm(r http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPage(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

func importCSV(r http.Handler, csvContent string) *httptest.ResponseRecorder {
	body, contentType := multipartCSV(csvContent, "products.csv")
	req := httptest.NewRequest(http.MethodPost, "/api/products/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
