package handlers_test_suite

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	handler "github.com/rogerio-castellano/eshop/internal/http/handlers"
)

func TestHomeRedirectsToList(t *testing.T) {
	w := getPage(r, "/")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/product/list" {
		t.Errorf("expected redirect to /product/list, got %q", loc)
	}
}

func TestListPage(t *testing.T) {
	t.Cleanup(clearAllProducts)

	t.Run("Empty list", func(t *testing.T) {
		w := getPage(r, "/product/list")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		body := w.Body.String()
		for _, want := range []string{
			"<title>Product List</title>",
			`<a href="/product/create">Create Product</a>`,
			"No products yet.",
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected page to contain %q", want)
			}
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected an HTML content type, got %q", ct)
		}
		// Quantities are looked up as substrings of the page.
		for _, quantity := range []string{"0", "10"} {
			if strings.Contains(body, quantity) {
				t.Errorf("expected an empty list page not to contain %q", quantity)
			}
		}
	})

	t.Run("Products rendered as table cells", func(t *testing.T) {
		created, _ := decodeProduct(createProduct(r, handler.ProductRequest{Name: "Tom & Jerry", Quantity: 12}))

		body := getPage(r, "/product/list").Body.String()
		for _, want := range []string{
			"<td>Tom &amp; Jerry</td>",
			"<td>12</td>",
			`href="/product/edit/` + created.ID + `"`,
			`action="/product/delete/` + created.ID + `"`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected page to contain %q", want)
			}
		}
	})
}

func TestStylesheet(t *testing.T) {
	w := getPage(r, "/static/style.css")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("expected a CSS content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "border-collapse") {
		t.Error("expected the table styles")
	}
}

func TestCreatePage(t *testing.T) {
	w := getPage(r, "/product/create")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<title>Create New Product</title>",
		`<form method="post" action="/product/create">`,
		`<input id="nameInput" name="productName" type="text" value="">`,
		`<input id="quantityInput" name="productQuantity" type="number" value="">`,
		`<button type="submit">Save</button>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestCreateSubmit(t *testing.T) {
	t.Cleanup(clearAllProducts)

	w := submitForm(r, "/product/create", url.Values{"productName": {"Test Product"}, "productQuantity": {"10"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 See Other, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/product/list" {
		t.Errorf("expected redirect to /product/list, got %q", loc)
	}

	products, _ := productRepo.GetAll(context.Background())
	if len(products) != 1 || products[0].Name != "Test Product" || products[0].Quantity != 10 {
		t.Fatalf("unexpected products: %+v", products)
	}
	if products[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	submitForm(r, "/product/create", url.Values{"productName": {"Test Product"}, "productQuantity": {"10"}})
	products, _ = productRepo.GetAll(context.Background())
	if len(products) != 2 {
		t.Errorf("expected a second product with the same name, got %d products", len(products))
	}
}

func TestCreateSubmit_Invalid(t *testing.T) {
	t.Cleanup(clearAllProducts)

	tests := []struct {
		name       string
		values     url.Values
		wantErrors []string
		wantValue  string
	}{
		{
			name:       "Missing name",
			values:     url.Values{"productQuantity": {"10"}},
			wantErrors: []string{"Name is required"},
			wantValue:  `value="10"`,
		},
		{
			name:       "Negative quantity",
			values:     url.Values{"productName": {"Widget"}, "productQuantity": {"-1"}},
			wantErrors: []string{"Quantity cannot be negative"},
			wantValue:  `value="Widget"`,
		},
		{
			name:       "Missing quantity",
			values:     url.Values{"productName": {"Widget"}},
			wantErrors: []string{"Quantity is required"},
		},
		{
			name:       "Quantity not a number",
			values:     url.Values{"productName": {""}, "productQuantity": {"ten"}},
			wantErrors: []string{"Name is required", "Quantity must be a whole number"},
			wantValue:  `value="ten"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := submitForm(r, "/product/create", tt.values)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", w.Code)
			}
			body := w.Body.String()
			if !strings.Contains(body, "<title>Create New Product</title>") {
				t.Error("expected the creation form to be shown again")
			}
			for _, e := range tt.wantErrors {
				if !strings.Contains(body, e) {
					t.Errorf("expected error %q in page", e)
				}
			}
			if tt.wantValue != "" && !strings.Contains(body, tt.wantValue) {
				t.Errorf("expected submitted %s to be kept", tt.wantValue)
			}
		})
	}

	products, _ := productRepo.GetAll(context.Background())
	if len(products) != 0 {
		t.Errorf("expected no products to be stored, got %d", len(products))
	}
}

func TestEditAndDeletePages(t *testing.T) {
	t.Cleanup(clearAllProducts)

	created, _ := decodeProduct(createProduct(r, handler.ProductRequest{Name: "Chair", Quantity: 3}))

	w := getPage(r, "/product/edit/"+created.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<title>Edit Product</title>") || !strings.Contains(body, `value="Chair"`) || !strings.Contains(body, `value="3"`) {
		t.Errorf("expected edit form prefilled with the product, got %s", body)
	}

	w = submitForm(r, "/product/edit/"+created.ID, url.Values{"productName": {"Armchair"}, "productQuantity": {"4"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 See Other, got %d", w.Code)
	}
	updated, err := productRepo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected product to exist: %v", err)
	}
	if updated.Name != "Armchair" || updated.Quantity != 4 {
		t.Errorf("unexpected product after edit: %+v", updated)
	}

	w = submitForm(r, "/product/edit/"+created.ID, url.Values{"productName": {""}, "productQuantity": {"4"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for invalid edit, got %d", w.Code)
	}

	w = submitForm(r, "/product/delete/"+created.ID, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 See Other, got %d", w.Code)
	}
	if _, err := productRepo.GetByID(context.Background(), created.ID); err == nil {
		t.Error("expected product to be deleted")
	}
}

func TestPagesNotFound(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"Unknown route", http.MethodGet, "/nope"},
		{"Edit unknown product", http.MethodGet, "/product/edit/missing"},
		{"Submit edit for unknown product", http.MethodPost, "/product/edit/missing"},
		{"Delete unknown product", http.MethodPost, "/product/delete/missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var code int
			var body string
			if tt.method == http.MethodGet {
				w := getPage(r, tt.path)
				code, body = w.Code, w.Body.String()
			} else {
				w := submitForm(r, tt.path, url.Values{"productName": {"x"}, "productQuantity": {"1"}})
				code, body = w.Code, w.Body.String()
			}
			if code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d", code)
			}
			if !strings.Contains(body, "<title>Not Found</title>") {
				t.Errorf("expected the not found page, got %s", body)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	w := getPage(r, "/healthz")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", w.Code, w.Body.String())
	}
}
