package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/drlist/drlist/pkg/pagination"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := NewService(newMockRepo())
	return NewHandler(svc), echo.New()
}

func TestHandler_CreateProduct(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Alpha Shirt","price":"25.00","category":"shirts"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateProduct(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p Product
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.Name != "Alpha Shirt" {
		t.Errorf("expected Alpha Shirt, got %s", p.Name)
	}
}

func TestHandler_CreateProduct_MissingName(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"price":"5"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateProduct(c); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestHandler_ListProducts_Filtered(t *testing.T) {
	h, e := newTestHandler()

	for _, body := range []string{
		`{"name":"Alpha Shirt","price":"25.00","category":"shirts"}`,
		`{"name":"Gamma Shoes","price":"60.00","category":"shoes"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		if err := h.CreateProduct(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=shirts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListProducts(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp pagination.Response
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Errorf("expected 1 filtered product, got %d", resp.Total)
	}
}

func TestHandler_ListProducts_InvalidSort(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=sideways", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListProducts(c); err == nil {
		t.Error("expected error for invalid sort mode")
	}
}

func TestHandler_GetProduct_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.GetProduct(c); err == nil {
		t.Error("expected error for invalid id")
	}
}
