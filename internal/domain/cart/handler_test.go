package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/drlist/drlist/internal/domain/catalog"
	"github.com/drlist/drlist/internal/platform/auth"
)

func newTestHandler(products ...catalog.Product) (*Handler, *echo.Echo) {
	svc := NewService(newMockRepo(), newMockCatalog(products...))
	return NewHandler(svc), echo.New()
}

func authedContext(e *echo.Echo, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_AddItem(t *testing.T) {
	p := shirt()
	h, e := newTestHandler(p)

	body := `{"product_id":"` + p.ID.String() + `","size":"M","quantity":2}`
	c, rec := authedContext(e, http.MethodPost, "/api/v1/cart/items", body, "u1")

	if err := h.AddItem(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var item Item
	json.Unmarshal(rec.Body.Bytes(), &item)
	if item.Quantity != 2 || item.Size != "M" {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestHandler_AddItem_UnknownProduct(t *testing.T) {
	h, e := newTestHandler()

	body := `{"product_id":"` + uuid.NewString() + `","quantity":1}`
	c, _ := authedContext(e, http.MethodPost, "/api/v1/cart/items", body, "u1")

	if err := h.AddItem(c); err == nil {
		t.Error("expected error for unknown product")
	}
}

func TestHandler_GetCart(t *testing.T) {
	p := shirt()
	h, e := newTestHandler(p)

	c, _ := authedContext(e, http.MethodPost,
		"/api/v1/cart/items", `{"product_id":"`+p.ID.String()+`","size":"M","quantity":3}`, "u1")
	if err := h.AddItem(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, rec := authedContext(e, http.MethodGet, "/api/v1/cart", "", "u1")
	if err := h.GetCart(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp cartResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if !resp.Total.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("expected total 75.00, got %s", resp.Total)
	}
}

func TestHandler_SetQuantityZeroRemoves(t *testing.T) {
	p := shirt()
	h, e := newTestHandler(p)

	c, rec := authedContext(e, http.MethodPost,
		"/api/v1/cart/items", `{"product_id":"`+p.ID.String()+`","size":"M","quantity":1}`, "u1")
	if err := h.AddItem(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var item Item
	json.Unmarshal(rec.Body.Bytes(), &item)

	c, rec = authedContext(e, http.MethodPatch, "/", `{"quantity":0}`, "u1")
	c.SetParamNames("id")
	c.SetParamValues(item.ID.String())
	if err := h.SetQuantity(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c, rec = authedContext(e, http.MethodGet, "/api/v1/cart", "", "u1")
	h.GetCart(c)
	var resp cartResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(resp.Items))
	}
}

func TestHandler_GetCart_OwnCartOnly(t *testing.T) {
	p := shirt()
	h, e := newTestHandler(p)

	c, _ := authedContext(e, http.MethodPost,
		"/api/v1/cart/items", `{"product_id":"`+p.ID.String()+`","size":"M","quantity":1}`, "u1")
	if err := h.AddItem(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, rec := authedContext(e, http.MethodGet, "/api/v1/cart", "", "u2")
	h.GetCart(c)

	var resp cartResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Items) != 0 {
		t.Errorf("expected u2 to see an empty cart, got %d items", len(resp.Items))
	}
}
