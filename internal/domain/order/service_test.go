package order

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drlist/drlist/internal/domain/cart"
)

// -- Mock Repositories --

type mockRepo struct {
	orders  map[uuid.UUID]*Order
	history map[uuid.UUID][]StatusChange
	seq     int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		orders:  make(map[uuid.UUID]*Order),
		history: make(map[uuid.UUID][]StatusChange),
	}
}

func (m *mockRepo) Create(_ context.Context, o *Order) error {
	o.ID = uuid.New()
	if o.Status == "" {
		o.Status = StatusPending
	}
	m.seq++
	o.CreatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
	cp := *o
	m.orders[o.ID] = &cp
	m.history[o.ID] = []StatusChange{{
		ID: uuid.New(), OrderID: o.ID, Status: o.Status, ChangedBy: o.UserID, ChangedAt: o.CreatedAt,
	}}
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *o
	cp.StatusHistory = m.history[id]
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]Order, int, error) {
	all, _ := m.ListAll(context.Background())
	total := len(all)
	if offset > len(all) {
		return []Order{}, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]Order, error) {
	var all []Order
	for _, o := range m.orders {
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	all, _ := m.ListAll(context.Background())
	var mine []Order
	for _, o := range all {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	return mine, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status, changedBy string) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	o.Status = status
	m.history[id] = append(m.history[id], StatusChange{
		ID: uuid.New(), OrderID: id, Status: status, ChangedBy: changedBy, ChangedAt: time.Now(),
	})
	return nil
}

func (m *mockRepo) StatusHistory(_ context.Context, id uuid.UUID) ([]StatusChange, error) {
	return m.history[id], nil
}

type mockCartRepo struct {
	items map[string][]cart.Item
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{items: make(map[string][]cart.Item)}
}

func (m *mockCartRepo) Upsert(_ context.Context, item *cart.Item) error {
	item.ID = uuid.New()
	m.items[item.UserID] = cart.Merge(m.items[item.UserID], *item)
	return nil
}

func (m *mockCartRepo) SetQuantity(_ context.Context, userID string, itemID uuid.UUID, quantity int) error {
	return nil
}

func (m *mockCartRepo) Remove(_ context.Context, userID string, itemID uuid.UUID) error {
	return nil
}

func (m *mockCartRepo) ListByUser(_ context.Context, userID string) ([]cart.Item, error) {
	return m.items[userID], nil
}

func (m *mockCartRepo) Clear(_ context.Context, userID string) error {
	delete(m.items, userID)
	return nil
}

func seedCart(carts *mockCartRepo, userID string) {
	carts.Upsert(context.Background(), &cart.Item{
		UserID: userID, ProductID: uuid.New(), Name: "Alpha Shirt",
		Price: decimal.RequireFromString("25.00"), Size: "M", Quantity: 2,
	})
	carts.Upsert(context.Background(), &cart.Item{
		UserID: userID, ProductID: uuid.New(), Name: "Gamma Shoes",
		Price: decimal.RequireFromString("60.00"), Size: "42", Quantity: 1,
	})
}

// -- Tests --

func TestPlaceOrder(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)

	o, err := svc.PlaceOrder(context.Background(), "u1", "u1@example.com", "1 Main St", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusPending {
		t.Errorf("expected new order Pending, got %s", o.Status)
	}
	if !o.Total.Equal(decimal.RequireFromString("110.00")) {
		t.Errorf("expected total 110.00, got %s", o.Total)
	}
	if len(o.Items) != 2 {
		t.Errorf("expected 2 frozen line items, got %d", len(o.Items))
	}

	// The cart is cleared after placement.
	left, _ := carts.ListByUser(context.Background(), "u1")
	if len(left) != 0 {
		t.Errorf("expected cart cleared, got %d rows", len(left))
	}
}

func TestPlaceOrder_PaymentMethod(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)

	o, err := svc.PlaceOrder(context.Background(), "u1", "", "1 Main St", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Payment != PaymentCashOnDelivery {
		t.Errorf("expected default payment %s, got %s", PaymentCashOnDelivery, o.Payment)
	}

	seedCart(carts, "u2")
	o2, err := svc.PlaceOrder(context.Background(), "u2", "", "2 Main St", "CARD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o2.Payment != "CARD" {
		t.Errorf("expected payment CARD, got %s", o2.Payment)
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc := NewService(newMockRepo(), newMockCartRepo(), nil)
	if _, err := svc.PlaceOrder(context.Background(), "u1", "", "1 Main St", ""); err == nil {
		t.Error("expected error for empty cart")
	}
}

func TestPlaceOrder_RequiresAddress(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)
	if _, err := svc.PlaceOrder(context.Background(), "u1", "", "", ""); err == nil {
		t.Error("expected error for missing address")
	}
}

func TestPlaceOrder_FrozenLineItems(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)

	o, err := svc.PlaceOrder(context.Background(), "u1", "", "1 Main St", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.GetOrder(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(got.Items))
	}
	for _, it := range got.Items {
		if it.Name != "Alpha Shirt" && it.Name != "Gamma Shoes" {
			t.Errorf("unexpected line item %q", it.Name)
		}
	}
}

func TestUpdateStatus_AppendsHistory(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)

	o, _ := svc.PlaceOrder(context.Background(), "u1", "", "1 Main St", "")

	if err := svc.UpdateStatus(context.Background(), o.ID, StatusShipped, "admin-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.UpdateStatus(context.Background(), o.ID, StatusDelivered, "admin-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, err := svc.StatusHistory(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if history[0].Status != StatusPending || history[1].Status != StatusShipped || history[2].Status != StatusDelivered {
		t.Errorf("unexpected history order: %+v", history)
	}
	if history[1].ChangedBy != "admin-1" {
		t.Errorf("expected changed_by admin-1, got %s", history[1].ChangedBy)
	}
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)
	o, _ := svc.PlaceOrder(context.Background(), "u1", "", "1 Main St", "")

	for _, status := range []string{StatusConfirmed, StatusShipped, StatusDelivered} {
		if err := svc.UpdateStatus(context.Background(), o.ID, status, "admin-1"); err != nil {
			t.Fatalf("unexpected error setting %s: %v", status, err)
		}
	}

	history, _ := svc.StatusHistory(context.Background(), o.ID)
	if len(history) != 4 {
		t.Fatalf("expected 4 history entries, got %d", len(history))
	}
	if history[1].Status != StatusConfirmed {
		t.Errorf("expected Confirmed after Pending, got %s", history[1].Status)
	}
}

func TestUpdateStatus_Rejected(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)
	o, _ := svc.PlaceOrder(context.Background(), "u1", "", "1 Main St", "")

	if err := svc.UpdateStatus(context.Background(), o.ID, StatusRejected, "admin-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetOrder(context.Background(), o.ID)
	if got.Status != StatusRejected {
		t.Errorf("expected Rejected, got %s", got.Status)
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)
	o, _ := svc.PlaceOrder(context.Background(), "u1", "", "1 Main St", "")

	if err := svc.UpdateStatus(context.Background(), o.ID, "Teleported", "admin-1"); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestUpdateStatus_CompletedStoredAsDelivered(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, "u1")
	svc := NewService(newMockRepo(), carts, nil)
	o, _ := svc.PlaceOrder(context.Background(), "u1", "", "1 Main St", "")

	if err := svc.UpdateStatus(context.Background(), o.ID, StatusCompleted, "admin-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetOrder(context.Background(), o.ID)
	if got.Status != StatusDelivered {
		t.Errorf("expected Completed to be stored as Delivered, got %s", got.Status)
	}
}

func TestBrowseOrders(t *testing.T) {
	repo := newMockRepo()
	carts := newMockCartRepo()
	svc := NewService(repo, carts, nil)

	for i, userID := range []string{"alice", "bob", "carol"} {
		seedCart(carts, userID)
		o, err := svc.PlaceOrder(context.Background(), userID, "", "1 Main St", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i > 0 {
			svc.UpdateStatus(context.Background(), o.ID, StatusShipped, "admin-1")
		}
	}

	shipped, err := svc.BrowseOrders(context.Background(), StatusShipped, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shipped) != 2 {
		t.Errorf("expected 2 shipped orders, got %d", len(shipped))
	}

	found, err := svc.BrowseOrders(context.Background(), StatusAll, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[0].UserID != "bob" {
		t.Errorf("expected bob's order, got %+v", found)
	}

	// Status filter and search compose.
	none, _ := svc.BrowseOrders(context.Background(), StatusPending, "bob")
	if len(none) != 0 {
		t.Errorf("expected no pending order for bob, got %d", len(none))
	}
}

func TestDashboardStats(t *testing.T) {
	repo := newMockRepo()
	carts := newMockCartRepo()
	svc := NewService(repo, carts, nil)

	var ids []uuid.UUID
	for _, userID := range []string{"u1", "u2", "u3"} {
		seedCart(carts, userID)
		o, _ := svc.PlaceOrder(context.Background(), userID, "", "1 Main St", "")
		ids = append(ids, o.ID)
	}
	svc.UpdateStatus(context.Background(), ids[0], StatusDelivered, "admin-1")

	stats, err := svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalOrders != 3 {
		t.Errorf("expected 3 orders, got %d", stats.TotalOrders)
	}
	if stats.CountsByStatus[StatusPending] != 2 || stats.CountsByStatus[StatusDelivered] != 1 {
		t.Errorf("unexpected counts: %+v", stats.CountsByStatus)
	}
	if !stats.Revenue.Equal(decimal.RequireFromString("110.00")) {
		t.Errorf("expected revenue 110.00, got %s", stats.Revenue)
	}
}
