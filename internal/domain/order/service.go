package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/drlist/drlist/internal/domain/cart"
	"github.com/drlist/drlist/internal/platform/db"
	"github.com/drlist/drlist/internal/platform/live"
)

type Service struct {
	repo  Repository
	carts cart.Repository
	pool  *pgxpool.Pool
	pub   live.Publisher
}

// NewService wires the order service. pool may be nil in tests; placement
// then runs without a surrounding transaction.
func NewService(repo Repository, carts cart.Repository, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, carts: carts, pool: pool}
}

// SetPublisher attaches an optional live feed publisher.
func (s *Service) SetPublisher(pub live.Publisher) {
	s.pub = pub
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalOrders    int             `json:"total_orders"`
	CountsByStatus map[string]int  `json:"counts_by_status"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// PlaceOrder freezes the user's cart into an order: line items are copied,
// the total is computed at placement, and the cart is cleared. Order
// creation and cart clearing commit together.
func (s *Service) PlaceOrder(ctx context.Context, userID, userEmail, address, payment string) (*Order, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if payment == "" {
		payment = PaymentCashOnDelivery
	}

	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	o := &Order{
		UserID:    userID,
		UserEmail: userEmail,
		Status:    StatusPending,
		Total:     cart.Total(items),
		Address:   address,
		Payment:   payment,
		Items:     make([]LineItem, len(items)),
	}
	for i, it := range items {
		o.Items[i] = LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			ImageURL:  it.ImageURL,
			Size:      it.Size,
			Quantity:  it.Quantity,
		}
	}

	place := func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return err
		}
		return s.carts.Clear(ctx, userID)
	}
	if s.pool != nil {
		err = db.WithTx(ctx, s.pool, place)
	} else {
		err = place(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.publishOrder(ctx, o)
	s.publishCartSnapshot(ctx, userID)
	return o, nil
}

// GetOrder returns an order with its items and history, status normalized.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = NormalizeStatus(o.Status)
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]Order, int, error) {
	orders, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	normalize(orders)
	return orders, total, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	normalize(orders)
	return orders, nil
}

// BrowseOrders is the admin view stage: status filter then text search
// over the full order list.
func (s *Service) BrowseOrders(ctx context.Context, status, query string) ([]Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	normalize(orders)
	return Search(FilterByStatus(orders, status), query), nil
}

// UpdateStatus moves an order to a new status and appends to its history.
// The status set is fixed; Completed is accepted and stored as Delivered.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status, changedBy string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid status: %s", status)
	}
	canonical := NormalizeStatus(status)

	update := func(ctx context.Context) error {
		return s.repo.UpdateStatus(ctx, id, canonical, changedBy)
	}
	var err error
	if s.pool != nil {
		err = db.WithTx(ctx, s.pool, update)
	} else {
		err = update(ctx)
	}
	if err != nil {
		return err
	}

	if o, err := s.repo.GetByID(ctx, id); err == nil {
		s.publishOrder(ctx, o)
	}
	return nil
}

func (s *Service) StatusHistory(ctx context.Context, id uuid.UUID) ([]StatusChange, error) {
	return s.repo.StatusHistory(ctx, id)
}

// DashboardStats aggregates over all orders for the admin dashboard.
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalOrders:    len(orders),
		CountsByStatus: CountByStatus(orders),
		Revenue:        Revenue(orders),
	}, nil
}

// publishOrdersSnapshot pushes a full-list snapshot to the orders topic.
func (s *Service) publishOrdersSnapshot(ctx context.Context, orders []Order) {
	if s.pub == nil {
		return
	}
	event, err := live.NewSnapshotEvent(live.TopicOrders, "orders", "", orders)
	if err != nil {
		log.Warn().Err(err).Msg("order snapshot encode failed")
		return
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Msg("order snapshot publish failed")
	}
}

func normalize(orders []Order) {
	for i := range orders {
		orders[i].Status = NormalizeStatus(orders[i].Status)
	}
}

func (s *Service) publishOrder(ctx context.Context, o *Order) {
	if s.pub == nil {
		return
	}
	topics := []string{live.TopicOrders, live.OrderTopic(o.ID.String())}
	for _, topic := range topics {
		event, err := live.NewSnapshotEvent(topic, "orders", o.ID.String(), o)
		if err != nil {
			log.Warn().Err(err).Msg("order snapshot encode failed")
			return
		}
		if err := s.pub.Publish(ctx, event); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("order snapshot publish failed")
		}
	}
}

func (s *Service) publishCartSnapshot(ctx context.Context, userID string) {
	if s.pub == nil {
		return
	}
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return
	}
	event, err := live.NewSnapshotEvent(live.CartTopic(userID), "cart_items", "", items)
	if err != nil {
		return
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Msg("cart snapshot publish failed")
	}
}
