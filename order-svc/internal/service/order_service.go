package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type CreatedOrder struct {
	Order     *domain.PendingOrder `json:"order"`
	Token     string               `json:"token"`
	QRCodeURL string               `json:"qr_code_url"`
}

type ManualOrderLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type ManualOrderRequest struct {
	RestaurantID string            `json:"restaurant_id"`
	TableNumber  string            `json:"table_number"`
	Items        []ManualOrderLine `json:"items"`
}

type OrderDeps struct {
	Orders      OrderRepository
	Carts       CartServiceInterface
	Ledger      *Ledger
	Menu        MenuRepository
	Restaurants RestaurantRepository
	Bus         StatusBus
	Events      EventPublisher
	QR          QRGenerator
	Logger      zerolog.Logger
	// BaseURL prefixes the QR image link returned by CreateOrder; empty keeps it relative.
	BaseURL     string
}

type OrderService struct {
	orders      OrderRepository
	carts       CartServiceInterface
	ledger      *Ledger
	menu        MenuRepository
	restaurants RestaurantRepository
	bus         StatusBus
	events      EventPublisher
	qr          QRGenerator
	logger      zerolog.Logger
	baseURL     string
	now         func() time.Time
	newID       func() string
}

func NewOrderService(deps OrderDeps) *OrderService {
	return &OrderService{
		orders:      deps.Orders,
		carts:       deps.Carts,
		ledger:      deps.Ledger,
		menu:        deps.Menu,
		restaurants: deps.Restaurants,
		bus:         deps.Bus,
		events:      deps.Events,
		qr:          deps.QR,
		logger:      deps.Logger,
		baseURL:     strings.TrimRight(deps.BaseURL, "/"),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// ClampRedemption limits a requested redemption to [0, min(total, available)].
func ClampRedemption(requested, total, available decimal.Decimal) decimal.Decimal {
	limit := decimal.Min(total, available)
	if requested.IsNegative() || limit.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(requested, limit)
}

// CreateOrder turns the session's cart into a pending order. On any validation
// failure nothing is written and the cart is left as it was.
func (s *OrderService) CreateOrder(ctx context.Context, session *identity.Session, tableNumber string, balanceToApply decimal.Decimal) (*CreatedOrder, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	cart, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.InvalidArgument("cart empty")
	}
	table := strings.TrimSpace(tableNumber)
	if table == "" {
		return nil, domain.InvalidArgument("table required")
	}

	userID := session.UserID()
	originalTotal := cart.Total()
	available, err := s.ledger.AvailableBalance(ctx, userID, cart.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	used := ClampRedemption(balanceToApply, originalTotal, available)

	order := &domain.PendingOrder{
		ID:             s.newID(),
		RestaurantID:   cart.RestaurantID,
		RestaurantName: cart.RestaurantName,
		Items:          cart.Snapshot(),
		OriginalTotal:  originalTotal,
		BalanceUsed:    used,
		FinalTotal:     originalTotal.Sub(used),
		TableNumber:    table,
		UserID:         userID,
		Status:         domain.OrderStatusPending,
	}
	if err := s.orders.CreatePendingOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create pending order: %w", err)
	}

	if err := s.carts.Clear(ctx, session); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to clear cart after order")
	}

	s.publish(ctx, domain.OrderEvent{
		Type:          domain.EventOrderCreated,
		OrderID:       order.ID,
		RestaurantID:  order.RestaurantID,
		UserID:        order.UserID,
		Status:        domain.OrderStatusPending,
		Source:        domain.OrderSourceQR,
		OriginalTotal: order.OriginalTotal,
		FinalTotal:    order.FinalTotal,
		ItemCount:     itemCount(order.Items),
		Timestamp:     s.now(),
	})

	token, err := NewConfirmationToken(order).Encode()
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("restaurant_id", order.RestaurantID).
		Str("table", order.TableNumber).
		Str("final_total", order.FinalTotal.String()).
		Msg("pending order created")

	return &CreatedOrder{
		Order:     order,
		Token:     token,
		QRCodeURL: s.baseURL + "/api/pending-orders/" + order.ID + "/qrcode",
	}, nil
}

// GetPendingOrder is visible to the customer who placed it and to staff of its restaurant.
func (s *OrderService) GetPendingOrder(ctx context.Context, session *identity.Session, id string) (*domain.PendingOrder, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	order, err := s.lookupPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != session.UserID() && !identity.CanConfirmOrders(session.Profile, order.RestaurantID) {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) lookupPending(ctx context.Context, id string) (*domain.PendingOrder, error) {
	order, err := s.orders.GetPendingOrder(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	return order, err
}

func (s *OrderService) QRCode(ctx context.Context, session *identity.Session, id string) ([]byte, error) {
	order, err := s.GetPendingOrder(ctx, session, id)
	if err != nil {
		return nil, err
	}
	token, err := NewConfirmationToken(order).Encode()
	if err != nil {
		return nil, err
	}
	return s.qr.Generate(token)
}

// ConfirmOrder finalizes the pending order named by token. Exactly one of any
// number of concurrent confirmations succeeds; the rest get ErrAlreadyConfirmed.
func (s *OrderService) ConfirmOrder(ctx context.Context, session *identity.Session, token string) (*domain.Order, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !identity.IsStaff(session.Profile) {
		return nil, domain.ErrPermissionDenied
	}

	id, err := DecodeConfirmationToken(token)
	if err != nil {
		return nil, err
	}
	pending, err := s.lookupPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.CanConfirmOrders(session.Profile, pending.RestaurantID) {
		return nil, domain.ErrOrderNotFound
	}

	order, job, err := s.orders.ConfirmPendingOrder(ctx, id, session.UserID(), s.now())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.ErrOrderNotFound
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("confirm order %s: %w", id, err)
	}

	// The confirmation is committed; what follows must run even if the caller goes away.
	post := context.WithoutCancel(ctx)
	if job != nil {
		_ = s.ledger.ApplyJobWithRetry(post, job)
	}

	s.publish(post, confirmedEvent(order, s.now()))

	s.logger.Info().
		Str("order_id", order.ID).
		Str("restaurant_id", order.RestaurantID).
		Str("confirmed_by", order.ConfirmedBy).
		Msg("order confirmed")
	return order, nil
}

// CreateManualOrder records a waiter-entered order as already confirmed. It has
// no pending stage and earns or spends no balance.
func (s *OrderService) CreateManualOrder(ctx context.Context, session *identity.Session, req ManualOrderRequest) (*domain.Order, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !identity.IsStaff(session.Profile) {
		return nil, domain.ErrPermissionDenied
	}

	restaurantID := session.Profile.RestaurantID
	if identity.IsAdmin(session.Profile) && req.RestaurantID != "" {
		restaurantID = req.RestaurantID
	}
	if restaurantID == "" {
		return nil, domain.InvalidArgument("restaurant required")
	}
	if !identity.CanConfirmOrders(session.Profile, restaurantID) {
		return nil, domain.ErrPermissionDenied
	}

	table := strings.TrimSpace(req.TableNumber)
	if table == "" {
		return nil, domain.InvalidArgument("table required")
	}
	if len(req.Items) == 0 {
		return nil, domain.InvalidArgument("items required")
	}

	rest, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	quantities := map[string]int{}
	var itemIDs []string
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, domain.InvalidArgument("quantity must be positive")
		}
		if _, seen := quantities[line.ItemID]; !seen {
			itemIDs = append(itemIDs, line.ItemID)
		}
		quantities[line.ItemID] += line.Quantity
	}

	items := make([]domain.OrderItem, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		item, err := s.menu.GetMenuItem(ctx, restaurantID, itemID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.InvalidArgument("unknown menu item " + itemID)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.EffectivePrice(),
			Quantity:  quantities[itemID],
		})
	}

	now := s.now()
	total := domain.ItemsTotal(items)
	order := &domain.Order{
		ID:                s.newID(),
		RestaurantID:      rest.ID,
		RestaurantName:    rest.Name,
		Items:             items,
		OriginalTotal:     total,
		BalanceUsed:       decimal.Zero,
		FinalTotal:        total,
		TableNumber:       table,
		Status:            domain.OrderStatusConfirmed,
		Source:            domain.OrderSourceManual,
		CreatedAt:         now,
		WaiterConfirmedAt: now,
		ConfirmedBy:       session.UserID(),
	}
	if err := s.orders.CreateManualOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create manual order: %w", err)
	}

	s.publish(context.WithoutCancel(ctx), confirmedEvent(order, now))
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, session *identity.Session, restaurantID string, since time.Time) ([]domain.Order, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !identity.CanConfirmOrders(session.Profile, restaurantID) {
		return nil, domain.ErrPermissionDenied
	}
	return s.orders.ListOrders(ctx, restaurantID, since)
}

// WatchOrder subscribes to status changes of a pending order the caller may see.
func (s *OrderService) WatchOrder(ctx context.Context, session *identity.Session, id string) (<-chan domain.OrderEvent, func(), error) {
	if _, err := s.GetPendingOrder(ctx, session, id); err != nil {
		return nil, nil, err
	}
	return s.bus.Subscribe(ctx, id)
}

func (s *OrderService) publish(ctx context.Context, event domain.OrderEvent) {
	for _, publisher := range []EventPublisher{s.bus, s.events} {
		if publisher == nil {
			continue
		}
		if err := publisher.PublishOrderEvent(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("order_id", event.OrderID).Str("type", string(event.Type)).Msg("failed to publish order event")
		}
	}
}

func confirmedEvent(order *domain.Order, at time.Time) domain.OrderEvent {
	return domain.OrderEvent{
		Type:          domain.EventOrderConfirmed,
		OrderID:       order.ID,
		RestaurantID:  order.RestaurantID,
		UserID:        order.UserID,
		Status:        domain.OrderStatusConfirmed,
		Source:        order.Source,
		OriginalTotal: order.OriginalTotal,
		FinalTotal:    order.FinalTotal,
		ItemCount:     itemCount(order.Items),
		Timestamp:     at,
	}
}

func itemCount(items []domain.OrderItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
