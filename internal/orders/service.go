package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopworks/go-commerce-backend/internal/aws"
	"github.com/shopworks/go-commerce-backend/internal/catalog"
	"github.com/shopworks/go-commerce-backend/internal/inventory"
	"go.uber.org/zap"
)

// Role values attached to authenticated requests.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	// ErrOrderNotFound indicates the order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNoItems indicates a checkout with an empty item list.
	ErrNoItems = errors.New("order must contain at least one item")
	// ErrForbidden indicates the requester is neither the owner nor an admin.
	ErrForbidden = errors.New("not allowed to access this order")
	// ErrInvalidTransition indicates an illegal status change, including
	// cancellation after shipping or delivery.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StockLedger is the slice of the inventory ledger checkout depends on.
type StockLedger interface {
	CommitDecrement(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
}

// ProductGetter looks up catalog products for the order snapshot.
type ProductGetter interface {
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

// EventPublisher emits order lifecycle events. May be nil when the async
// pipeline is not configured.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev aws.OrderEvent) error
}

// Service drives checkout, payment marking, status transitions and
// cancellation against the order store and the inventory ledger.
type Service struct {
	store     *Store
	ledger    StockLedger
	products  ProductGetter
	publisher EventPublisher
	logger    *zap.Logger
	nowFunc   func() time.Time
	newID     func() string
}

// NewService wires the order service. publisher may be nil.
func NewService(store *Store, ledger StockLedger, products ProductGetter, publisher EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		ledger:    ledger,
		products:  products,
		publisher: publisher,
		logger:    logger,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// Create places an order: it snapshots each submitted line from the catalog,
// decrements stock per line, and persists the order with status Processing.
// Decrements are all-or-nothing: if any line fails, every previously applied
// decrement is released and the pre-checkout state is restored.
func (s *Service) Create(ctx context.Context, userID string, items []NewOrderItem, shipping ShippingAddress, paymentMethod string, pricing Pricing) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	snapshots := make([]OrderItem, 0, len(items))
	committed := make([]OrderItem, 0, len(items))
	for _, line := range items {
		if line.Quantity < 1 {
			s.rollback(ctx, committed)
			return nil, fmt.Errorf("product %s: quantity must be at least 1", line.ProductID)
		}
		p, err := s.products.GetProduct(ctx, line.ProductID)
		if err != nil {
			s.rollback(ctx, committed)
			return nil, err
		}
		if p == nil {
			s.rollback(ctx, committed)
			return nil, fmt.Errorf("product %s: %w", line.ProductID, inventory.ErrProductNotFound)
		}
		if err := s.ledger.CommitDecrement(ctx, line.ProductID, line.Quantity); err != nil {
			s.rollback(ctx, committed)
			if errors.Is(err, inventory.ErrInsufficientStock) {
				return nil, fmt.Errorf("product %s: %w", line.ProductID, err)
			}
			return nil, err
		}
		snap := OrderItem{
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Price:     p.Price,
			Image:     p.Image,
		}
		snapshots = append(snapshots, snap)
		committed = append(committed, snap)
	}

	now := s.nowFunc()
	order := Order{
		OrderID:         s.newID(),
		UserID:          userID,
		Items:           snapshots,
		ShippingAddress: shipping,
		PaymentMethod:   paymentMethod,
		Pricing:         pricing,
		Status:          StatusProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, order); err != nil {
		s.rollback(ctx, committed)
		return nil, err
	}

	s.publish(ctx, aws.EventOrderCreated, &order)
	return &order, nil
}

// rollback releases every decrement applied so far, restoring the
// pre-checkout stock.
func (s *Service) rollback(ctx context.Context, committed []OrderItem) {
	for _, it := range committed {
		if err := s.ledger.Release(ctx, it.ProductID, it.Quantity); err != nil {
			s.logger.Error("failed to release stock during checkout rollback",
				zap.String("product_id", it.ProductID),
				zap.Int("quantity", it.Quantity),
				zap.Error(err))
		}
	}
}

// Get returns an order, restricted to its owner or an admin.
func (s *Service) Get(ctx context.Context, orderID, requesterID, requesterRole string) (*Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.UserID != requesterID && requesterRole != RoleAdmin {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListMine returns the requester's orders.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Order, error) {
	return s.store.ListByUser(ctx, userID)
}

// List returns a page of all orders for the admin view.
func (s *Service) List(ctx context.Context, startKey string, limit int32) (*OrderPage, error) {
	return s.store.List(ctx, startKey, limit)
}

// MarkPaid records a payment receipt. Payment is orthogonal to fulfillment
// status, so no transition gate applies.
func (s *Service) MarkPaid(ctx context.Context, orderID string, receipt PaymentResult) (*Order, error) {
	if err := s.store.MarkPaid(ctx, orderID, receipt); err != nil {
		return nil, err
	}
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// UpdateStatus assigns a new fulfillment status. Assignment is open within
// the enum except that terminal orders are frozen and Cancelled must go
// through Cancel. Reaching Delivered also stamps the delivery fields.
func (s *Service) UpdateStatus(ctx context.Context, orderID, rawStatus, trackingNumber string) (*Order, error) {
	next, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !CanTransition(o.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	var deliveredAt *time.Time
	if next == StatusDelivered {
		now := s.nowFunc().UTC()
		deliveredAt = &now
	}
	if err := s.store.SetStatus(ctx, orderID, o.Status, next, trackingNumber, deliveredAt); err != nil {
		if errors.Is(err, ErrStatusMismatch) {
			return nil, fmt.Errorf("%w: order status changed concurrently", ErrInvalidTransition)
		}
		return nil, err
	}
	return s.store.Get(ctx, orderID)
}

// Cancel moves the order to Cancelled and restores every item's stock.
// Only the owner or an admin may cancel, and never after the order has
// shipped or been delivered. The conditional status write makes concurrent
// cancels single-shot, so stock is released exactly once.
func (s *Service) Cancel(ctx context.Context, orderID, requesterID, requesterRole string) (*Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.UserID != requesterID && requesterRole != RoleAdmin {
		return nil, ErrForbidden
	}
	if !o.Status.Cancellable() {
		return nil, fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidTransition, o.Status)
	}

	if err := s.store.SetStatus(ctx, orderID, o.Status, StatusCancelled, "", nil); err != nil {
		if errors.Is(err, ErrStatusMismatch) {
			return nil, fmt.Errorf("%w: order status changed concurrently", ErrInvalidTransition)
		}
		return nil, err
	}

	for _, it := range o.Items {
		if err := s.ledger.Release(ctx, it.ProductID, it.Quantity); err != nil {
			s.logger.Error("failed to release stock on cancellation",
				zap.String("order_id", orderID),
				zap.String("product_id", it.ProductID),
				zap.Int("quantity", it.Quantity),
				zap.Error(err))
		}
	}

	s.publish(ctx, aws.EventOrderCancelled, o)
	return s.store.Get(ctx, orderID)
}

// publish emits an order event best-effort; a failed publish never fails the
// request.
func (s *Service) publish(ctx context.Context, eventType string, o *Order) {
	if s.publisher == nil {
		return
	}
	ev := aws.OrderEvent{
		Type:       eventType,
		OrderID:    o.OrderID,
		UserID:     o.UserID,
		OccurredAt: s.nowFunc().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, ev); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", o.OrderID),
			zap.Error(err))
	}
}
