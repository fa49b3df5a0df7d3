package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"itemMarket/internal/domain/models"
	"itemMarket/internal/engine"
	serviceErrors "itemMarket/internal/errors/service"
	zapLogger "itemMarket/internal/logger/zap"
	"itemMarket/internal/metrics"
)

// Service ties the matching engine to the ledger, the catalog and the
// surrounding infrastructure. The engine alone decides matching; the service
// validates input, records outcomes and emits events.
type Service struct {
	engine  *engine.Engine
	ledger  Ledger
	catalog Catalog
	events  EventSink
	metrics *metrics.ExchangeMetrics

	submitRateLimiter RateLimiter
	cancelRateLimiter RateLimiter
	submitTimeout     time.Duration
}

type Ledger interface {
	RecordSubmission(ctx context.Context, taker models.Order, maker *models.Order, trade *models.Trade) error
	RecordCancel(ctx context.Context, order models.Order) error
	ListTrades(ctx context.Context, itemID uuid.UUID) ([]models.Trade, error)
}

type Catalog interface {
	ItemExists(ctx context.Context, id uuid.UUID) error
	UserExists(ctx context.Context, id uuid.UUID) error
}

type RateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (bool, error)
}

type EventSink interface {
	Send(ctx context.Context, key string, value []byte) error
}

func NewService(
	matchingEngine *engine.Engine,
	ledger Ledger,
	catalog Catalog,
	events EventSink,
	exchangeMetrics *metrics.ExchangeMetrics,
	submitLimiter, cancelLimiter RateLimiter,
	submitTimeout time.Duration,
) *Service {
	return &Service{
		engine:            matchingEngine,
		ledger:            ledger,
		catalog:           catalog,
		events:            events,
		metrics:           exchangeMetrics,
		submitRateLimiter: submitLimiter,
		cancelRateLimiter: cancelLimiter,
		submitTimeout:     submitTimeout,
	}
}

// OrderResult is what a submission produced: the order with its final status
// and, when the order filled immediately, the trade.
type OrderResult struct {
	Order models.Order
	Trade *models.Trade
}

func (s *Service) SubmitOrder(
	ctx context.Context,
	itemID uuid.UUID,
	userID uuid.UUID,
	side models.Side,
	kind models.Kind,
	price *decimal.Decimal,
) (OrderResult, error) {
	const op = "Service.SubmitOrder"

	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	if err := s.checkRateLimit(ctx, s.submitRateLimiter, userID); err != nil {
		return OrderResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if price != nil && price.Sign() <= 0 {
		return OrderResult{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidOrder)
	}

	if err := s.catalog.ItemExists(ctx, itemID); err != nil {
		return OrderResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.catalog.UserExists(ctx, userID); err != nil {
		return OrderResult{}, fmt.Errorf("%s: %w", op, err)
	}

	order := models.Order{
		ID:        uuid.New(),
		ItemID:    itemID,
		UserID:    userID,
		Side:      side,
		Kind:      kind,
		Price:     price,
		Status:    models.OrderStatusCreated,
		CreatedAt: time.Now().UTC(),
	}

	started := time.Now()
	result, err := s.engine.Submit(order, func(outcome engine.Result) error {
		return s.ledger.RecordSubmission(ctx, outcome.Taker, outcome.Maker, outcome.Trade)
	})
	if err != nil {
		return OrderResult{}, fmt.Errorf("%s: %w", op, mapEngineError(err))
	}
	s.metrics.MatchDuration.Observe(time.Since(started).Seconds())

	outcome := "resting"
	if result.Filled() {
		outcome = "matched"
		s.metrics.TradesExecuted.Inc()
	}
	s.metrics.OrdersSubmitted.WithLabelValues(side.String(), kind.String(), outcome).Inc()

	s.publishSubmission(ctx, result)

	return OrderResult{Order: result.Taker, Trade: result.Trade}, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (models.Order, error) {
	const op = "Service.CancelOrder"

	if err := s.checkRateLimit(ctx, s.cancelRateLimiter, userID); err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	cancelled, err := s.engine.Cancel(orderID, userID, func(order models.Order) error {
		return s.ledger.RecordCancel(ctx, order)
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, mapEngineError(err))
	}

	s.metrics.OrdersCancelled.Inc()
	s.publishEvent(ctx, "order_cancelled", cancelled.ID.String(), orderEvent(cancelled))

	return cancelled, nil
}

// ListOrders returns the resting orders of one item book; userID narrows the
// listing to one submitter, uuid.Nil returns everyone's.
func (s *Service) ListOrders(ctx context.Context, itemID, userID uuid.UUID) ([]models.Order, error) {
	const op = "Service.ListOrders"

	if err := s.catalog.ItemExists(ctx, itemID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.engine.ListOrders(itemID, userID), nil
}

func (s *Service) ListTrades(ctx context.Context, itemID uuid.UUID) ([]models.Trade, error) {
	const op = "Service.ListTrades"

	if itemID != uuid.Nil {
		if err := s.catalog.ItemExists(ctx, itemID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	trades, err := s.ledger.ListTrades(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return trades, nil
}

func (s *Service) checkRateLimit(ctx context.Context, limiter RateLimiter, userID uuid.UUID) error {
	allowed, err := limiter.Allow(ctx, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return serviceErrors.ErrRateLimitExceeded
	}

	return nil
}

func mapEngineError(err error) error {
	switch {
	case errors.Is(err, engine.ErrPriceRequired),
		errors.Is(err, engine.ErrUnexpectedPrice),
		errors.Is(err, engine.ErrUnknownSide),
		errors.Is(err, engine.ErrUnknownKind),
		errors.Is(err, engine.ErrAlreadyInBook):
		return serviceErrors.ErrInvalidOrder
	case errors.Is(err, engine.ErrOrderNotFound):
		return serviceErrors.ErrOrderNotFound
	default:
		return err
	}
}

func (s *Service) publishSubmission(ctx context.Context, result engine.Result) {
	s.publishEvent(ctx, "order_submitted", result.Taker.ID.String(), orderEvent(result.Taker))

	if result.Trade != nil {
		s.publishEvent(ctx, "trade_executed", result.Trade.ID.String(), tradeEvent(*result.Trade))
	}
}

// publishEvent is best effort: a broker outage must not fail trading.
func (s *Service) publishEvent(ctx context.Context, eventType, key string, payload any) {
	if s.events == nil {
		return
	}

	envelope := struct {
		Type    string `json:"type"`
		Payload any    `json:"payload"`
	}{
		Type:    eventType,
		Payload: payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		zapLogger.Error(ctx, "failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}

	if err := s.events.Send(ctx, key, data); err != nil {
		zapLogger.Warn(ctx, "failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

type orderEventPayload struct {
	ID        string  `json:"id"`
	Seq       uint64  `json:"seq"`
	ItemID    string  `json:"item_id"`
	UserID    string  `json:"user_id"`
	Side      string  `json:"side"`
	Kind      string  `json:"kind"`
	Price     *string `json:"price,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

func orderEvent(order models.Order) orderEventPayload {
	var price *string
	if order.Price != nil {
		formatted := order.Price.String()
		price = &formatted
	}

	return orderEventPayload{
		ID:        order.ID.String(),
		Seq:       order.Seq,
		ItemID:    order.ItemID.String(),
		UserID:    order.UserID.String(),
		Side:      order.Side.String(),
		Kind:      order.Kind.String(),
		Price:     price,
		Status:    order.Status.String(),
		CreatedAt: order.CreatedAt.Format(time.RFC3339Nano),
	}
}

type tradeEventPayload struct {
	ID         string `json:"id"`
	BuyerID    string `json:"buyer_id"`
	SellerID   string `json:"seller_id"`
	ItemID     string `json:"item_id"`
	Price      string `json:"price"`
	ExecutedAt string `json:"executed_at"`
}

func tradeEvent(trade models.Trade) tradeEventPayload {
	return tradeEventPayload{
		ID:         trade.ID.String(),
		BuyerID:    trade.BuyerID.String(),
		SellerID:   trade.SellerID.String(),
		ItemID:     trade.ItemID.String(),
		Price:      trade.Price.String(),
		ExecutedAt: trade.ExecutedAt.Format(time.RFC3339Nano),
	}
}
