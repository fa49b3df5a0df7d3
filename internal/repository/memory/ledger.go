package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"itemMarket/internal/domain/models"
	repositoryErrors "itemMarket/internal/errors/repository"
)

// Ledger is the in-memory system of record for orders and trades. It is the
// default backing when no database is configured.
type Ledger struct {
	orders map[uuid.UUID]models.Order
	trades []models.Trade
	mu     sync.RWMutex
}

func NewLedger() *Ledger {
	return &Ledger{
		orders: make(map[uuid.UUID]models.Order),
	}
}

func (ledger *Ledger) RecordSubmission(ctx context.Context, taker models.Order, maker *models.Order, trade *models.Trade) error {
	const op = "repository.Ledger.RecordSubmission"

	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, exists := ledger.orders[taker.ID]; exists {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderAlreadyExists)
	}

	ledger.orders[taker.ID] = taker
	if maker != nil {
		ledger.orders[maker.ID] = *maker
	}
	if trade != nil {
		ledger.trades = append(ledger.trades, *trade)
	}

	return nil
}

func (ledger *Ledger) RecordCancel(ctx context.Context, order models.Order) error {
	const op = "repository.Ledger.RecordCancel"

	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, exists := ledger.orders[order.ID]; !exists {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderNotFound)
	}

	ledger.orders[order.ID] = order

	return nil
}

func (ledger *Ledger) ListTrades(ctx context.Context, itemID uuid.UUID) ([]models.Trade, error) {
	const op = "repository.Ledger.ListTrades"

	ledger.mu.RLock()
	defer ledger.mu.RUnlock()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	out := make([]models.Trade, 0, len(ledger.trades))
	for _, trade := range ledger.trades {
		if itemID != uuid.Nil && trade.ItemID != itemID {
			continue
		}
		out = append(out, trade)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ExecutedAt.Before(out[j].ExecutedAt)
	})

	return out, nil
}
