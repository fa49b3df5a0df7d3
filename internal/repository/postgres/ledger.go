package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"itemMarket/internal/domain/models"
	repositoryErrors "itemMarket/internal/errors/repository"
	"itemMarket/internal/repository/postgres/dto"
)

const duplicateKeyCode = "23505"

// Ledger persists matching outcomes to postgres. A submission that produced
// a trade is written in one transaction, so the taker insert, the maker
// status update and the trade row land together or not at all.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{
		pool: pool,
	}
}

func (ledger *Ledger) RecordSubmission(ctx context.Context, taker models.Order, maker *models.Order, trade *models.Trade) error {
	const op = "repository.Ledger.RecordSubmission"

	if trade == nil {
		if err := ledger.insertOrder(ctx, ledger.pool, taker); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	tx, err := ledger.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := ledger.insertOrder(ctx, tx, taker); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ledger.updateOrderStatus(ctx, tx, maker.ID, maker.Status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tradeDTO := dto.TradeFromDomain(*trade)
	_, err = tx.Exec(ctx,
		`INSERT INTO trades (id, buyer_id, seller_id, item_id, price, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tradeDTO.ID,
		tradeDTO.BuyerID,
		tradeDTO.SellerID,
		tradeDTO.ItemID,
		tradeDTO.Price,
		tradeDTO.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: insert trade: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (ledger *Ledger) RecordCancel(ctx context.Context, order models.Order) error {
	const op = "repository.Ledger.RecordCancel"

	if err := ledger.updateOrderStatus(ctx, ledger.pool, order.ID, order.Status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (ledger *Ledger) ListTrades(ctx context.Context, itemID uuid.UUID) ([]models.Trade, error) {
	const op = "repository.Ledger.ListTrades"

	query := `SELECT id, buyer_id, seller_id, item_id, price, executed_at
	          FROM trades
	          ORDER BY executed_at`
	args := []any{}

	if itemID != uuid.Nil {
		query = `SELECT id, buyer_id, seller_id, item_id, price, executed_at
		         FROM trades
		         WHERE item_id = $1
		         ORDER BY executed_at`
		args = append(args, itemID)
	}

	rows, err := ledger.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	tradeDTOs, err := pgx.CollectRows(rows, pgx.RowToStructByName[dto.Trade])
	if err != nil {
		return nil, fmt.Errorf("%s: collect: %w", op, err)
	}

	out := make([]models.Trade, 0, len(tradeDTOs))
	for _, tradeDTO := range tradeDTOs {
		trade, err := tradeDTO.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: decode price: %w", op, err)
		}
		out = append(out, trade)
	}

	return out, nil
}

// ListOrders reloads orders from the ledger, matched and cancelled included.
// The engine answers queries about the live book; this is the audit view.
func (ledger *Ledger) ListOrders(ctx context.Context, itemID uuid.UUID) ([]models.Order, error) {
	const op = "repository.Ledger.ListOrders"

	rows, err := ledger.pool.Query(ctx,
		`SELECT id, seq, item_id, user_id, side, kind, price, status, created_at
		 FROM orders
		 WHERE item_id = $1
		 ORDER BY seq`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	orderDTOs, err := pgx.CollectRows(rows, pgx.RowToStructByName[dto.Order])
	if err != nil {
		return nil, fmt.Errorf("%s: collect: %w", op, err)
	}

	out := make([]models.Order, 0, len(orderDTOs))
	for _, orderDTO := range orderDTOs {
		order, err := orderDTO.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: decode price: %w", op, err)
		}
		out = append(out, order)
	}

	return out, nil
}

type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (ledger *Ledger) insertOrder(ctx context.Context, exec executor, order models.Order) error {
	orderDTO := dto.OrderFromDomain(order)

	_, err := exec.Exec(ctx,
		`INSERT INTO orders (id, seq, item_id, user_id, side, kind, price, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		orderDTO.ID,
		orderDTO.Seq,
		orderDTO.ItemID,
		orderDTO.UserID,
		orderDTO.Side,
		orderDTO.Kind,
		orderDTO.Price,
		orderDTO.Status,
		orderDTO.CreatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return repositoryErrors.ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (ledger *Ledger) updateOrderStatus(ctx context.Context, exec executor, id uuid.UUID, status models.OrderStatus) error {
	tag, err := exec.Exec(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`,
		int16(status),
		id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repositoryErrors.ErrOrderNotFound
	}

	return nil
}

func isDuplicateKey(err error) bool {
	var postgresErr *pgconn.PgError

	if errors.As(err, &postgresErr) {
		return postgresErr.Code == duplicateKeyCode
	}

	return false
}
