package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"itemMarket/internal/domain/models"
)

type Order struct {
	ID        uuid.UUID `db:"id"`
	Seq       int64     `db:"seq"`
	ItemID    uuid.UUID `db:"item_id"`
	UserID    uuid.UUID `db:"user_id"`
	Side      int16     `db:"side"`
	Kind      int16     `db:"kind"`
	Price     *string   `db:"price"`
	Status    int16     `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (o Order) ToDomain() (models.Order, error) {
	var price *decimal.Decimal
	if o.Price != nil {
		parsed, err := decimal.NewFromString(*o.Price)
		if err != nil {
			return models.Order{}, err
		}
		price = &parsed
	}

	return models.Order{
		ID:        o.ID,
		Seq:       uint64(o.Seq),
		ItemID:    o.ItemID,
		UserID:    o.UserID,
		Side:      models.Side(o.Side),
		Kind:      models.Kind(o.Kind),
		Price:     price,
		Status:    models.OrderStatus(o.Status),
		CreatedAt: o.CreatedAt,
	}, nil
}

func OrderFromDomain(order models.Order) Order {
	var price *string
	if order.Price != nil {
		formatted := order.Price.String()
		price = &formatted
	}

	return Order{
		ID:        order.ID,
		Seq:       int64(order.Seq),
		ItemID:    order.ItemID,
		UserID:    order.UserID,
		Side:      int16(order.Side),
		Kind:      int16(order.Kind),
		Price:     price,
		Status:    int16(order.Status),
		CreatedAt: order.CreatedAt,
	}
}
