package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"itemMarket/internal/domain/models"
)

type Trade struct {
	ID         uuid.UUID `db:"id"`
	BuyerID    uuid.UUID `db:"buyer_id"`
	SellerID   uuid.UUID `db:"seller_id"`
	ItemID     uuid.UUID `db:"item_id"`
	Price      string    `db:"price"`
	ExecutedAt time.Time `db:"executed_at"`
}

func (t Trade) ToDomain() (models.Trade, error) {
	price, err := decimal.NewFromString(t.Price)
	if err != nil {
		return models.Trade{}, err
	}

	return models.Trade{
		ID:         t.ID,
		BuyerID:    t.BuyerID,
		SellerID:   t.SellerID,
		ItemID:     t.ItemID,
		Price:      price,
		ExecutedAt: t.ExecutedAt,
	}, nil
}

func TradeFromDomain(trade models.Trade) Trade {
	return Trade{
		ID:         trade.ID,
		BuyerID:    trade.BuyerID,
		SellerID:   trade.SellerID,
		ItemID:     trade.ItemID,
		Price:      trade.Price.String(),
		ExecutedAt: trade.ExecutedAt,
	}
}
