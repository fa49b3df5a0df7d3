package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is the append-only record of one executed match. It is never
// updated or reversed; BuyerID and SellerID always differ.
type Trade struct {
	ID         uuid.UUID
	BuyerID    uuid.UUID
	SellerID   uuid.UUID
	ItemID     uuid.UUID
	Price      decimal.Decimal
	ExecutedAt time.Time
}
