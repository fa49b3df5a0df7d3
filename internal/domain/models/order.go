package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one participant's buy or sell interest in a single unit of an
// item. Identity is immutable; only Status changes over its lifetime.
// Price is nil for market orders, including market orders left resting.
type Order struct {
	ID        uuid.UUID
	Seq       uint64
	ItemID    uuid.UUID
	UserID    uuid.UUID
	Side      Side
	Kind      Kind
	Price     *decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
}

type Side uint8

const (
	SideUnspecified Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "Buy"
	case SideSell:
		return "Sell"
	default:
		return "Unspecified"
	}
}

// Opposite returns the counter side used when searching for match candidates.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnspecified
	}
}

type Kind uint8

const (
	KindUnspecified Kind = iota
	KindLimit
	KindMarket
)

func (k Kind) String() string {
	switch k {
	case KindLimit:
		return "Limit"
	case KindMarket:
		return "Market"
	default:
		return "Unspecified"
	}
}

type OrderStatus uint8

const (
	OrderStatusUnspecified OrderStatus = iota
	OrderStatusCreated
	OrderStatusResting
	OrderStatusMatched
	OrderStatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusCreated:
		return "Created"
	case OrderStatusResting:
		return "Resting"
	case OrderStatusMatched:
		return "Matched"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return "Unspecified"
	}
}
