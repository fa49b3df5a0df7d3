package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"itemMarket/internal/domain/models"
)

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type itemResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func itemToResponse(item models.Item) itemResponse {
	return itemResponse{
		ID:          item.ID.String(),
		Name:        item.Name,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
	}
}

type createUserRequest struct {
	Name string `json:"name"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func userToResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}

type submitOrderRequest struct {
	ItemID string  `json:"item_id"`
	UserID string  `json:"user_id"`
	Side   string  `json:"side"`
	Kind   string  `json:"kind"`
	Price  *string `json:"price,omitempty"`
}

type orderResponse struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	Side      string    `json:"side"`
	Kind      string    `json:"kind"`
	Price     *string   `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func orderToResponse(order models.Order) orderResponse {
	var price *string
	if order.Price != nil {
		formatted := order.Price.String()
		price = &formatted
	}

	return orderResponse{
		ID:        order.ID.String(),
		Seq:       order.Seq,
		ItemID:    order.ItemID.String(),
		UserID:    order.UserID.String(),
		Side:      strings.ToLower(order.Side.String()),
		Kind:      strings.ToLower(order.Kind.String()),
		Price:     price,
		Status:    strings.ToLower(order.Status.String()),
		CreatedAt: order.CreatedAt,
	}
}

type submitOrderResponse struct {
	Order orderResponse  `json:"order"`
	Trade *tradeResponse `json:"trade,omitempty"`
}

type tradeResponse struct {
	ID         string    `json:"id"`
	BuyerID    string    `json:"buyer_id"`
	SellerID   string    `json:"seller_id"`
	ItemID     string    `json:"item_id"`
	Price      string    `json:"price"`
	ExecutedAt time.Time `json:"executed_at"`
}

func tradeToResponse(trade models.Trade) tradeResponse {
	return tradeResponse{
		ID:         trade.ID.String(),
		BuyerID:    trade.BuyerID.String(),
		SellerID:   trade.SellerID.String(),
		ItemID:     trade.ItemID.String(),
		Price:      trade.Price.String(),
		ExecutedAt: trade.ExecutedAt,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func parseSide(value string) (models.Side, error) {
	switch strings.ToLower(value) {
	case "buy":
		return models.SideBuy, nil
	case "sell":
		return models.SideSell, nil
	default:
		return models.SideUnspecified, fmt.Errorf("unknown side %q", value)
	}
}

func parseKind(value string) (models.Kind, error) {
	switch strings.ToLower(value) {
	case "limit":
		return models.KindLimit, nil
	case "market":
		return models.KindMarket, nil
	default:
		return models.KindUnspecified, fmt.Errorf("unknown kind %q", value)
	}
}

func parsePrice(value *string) (*decimal.Decimal, error) {
	if value == nil || *value == "" {
		return nil, nil
	}

	price, err := decimal.NewFromString(*value)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", *value)
	}

	return &price, nil
}

func parseUUID(name, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}

func parseOptionalUUID(name, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}

	return parseUUID(name, value)
}
