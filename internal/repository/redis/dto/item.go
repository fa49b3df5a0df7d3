package dto

import (
	"time"

	"github.com/google/uuid"

	"itemMarket/internal/domain/models"
)

type ItemRedisView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (v ItemRedisView) ToDomain() (models.Item, error) {
	id, err := uuid.Parse(v.ID)
	if err != nil {
		return models.Item{}, err
	}

	return models.Item{
		ID:          id,
		Name:        v.Name,
		Description: v.Description,
		CreatedAt:   v.CreatedAt,
	}, nil
}

func FromDomain(item models.Item) ItemRedisView {
	return ItemRedisView{
		ID:          item.ID.String(),
		Name:        item.Name,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
	}
}
