package service

import (
	"context"

	"github.com/Egorka7485/tgkadsf/internal/models"
	"github.com/Egorka7485/tgkadsf/internal/repo"
)

type OrderService struct {
	Repo *repo.GormRepo
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.GetOrders(ctx, userID)
}
