package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Egorka7485/tgkadsf/internal/models"
)

// CreateOrder inserts the order and its lines in one transaction. Nothing is
// persisted if any line fails to insert.
func (r *GormRepo) CreateOrder(ctx context.Context, userID uint, total int64, items []models.OrderItem) (*models.Order, error) {
	var order *models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := createOrder(tx, userID, total, items)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Checkout turns the user's cart into a completed order. Reading the cart,
// writing the order with its price snapshot and clearing the cart share one
// transaction.
func (r *GormRepo) Checkout(ctx context.Context, userID uint) (*models.Order, error) {
	var order *models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := cartLines(tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		items := make([]models.OrderItem, 0, len(lines))
		var total int64
		for _, l := range lines {
			qty := l.Quantity
			if qty == 0 {
				qty = 1
			}
			it := models.OrderItem{ChannelID: l.ChannelID, Price: l.Channel.Price, Quantity: qty}
			total += it.LineTotal()
			items = append(items, it)
		}

		o, err := createOrder(tx, userID, total, items)
		if err != nil {
			return err
		}

		if err := clearCart(tx, userID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func createOrder(tx *gorm.DB, userID uint, total int64, items []models.OrderItem) (*models.Order, error) {
	order := models.Order{
		UserID:      userID,
		TotalAmount: total,
		Status:      models.OrderStatusCompleted,
	}
	if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
		return nil, err
	}

	if len(items) > 0 {
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = order.ID
			if items[i].Quantity == 0 {
				items[i].Quantity = 1
			}
		}
		if err := tx.Create(&items).Error; err != nil {
			return nil, err
		}
	}

	order.Items = items
	return &order, nil
}

func (r *GormRepo) GetOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
