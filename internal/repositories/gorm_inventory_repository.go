package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"watchshop/internal/models"
)

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
// Both directions are single UPDATE statements, never read-modify-write.
type GORMInventoryRepository struct {
	db *gorm.DB
}

func stockTable(ref models.ProductRef) (interface{}, error) {
	switch ref.Kind {
	case models.KindWatch:
		return &models.Watch{}, nil
	case models.KindComponent:
		return &models.Component{}, nil
	}
	return nil, fmt.Errorf("%s has no stock counter", ref.Kind)
}

// DecrementStock runs UPDATE ... SET stock = stock - n WHERE id = ? AND stock >= n.
func (r *GORMInventoryRepository) DecrementStock(ref models.ProductRef, quantity int) error {
	table, err := stockTable(ref)
	if err != nil {
		return err
	}
	res := r.db.Model(table).
		Where("id = ? AND stock >= ?", ref.ID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock of %s %s: %w", ref.Kind, ref.ID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.Model(table).Where("id = ?", ref.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s %s: %w", ref.Kind, ref.ID, err)
	}
	if count == 0 {
		return fmt.Errorf("%s with ID %s: %w", ref.Kind, ref.ID, ErrNotFound)
	}
	return fmt.Errorf("%s with ID %s: %w", ref.Kind, ref.ID, ErrInsufficientStock)
}

// IncrementStock adds quantity to the stock counter.
func (r *GORMInventoryRepository) IncrementStock(ref models.ProductRef, quantity int) error {
	table, err := stockTable(ref)
	if err != nil {
		return err
	}
	res := r.db.Model(table).
		Where("id = ?", ref.ID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock of %s %s: %w", ref.Kind, ref.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s: %w", ref.Kind, ref.ID, ErrNotFound)
	}
	return nil
}
