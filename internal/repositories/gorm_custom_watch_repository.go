package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"watchshop/internal/models"
)

// GORMCustomWatchRepository is a GORM implementation of CustomWatchRepository.
type GORMCustomWatchRepository struct {
	db *gorm.DB
}

// Create inserts the custom watch and one link row per component.
// Linked Component values are never written back to the components table.
func (r *GORMCustomWatchRepository) Create(customWatch *models.CustomWatch) error {
	if customWatch.ID == "" {
		customWatch.ID = uuid.New().String()
	}
	if err := r.db.Omit(clause.Associations).Create(customWatch).Error; err != nil {
		return fmt.Errorf("failed to create custom watch: %w", err)
	}
	if len(customWatch.Components) == 0 {
		return nil
	}
	for i := range customWatch.Components {
		link := &customWatch.Components[i]
		if link.ID == "" {
			link.ID = uuid.New().String()
		}
		link.CustomWatchID = customWatch.ID
	}
	if err := r.db.Omit(clause.Associations).Create(&customWatch.Components).Error; err != nil {
		return fmt.Errorf("failed to link custom watch components: %w", err)
	}
	return nil
}

// GetByID retrieves a custom watch with its components.
func (r *GORMCustomWatchRepository) GetByID(id string) (*models.CustomWatch, error) {
	var customWatch models.CustomWatch
	if err := r.db.Preload("Components.Component").First(&customWatch, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "custom watch", id)
	}
	sortCustomWatchComponents(&customWatch)
	return &customWatch, nil
}

// GetByIDForOwner retrieves a custom watch only if userID owns it.
func (r *GORMCustomWatchRepository) GetByIDForOwner(id, userID string) (*models.CustomWatch, error) {
	var customWatch models.CustomWatch
	err := r.db.Preload("Components.Component").
		Where("id = ? AND user_id = ?", id, userID).
		First(&customWatch).Error
	if err != nil {
		return nil, notFound(err, "custom watch", id)
	}
	sortCustomWatchComponents(&customWatch)
	return &customWatch, nil
}

// ListByOwner retrieves every custom watch owned by userID, newest first.
func (r *GORMCustomWatchRepository) ListByOwner(userID string) ([]models.CustomWatch, error) {
	var customWatches []models.CustomWatch
	err := r.db.Preload("Components.Component").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&customWatches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list custom watches for user %s: %w", userID, err)
	}
	for i := range customWatches {
		sortCustomWatchComponents(&customWatches[i])
	}
	return customWatches, nil
}
