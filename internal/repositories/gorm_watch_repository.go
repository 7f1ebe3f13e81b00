package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"watchshop/internal/models"
)

// GORMWatchRepository is a GORM implementation of WatchRepository.
type GORMWatchRepository struct {
	db        *gorm.DB
	forUpdate bool
}

// GetAll retrieves all watches from the database.
func (r *GORMWatchRepository) GetAll() ([]models.Watch, error) {
	var watches []models.Watch
	if err := r.db.Preload("Category").Order("name").Find(&watches).Error; err != nil {
		return nil, fmt.Errorf("failed to get all watches: %w", err)
	}
	return watches, nil
}

// GetByID retrieves a single watch by its ID from the database.
func (r *GORMWatchRepository) GetByID(id string) (*models.Watch, error) {
	var watch models.Watch
	if err := locking(r.db, r.forUpdate).First(&watch, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "watch", id)
	}
	return &watch, nil
}

// Create creates a new watch in the database.
func (r *GORMWatchRepository) Create(watch *models.Watch) error {
	if watch.ID == "" {
		watch.ID = uuid.New().String()
	}
	if err := r.db.Omit("Category").Create(watch).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("reference %s: %w", watch.Reference, ErrDuplicate)
		}
		return fmt.Errorf("failed to create watch: %w", err)
	}
	return nil
}

// Update updates an existing watch in the database, leaving its stock as is.
func (r *GORMWatchRepository) Update(watch *models.Watch) error {
	watch.UpdatedAt = time.Now()
	res := r.db.Model(&models.Watch{}).
		Where("id = ?", watch.ID).
		Select("Name", "Description", "Price", "Reference", "CategoryID", "UpdatedAt").
		Updates(watch)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("reference %s: %w", watch.Reference, ErrDuplicate)
	}
	if res.Error != nil {
		return fmt.Errorf("failed to update watch: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("watch with ID %s: %w", watch.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a watch by its ID from the database.
func (r *GORMWatchRepository) Delete(id string) error {
	res := r.db.Delete(&models.Watch{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete watch: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("watch with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
