package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"watchshop/internal/models"
)

// GORMComponentRepository is a GORM implementation of ComponentRepository.
type GORMComponentRepository struct {
	db        *gorm.DB
	forUpdate bool
}

// GetAll retrieves all components from the database.
func (r *GORMComponentRepository) GetAll() ([]models.Component, error) {
	var components []models.Component
	if err := r.db.Order("type").Order("name").Find(&components).Error; err != nil {
		return nil, fmt.Errorf("failed to get all components: %w", err)
	}
	return components, nil
}

// GetByID retrieves a single component by its ID from the database.
func (r *GORMComponentRepository) GetByID(id string) (*models.Component, error) {
	var component models.Component
	if err := locking(r.db, r.forUpdate).First(&component, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "component", id)
	}
	return &component, nil
}

// GetByIDs retrieves the existing components among ids, in the order of ids.
func (r *GORMComponentRepository) GetByIDs(ids []string) ([]models.Component, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Component
	if err := locking(r.db, r.forUpdate).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to get components: %w", err)
	}
	byID := make(map[string]models.Component, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	components := make([]models.Component, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			components = append(components, c)
		}
	}
	return components, nil
}

// Create creates a new component in the database.
func (r *GORMComponentRepository) Create(component *models.Component) error {
	if component.ID == "" {
		component.ID = uuid.New().String()
	}
	if err := r.db.Create(component).Error; err != nil {
		return fmt.Errorf("failed to create component: %w", err)
	}
	return nil
}

// Update updates an existing component in the database, leaving its stock as is.
func (r *GORMComponentRepository) Update(component *models.Component) error {
	component.UpdatedAt = time.Now()
	res := r.db.Model(&models.Component{}).
		Where("id = ?", component.ID).
		Select("Name", "Type", "Price", "UpdatedAt").
		Updates(component)
	if res.Error != nil {
		return fmt.Errorf("failed to update component: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("component with ID %s: %w", component.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a component by its ID from the database.
func (r *GORMComponentRepository) Delete(id string) error {
	res := r.db.Delete(&models.Component{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete component: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("component with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
