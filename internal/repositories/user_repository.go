package repositories

import "watchshop/internal/models"

// UserRepository defines the interface for user data access.
// Lookups of unknown users return an error wrapping ErrNotFound.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}
