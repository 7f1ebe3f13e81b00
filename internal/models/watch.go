package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups watches in the storefront.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Watch is a ready-made watch sold as is.
type Watch struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=3,max=100"`
	Description string          `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null" validate:"gt=0"`
	Stock       int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	Reference   string          `json:"reference" gorm:"uniqueIndex;type:varchar(50);not null" validate:"required,min=2,max=50"`
	CategoryID  *string         `json:"category_id,omitempty" gorm:"type:varchar(36)" validate:"omitempty,uuid"`
	Category    *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
