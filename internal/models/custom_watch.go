package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomWatch is a user-assembled bundle of components.
// TotalPrice is the sum of the component prices when it was assembled and is never recomputed.
type CustomWatch struct {
	ID         string                 `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string                 `json:"name" gorm:"type:varchar(100);not null"`
	TotalPrice decimal.Decimal        `json:"total_price" gorm:"type:decimal(10,2);not null"`
	UserID     string                 `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Components []CustomWatchComponent `json:"components" gorm:"foreignKey:CustomWatchID"`
	CreatedAt  time.Time              `json:"created_at"`
}

// CustomWatchComponent links one component into a custom watch.
type CustomWatchComponent struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomWatchID string     `json:"custom_watch_id" gorm:"type:varchar(36);not null;index"`
	ComponentID   string     `json:"component_id" gorm:"type:varchar(36);not null"`
	Component     *Component `json:"component,omitempty" gorm:"foreignKey:ComponentID"`
	Position      int        `json:"position" gorm:"not null"`
}
