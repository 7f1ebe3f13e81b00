package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentType is the slot a component fills in a custom watch.
type ComponentType string

const (
	ComponentCase     ComponentType = "CASE"
	ComponentDial     ComponentType = "DIAL"
	ComponentHands    ComponentType = "HANDS"
	ComponentBezel    ComponentType = "BEZEL"
	ComponentStrap    ComponentType = "STRAP"
	ComponentMovement ComponentType = "MOVEMENT"
	ComponentCrystal  ComponentType = "CRYSTAL"
	ComponentCrown    ComponentType = "CROWN"
	ComponentOther    ComponentType = "OTHER"
)

// ComponentTypes lists every accepted component type.
var ComponentTypes = []ComponentType{
	ComponentCase, ComponentDial, ComponentHands, ComponentBezel, ComponentStrap,
	ComponentMovement, ComponentCrystal, ComponentCrown, ComponentOther,
}

// Valid reports whether t is one of ComponentTypes.
func (t ComponentType) Valid() bool {
	for _, known := range ComponentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Component is a part that is only sold inside a custom watch.
type Component struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Type      ComponentType   `json:"type" gorm:"type:varchar(20);not null;index" validate:"required,component_type"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null" validate:"gt=0"`
	Stock     int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
